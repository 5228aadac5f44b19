// Package ir turns a decoded EVM opcode stream into a control-flow graph of
// basic blocks holding three-address code, and optimizes it.
//
// Control flow that depends on runtime jump targets is routed through a jump
// table sentinel node: every JUMP and JUMPI has a dynamic edge into it and it
// has a dynamic edge to every JUMPDEST block. The lifter later resolves jumps
// on constant targets into static edges.
package ir

import (
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/exp/maps"

	"github.com/paritytech/revive-sub001/evm"
)

// Cfg is the block graph together with its four sentinel nodes.
type Cfg struct {
	Graph *Graph

	Start       NodeIndex
	JumpTable   NodeIndex
	Terminator  NodeIndex
	InvalidJump NodeIndex
}

func newCfg() *Cfg {
	g := NewGraph()
	return &Cfg{
		Graph:       g,
		Start:       g.AddNode(newBasicBlock(0)),
		JumpTable:   g.AddNode(newBasicBlock(0)),
		Terminator:  g.AddNode(newBasicBlock(0)),
		InvalidJump: g.AddNode(newBasicBlock(0)),
	}
}

// IsSentinel reports whether n is one of the four synthetic nodes.
func (c *Cfg) IsSentinel(n NodeIndex) bool {
	return n == c.Start || n == c.JumpTable || n == c.Terminator || n == c.InvalidJump
}

// EvmInstruction is an opcode of the input together with its byte offset.
type EvmInstruction struct {
	BytecodeOffset int
	Instruction    evm.Instruction
}

// Gap records an opcode for which no lowering exists.
type Gap struct {
	Offset int
	Op     vm.OpCode
}

// Program owns everything produced from one bytecode stream.
type Program struct {
	EvmInstructions []EvmInstruction
	Cfg             *Cfg
	SymbolTable     *SymbolTable
	// JumpTargets maps the byte offset of every JUMPDEST to its block.
	JumpTargets map[int]NodeIndex

	Gaps  []Gap
	Stats OptimizeStats
}

// NewProgram builds the control-flow graph for bytecode and lowers every block
// to three-address code.
func NewProgram(bytecode []evm.Instruction) (p *Program, err error) {
	defer recoverInvariant(&err, "build")

	p = BuildCfg(bytecode)
	p.lower()
	if len(p.Gaps) > 0 {
		log.Debug("Bytecode lowered with gaps", "opcodes", len(p.EvmInstructions), "gaps", len(p.Gaps))
	}
	return p, nil
}

// cfgBuilder grows the graph one opcode at a time.
type cfgBuilder struct {
	program *Program
	cfg     *Cfg
	current NodeIndex
}

// BuildCfg splits bytecode into blocks and links them, leaving every block's
// instruction list empty.
func BuildCfg(bytecode []evm.Instruction) *Program {
	cfg := newCfg()
	p := &Program{
		EvmInstructions: make([]EvmInstruction, 0, len(bytecode)),
		Cfg:             cfg,
		SymbolTable:     NewSymbolTable(),
		JumpTargets:     make(map[int]NodeIndex),
	}
	b := &cfgBuilder{program: p, cfg: cfg}
	b.current = cfg.Graph.AddNode(newBasicBlock(0))

	cfg.Graph.AddEdge(cfg.Start, b.current, Static)
	cfg.Graph.AddEdge(cfg.InvalidJump, cfg.Terminator, Static)
	cfg.Graph.AddEdge(cfg.JumpTable, cfg.InvalidJump, Dynamic)

	offset := 0
	for i, ins := range bytecode {
		p.EvmInstructions = append(p.EvmInstructions, EvmInstruction{BytecodeOffset: offset, Instruction: ins})
		b.visit(i, offset, ins)
		offset += ins.Length()
	}
	return p
}

func (b *cfgBuilder) block() *BasicBlock {
	return b.cfg.Graph.Node(b.current)
}

// open starts a new block at opcode index start.
func (b *cfgBuilder) open(start int) NodeIndex {
	b.current = b.cfg.Graph.AddNode(newBasicBlock(start))
	return b.current
}

func (b *cfgBuilder) visit(i, offset int, ins evm.Instruction) {
	g := b.cfg.Graph
	b.block().Opcodes.End = i + 1

	switch {
	case ins.Op == vm.JUMPDEST:
		if i == 0 || b.program.EvmInstructions[i-1].Instruction.IsBlockEnd() {
			g.AddEdge(b.cfg.JumpTable, b.current, Dynamic)
			b.program.JumpTargets[offset] = b.current
			return
		}
		b.block().Opcodes.End = i
		prev := b.current
		next := b.open(i)
		b.block().Opcodes.End = i + 1
		g.AddEdge(prev, next, Static)
		g.AddEdge(b.cfg.JumpTable, next, Dynamic)
		b.program.JumpTargets[offset] = next

	case ins.Op == vm.JUMP:
		g.AddEdge(b.current, b.cfg.JumpTable, Dynamic)
		b.open(i + 1)

	case ins.Op == vm.JUMPI:
		g.AddEdge(b.current, b.cfg.JumpTable, Dynamic)
		prev := b.current
		g.AddEdge(prev, b.open(i+1), Static)

	case ins.IsTerminator():
		g.AddEdge(b.current, b.cfg.Terminator, Static)
		b.open(i + 1)
	}
}

// IsSentinel reports whether n is one of the four synthetic nodes.
func (p *Program) IsSentinel(n NodeIndex) bool {
	return p.Cfg.IsSentinel(n)
}

// Blocks returns the live non-sentinel nodes in creation order, which is
// bytecode order.
func (p *Program) Blocks() []NodeIndex {
	var blocks []NodeIndex
	for _, n := range p.Cfg.Graph.Nodes() {
		if !p.IsSentinel(n) {
			blocks = append(blocks, n)
		}
	}
	return blocks
}

// Block returns the basic block at n.
func (p *Program) Block(n NodeIndex) *BasicBlock {
	return p.Cfg.Graph.Node(n)
}

// Opcodes returns the input instructions covered by the block at n.
func (p *Program) Opcodes(n NodeIndex) []EvmInstruction {
	r := p.Block(n).Opcodes
	if r.Start < 0 || r.End > len(p.EvmInstructions) || r.Start > r.End {
		invariant("malformed opcode range %v of node %d", r, n)
	}
	return p.EvmInstructions[r.Start:r.End]
}

// Clone returns a deep copy of the program. The input instructions are
// immutable and shared.
func (p *Program) Clone() *Program {
	c := &Program{
		EvmInstructions: p.EvmInstructions,
		Cfg: &Cfg{
			Graph:       p.Cfg.Graph.Clone(),
			Start:       p.Cfg.Start,
			JumpTable:   p.Cfg.JumpTable,
			Terminator:  p.Cfg.Terminator,
			InvalidJump: p.Cfg.InvalidJump,
		},
		SymbolTable: p.SymbolTable.clone(),
		JumpTargets: maps.Clone(p.JumpTargets),
		Gaps:        append([]Gap(nil), p.Gaps...),
		Stats:       p.Stats.clone(),
	}
	return c
}
