package ir

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// BlockFormat selects what Dot prints inside real blocks.
type BlockFormat uint8

const (
	BlockFormatNone BlockFormat = iota
	BlockFormatByteCode
	BlockFormatIR
)

// ParseBlockFormat maps "none", "bytecode" and "ir" to a BlockFormat.
func ParseBlockFormat(s string) (BlockFormat, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return BlockFormatNone, nil
	case "bytecode":
		return BlockFormatByteCode, nil
	case "ir":
		return BlockFormatIR, nil
	}
	return BlockFormatNone, errors.Errorf("unknown block format %q (use none, bytecode or ir)", s)
}

// offset returns the byte offset of opcode index i, or the code size past the
// last opcode.
func (p *Program) offset(i int) int {
	if i < len(p.EvmInstructions) {
		return p.EvmInstructions[i].BytecodeOffset
	}
	if n := len(p.EvmInstructions); n > 0 {
		last := p.EvmInstructions[n-1]
		return last.BytecodeOffset + last.Instruction.Length()
	}
	return 0
}

// FormatBlock renders the body of the block at n.
func (p *Program) FormatBlock(n NodeIndex, format BlockFormat) string {
	var sb strings.Builder
	switch format {
	case BlockFormatByteCode:
		for _, ins := range p.Opcodes(n) {
			fmt.Fprintf(&sb, "%v\n", ins.Instruction)
		}
	case BlockFormatIR:
		for _, ins := range p.Block(n).Instructions {
			fmt.Fprintf(&sb, "%s\n", p.SymbolTable.FormatInstruction(ins))
		}
	}
	return sb.String()
}

// Dot renders the graph in GraphViz format. Static edges are solid and
// dynamic ones dashed.
func (p *Program) Dot(format BlockFormat) string {
	var sb strings.Builder
	sb.WriteString("digraph {\n")
	for _, n := range p.Cfg.Graph.Nodes() {
		var color, shape, label string
		switch n {
		case p.Cfg.Terminator:
			color, shape, label = "red", "oval", "Terminator"
		case p.Cfg.Start:
			color, shape, label = "red", "oval", "Start"
		case p.Cfg.InvalidJump:
			color, shape, label = "blue", "hexagon", "Invalid jump target"
		case p.Cfg.JumpTable:
			color, shape, label = "blue", "diamond", "Dynamic jump table"
		default:
			r := p.Block(n).Opcodes
			color, shape = "black", "rectangle"
			label = fmt.Sprintf("Bytecode (0x%02x, 0x%02x]\n---\n%s", p.offset(r.Start), p.offset(r.End), p.FormatBlock(n, format))
		}
		fmt.Fprintf(&sb, "    %d [ color=%s shape=%s label=\"%s\" ]\n", n, color, shape, escapeDot(label))
	}
	for _, e := range p.Cfg.Graph.Edges() {
		edge := p.Cfg.Graph.Edge(e)
		style := "solid"
		if edge.Branch == Dynamic {
			style = "dashed"
		}
		fmt.Fprintf(&sb, "    %d -> %d [ style=%s ]\n", edge.Source, edge.Target, style)
	}
	sb.WriteString("}\n")
	return sb.String()
}

func escapeDot(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return strings.ReplaceAll(s, "\n", `\l`)
}
