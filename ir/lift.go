package ir

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// irBuilder lifts every reachable block that has not been lifted yet.
type irBuilder struct {
	lifted mapset.Set[NodeIndex]
}

func newIrBuilder() *irBuilder {
	return &irBuilder{lifted: mapset.NewThreadUnsafeSet[NodeIndex]()}
}

func (b *irBuilder) AnalyzeBlock(node NodeIndex, p *Program) {
	block := p.Block(node)
	if p.IsSentinel(node) || block.Lifted {
		return
	}
	builder := newBlockBuilder(node, p.SymbolTable)
	for _, ins := range p.Opcodes(node) {
		translate(builder, ins)
	}
	block.Instructions, block.StackInfo = builder.done()
	block.Lifted = true
	b.lifted.Add(node)

	debugInfo("Lifted block", "node", node, "opcodes", block.Opcodes,
		"instructions", len(block.Instructions), "arguments", block.StackInfo.Arguments,
		"height", block.StackInfo.Height)
}

func (b *irBuilder) ApplyResults(*Program) {
	liftedBlockCounter.Inc(int64(b.lifted.Cardinality()))
}

// BytecodeLifter rewrites the stack-simulating code of each block into
// instructions operating on the values directly, folds constant operations,
// resolves jumps on constant targets and narrows type hints. Blocks are lifted
// once; running the pass again only revisits control flow.
type BytecodeLifter struct{}

func (BytecodeLifter) Name() string { return "lift" }

func (BytecodeLifter) Run(cfg *PassConfig, p *Program) {
	builder := newIrBuilder()
	analyze(p, builder)

	jumps := &staticJumps{}
	analyze(p, jumps)

	analyze(p, &typePropagation{nodes: builder.lifted})

	cfg.Changes += builder.lifted.Cardinality() + len(jumps.jumps)
}
