package ir

import (
	"golang.org/x/exp/slices"
)

// BlockStat summarizes one real block.
type BlockStat struct {
	Node         NodeIndex
	StartOffset  int
	EndOffset    int
	Opcodes      int
	Instructions int
	Symbols      int
	Arguments    int
	Height       int32
	Generates    int
	Lifted       bool
}

// BlockStats returns a summary of every real block, ordered by bytecode
// offset.
func (p *Program) BlockStats() []BlockStat {
	blocks := p.Blocks()
	stats := make([]BlockStat, 0, len(blocks))
	for _, n := range blocks {
		block := p.Block(n)
		stats = append(stats, BlockStat{
			Node:         n,
			StartOffset:  p.offset(block.Opcodes.Start),
			EndOffset:    p.offset(block.Opcodes.End),
			Opcodes:      block.Opcodes.Len(),
			Instructions: len(block.Instructions),
			Symbols:      len(p.SymbolTable.SymbolsIn(n)),
			Arguments:    block.StackInfo.Arguments,
			Height:       block.StackInfo.Height,
			Generates:    len(block.StackInfo.Generates),
			Lifted:       block.Lifted,
		})
	}
	slices.SortFunc(stats, func(a, b BlockStat) int {
		if a.StartOffset != b.StartOffset {
			return a.StartOffset - b.StartOffset
		}
		return int(a.Node - b.Node)
	})
	return stats
}
