package ir

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// DeadCodeElimination removes blocks unreachable from the start node, then
// removes instructions defining temporaries nobody reads, until nothing
// changes. Values a block leaves on the stack count as read. Instructions with
// effects beyond their result are always kept.
type DeadCodeElimination struct{}

func (DeadCodeElimination) Name() string { return "dce" }

func (DeadCodeElimination) Run(cfg *PassConfig, p *Program) {
	reachable := newReachableCode()
	analyze(p, reachable)
	instructions := eliminateDeadInstructions(p)

	deadBlockCounter.Inc(int64(len(reachable.removed)))
	deadInstructionCounter.Inc(int64(instructions))
	cfg.Changes += len(reachable.removed) + instructions

	debugInfo("Eliminated dead code", "blocks", len(reachable.removed), "instructions", instructions)
}

func eliminateDeadInstructions(p *Program) int {
	var (
		blocks = p.Blocks()
		uses   = make(map[SymbolRef]int)
		live   = mapset.NewThreadUnsafeSet[SymbolRef]()
	)
	for _, n := range blocks {
		block := p.Block(n)
		for _, ref := range block.StackInfo.Generates {
			live.Add(ref)
		}
		for _, ins := range block.Instructions {
			for _, ref := range ins.Uses() {
				uses[ref]++
			}
		}
	}

	removed := 0
	for changed := true; changed; {
		changed = false
		for _, n := range blocks {
			block := p.Block(n)
			kept := block.Instructions[:0]
			for _, ins := range block.Instructions {
				def, ok := ins.Def()
				if !ok || uses[def] > 0 || live.Contains(def) || !removable(p.SymbolTable, ins, def) {
					kept = append(kept, ins)
					continue
				}
				for _, ref := range ins.Uses() {
					uses[ref]--
				}
				removed++
				changed = true
			}
			block.Instructions = kept
		}
	}
	return removed
}

// removable reports whether ins only computes def.
func removable(symbols *SymbolTable, ins Instruction, def SymbolRef) bool {
	if !symbols.Symbol(def).IsTemporary() {
		return false
	}
	switch i := ins.(type) {
	case Function:
		return i.Symbol.Pure()
	case BinaryAssign, UnaryAssign, Copy, IndexedCopy:
		return true
	}
	return false
}
