package ir

import (
	"time"

	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/exp/maps"
)

// PassConfig is created fresh for every pass run. Passes report the number of
// rewrites they applied in Changes.
type PassConfig struct {
	Name    string
	Changes int
}

// Pass rewrites a program in place. Running a pass on its own output must not
// change anything.
type Pass interface {
	Name() string
	Run(cfg *PassConfig, p *Program)
}

// OptimizeStats accumulates the rewrites applied per pass name.
type OptimizeStats map[string]int

func (s OptimizeStats) clone() OptimizeStats {
	return maps.Clone(s)
}

// Run applies pass to a copy of p and commits the copy only when the pass
// completes and leaves a consistent program. On failure p is unchanged.
func (p *Program) Run(pass Pass) error {
	work := p.Clone()
	cfg := &PassConfig{Name: pass.Name()}
	if err := work.run(pass, cfg); err != nil {
		log.Warn("Optimization pass failed", "pass", cfg.Name, "err", err)
		return err
	}
	*p = *work
	if p.Stats == nil {
		p.Stats = make(OptimizeStats)
	}
	p.Stats[cfg.Name] += cfg.Changes
	log.Debug("Ran optimization pass", "pass", cfg.Name, "changes", cfg.Changes)
	return nil
}

func (p *Program) run(pass Pass, cfg *PassConfig) (err error) {
	defer recoverInvariant(&err, cfg.Name)
	pass.Run(cfg, p)
	p.verify()
	return nil
}

// Optimize runs dead code elimination, lifting and dead code elimination
// again. Each pass either completes or leaves the program as it was.
func (p *Program) Optimize() error {
	defer optimizeTimer.UpdateSince(time.Now())

	for _, pass := range []Pass{DeadCodeElimination{}, BytecodeLifter{}, DeadCodeElimination{}} {
		if err := p.Run(pass); err != nil {
			return err
		}
	}
	return nil
}

// verify panics when the program is structurally inconsistent: a missing
// sentinel, a jump target or operand that no longer exists, or a block whose
// stack summary does not add up.
func (p *Program) verify() {
	g := p.Cfg.Graph
	for _, n := range []NodeIndex{p.Cfg.Start, p.Cfg.JumpTable, p.Cfg.Terminator, p.Cfg.InvalidJump} {
		if !g.Contains(n) {
			invariant("sentinel node %d missing", n)
		}
	}
	for offset, n := range p.JumpTargets {
		if !g.Contains(n) {
			invariant("jump target 0x%x points at removed node %d", offset, n)
		}
	}
	for _, n := range p.Blocks() {
		block := p.Block(n)
		p.Opcodes(n)
		for _, ins := range block.Instructions {
			if def, ok := ins.Def(); ok {
				p.SymbolTable.Symbol(def)
			}
			for _, ref := range ins.Uses() {
				p.SymbolTable.Symbol(ref)
			}
		}
		info := block.StackInfo
		if int32(info.Arguments)+info.Height != int32(len(info.Generates)) {
			invariant("node %d: stack info %d arguments, height %d, %d generated",
				n, info.Arguments, info.Height, len(info.Generates))
		}
	}
}
