package ir

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// reachableCode removes every block the start node cannot reach. Sentinels
// are kept regardless, and jump targets pointing at removed blocks are
// forgotten.
type reachableCode struct {
	reachable mapset.Set[NodeIndex]
	removed   []NodeIndex
}

func newReachableCode() *reachableCode {
	return &reachableCode{reachable: mapset.NewThreadUnsafeSet[NodeIndex]()}
}

func (r *reachableCode) AnalyzeBlock(node NodeIndex, _ *Program) {
	r.reachable.Add(node)
}

func (r *reachableCode) ApplyResults(p *Program) {
	r.removed = p.Cfg.Graph.RetainNodes(func(n NodeIndex) bool {
		return p.IsSentinel(n) || r.reachable.Contains(n)
	})
	if len(r.removed) == 0 {
		return
	}
	for offset, n := range p.JumpTargets {
		if !p.Cfg.Graph.Contains(n) {
			delete(p.JumpTargets, offset)
		}
	}
}

type staticJump struct {
	edge        EdgeIndex
	source      NodeIndex
	destination NodeIndex
}

// staticJumps replaces the dynamic edge out of a block ending in a branch on
// a constant target by a static edge to the block at that offset, or to the
// invalid jump sentinel when no JUMPDEST lives there.
type staticJumps struct {
	jumps []staticJump
}

func (s *staticJumps) AnalyzeBlock(node NodeIndex, p *Program) {
	if p.IsSentinel(node) {
		return
	}
	instructions := p.Block(node).Instructions
	if len(instructions) == 0 {
		return
	}
	target, ok := BranchTarget(instructions[len(instructions)-1])
	if !ok {
		return
	}
	sym := p.SymbolTable.Symbol(target)
	if !sym.Kind.IsConstant() {
		return
	}
	destination := p.Cfg.InvalidJump
	if sym.Kind.Value.IsUint64() {
		if n, ok := p.JumpTargets[int(sym.Kind.Value.Uint64())]; ok {
			destination = n
		}
	}
	if destination == p.Cfg.InvalidJump {
		debugWarn("Static jump to invalid target", "node", node, "target", sym.Kind.Value.Hex())
	}
	for _, e := range p.Cfg.Graph.Outgoing(node) {
		edge := p.Cfg.Graph.Edge(e)
		if edge.Branch == Dynamic && edge.Target == p.Cfg.JumpTable {
			s.jumps = append(s.jumps, staticJump{edge: e, source: node, destination: destination})
		}
	}
}

func (s *staticJumps) ApplyResults(p *Program) {
	for _, j := range s.jumps {
		p.Cfg.Graph.RemoveEdge(j.edge)
		p.Cfg.Graph.AddEdge(j.source, j.destination, Static)
		debugInfo("Resolved static jump", "from", j.source, "to", j.destination)
	}
	staticJumpCounter.Inc(int64(len(s.jumps)))
}
