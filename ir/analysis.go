package ir

// BlockAnalysis visits the blocks reachable from the start node and applies
// what it found once the traversal is done.
type BlockAnalysis interface {
	AnalyzeBlock(node NodeIndex, p *Program)
	ApplyResults(p *Program)
}

// analyze runs a over p in depth-first order from the start node. The
// traversal order is fixed before the first block is visited, so analyses may
// rewrite block contents but must defer graph changes to ApplyResults.
func analyze(p *Program, a BlockAnalysis) {
	for _, n := range p.Cfg.Graph.Dfs(p.Cfg.Start) {
		a.AnalyzeBlock(n, p)
	}
	a.ApplyResults(p)
}
