package ir

// NodeIndex identifies a node of a Graph. Indices stay valid across removals
// of other nodes.
type NodeIndex int

// EdgeIndex identifies an edge of a Graph.
type EdgeIndex int

// Branch tags an edge with how control reaches its target.
type Branch uint8

const (
	// Static edges are known at compile time.
	Static Branch = iota
	// Dynamic edges depend on a runtime value, i.e. they go through the jump
	// table.
	Dynamic
)

func (b Branch) String() string {
	if b == Dynamic {
		return "Dynamic"
	}
	return "Static"
}

// Edge is a directed, tagged connection between two nodes.
type Edge struct {
	Source NodeIndex
	Target NodeIndex
	Branch Branch
}

type graphNode struct {
	block    *BasicBlock
	outgoing []EdgeIndex
	incoming []EdgeIndex
}

// Graph is a directed multigraph of basic blocks with stable indices: removing
// a node or an edge leaves a hole instead of renumbering the others. Parallel
// edges between the same pair of nodes are allowed. Looking up a removed index
// panics.
type Graph struct {
	nodes     []*graphNode
	edges     []*Edge
	nodeCount int
	edgeCount int
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// AddNode inserts block and returns its index.
func (g *Graph) AddNode(block *BasicBlock) NodeIndex {
	g.nodes = append(g.nodes, &graphNode{block: block})
	g.nodeCount++
	return NodeIndex(len(g.nodes) - 1)
}

// AddEdge connects source to target.
func (g *Graph) AddEdge(source, target NodeIndex, branch Branch) EdgeIndex {
	src, dst := g.node(source), g.node(target)
	g.edges = append(g.edges, &Edge{Source: source, Target: target, Branch: branch})
	e := EdgeIndex(len(g.edges) - 1)
	src.outgoing = append(src.outgoing, e)
	dst.incoming = append(dst.incoming, e)
	g.edgeCount++
	return e
}

// Contains reports whether n is a live node.
func (g *Graph) Contains(n NodeIndex) bool {
	return n >= 0 && int(n) < len(g.nodes) && g.nodes[n] != nil
}

func (g *Graph) node(n NodeIndex) *graphNode {
	if !g.Contains(n) {
		invariant("stale node index %d", n)
	}
	return g.nodes[n]
}

// Node returns the block stored at n.
func (g *Graph) Node(n NodeIndex) *BasicBlock {
	return g.node(n).block
}

// Edge returns the edge stored at e.
func (g *Graph) Edge(e EdgeIndex) Edge {
	if e < 0 || int(e) >= len(g.edges) || g.edges[e] == nil {
		invariant("stale edge index %d", e)
	}
	return *g.edges[e]
}

// RemoveEdge deletes e.
func (g *Graph) RemoveEdge(e EdgeIndex) {
	edge := g.Edge(e)
	src, dst := g.nodes[edge.Source], g.nodes[edge.Target]
	src.outgoing = removeEdgeIndex(src.outgoing, e)
	dst.incoming = removeEdgeIndex(dst.incoming, e)
	g.edges[e] = nil
	g.edgeCount--
}

// RemoveNode deletes n together with every edge touching it and returns the
// block it held.
func (g *Graph) RemoveNode(n NodeIndex) *BasicBlock {
	node := g.node(n)
	for _, e := range append(append([]EdgeIndex(nil), node.outgoing...), node.incoming...) {
		if g.edges[e] != nil {
			g.RemoveEdge(e)
		}
	}
	g.nodes[n] = nil
	g.nodeCount--
	return node.block
}

func removeEdgeIndex(list []EdgeIndex, e EdgeIndex) []EdgeIndex {
	for i, x := range list {
		if x == e {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// Outgoing returns the edges leaving n in insertion order.
func (g *Graph) Outgoing(n NodeIndex) []EdgeIndex {
	return append([]EdgeIndex(nil), g.node(n).outgoing...)
}

// Incoming returns the edges entering n in insertion order.
func (g *Graph) Incoming(n NodeIndex) []EdgeIndex {
	return append([]EdgeIndex(nil), g.node(n).incoming...)
}

// Successors returns the targets of the edges leaving n, one entry per edge.
func (g *Graph) Successors(n NodeIndex) []NodeIndex {
	node := g.node(n)
	succ := make([]NodeIndex, 0, len(node.outgoing))
	for _, e := range node.outgoing {
		succ = append(succ, g.edges[e].Target)
	}
	return succ
}

// FindEdges returns the edges from source to target.
func (g *Graph) FindEdges(source, target NodeIndex) []EdgeIndex {
	var found []EdgeIndex
	for _, e := range g.node(source).outgoing {
		if g.edges[e].Target == target {
			found = append(found, e)
		}
	}
	return found
}

// Nodes returns the live node indices in ascending order.
func (g *Graph) Nodes() []NodeIndex {
	nodes := make([]NodeIndex, 0, g.nodeCount)
	for i, node := range g.nodes {
		if node != nil {
			nodes = append(nodes, NodeIndex(i))
		}
	}
	return nodes
}

// Edges returns the live edge indices in ascending order.
func (g *Graph) Edges() []EdgeIndex {
	edges := make([]EdgeIndex, 0, g.edgeCount)
	for i, edge := range g.edges {
		if edge != nil {
			edges = append(edges, EdgeIndex(i))
		}
	}
	return edges
}

func (g *Graph) NodeCount() int { return g.nodeCount }
func (g *Graph) EdgeCount() int { return g.edgeCount }

// RetainNodes removes every node for which keep returns false and returns the
// removed indices.
func (g *Graph) RetainNodes(keep func(NodeIndex) bool) []NodeIndex {
	var removed []NodeIndex
	for _, n := range g.Nodes() {
		if !keep(n) {
			g.RemoveNode(n)
			removed = append(removed, n)
		}
	}
	return removed
}

// Dfs returns the nodes reachable from start in depth-first preorder.
// Successors are explored in edge insertion order.
func (g *Graph) Dfs(start NodeIndex) []NodeIndex {
	g.node(start)
	var (
		order   []NodeIndex
		visited = make([]bool, len(g.nodes))
		stack   = []NodeIndex{start}
	)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[n] {
			continue
		}
		visited[n] = true
		order = append(order, n)
		out := g.nodes[n].outgoing
		for i := len(out) - 1; i >= 0; i-- {
			if next := g.edges[out[i]].Target; !visited[next] {
				stack = append(stack, next)
			}
		}
	}
	return order
}

// Clone returns a deep copy of the graph, blocks included.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes:     make([]*graphNode, len(g.nodes)),
		edges:     make([]*Edge, len(g.edges)),
		nodeCount: g.nodeCount,
		edgeCount: g.edgeCount,
	}
	for i, node := range g.nodes {
		if node == nil {
			continue
		}
		c.nodes[i] = &graphNode{
			block:    node.block.Clone(),
			outgoing: append([]EdgeIndex(nil), node.outgoing...),
			incoming: append([]EdgeIndex(nil), node.incoming...),
		}
	}
	for i, edge := range g.edges {
		if edge != nil {
			e := *edge
			c.edges[i] = &e
		}
	}
	return c
}
