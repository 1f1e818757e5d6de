// Package depgraph builds directed acyclic graphs of install/script
// dependencies and produces deterministic, parallelizable execution
// layers via Kahn's algorithm. It backs both the dependency & constraint
// engine (C8, nodes are tools/runtimes) and the script DAG runner (C10,
// nodes are named scripts).
package depgraph

import (
	"fmt"
	"maps"
	"slices"
)

// Kind classifies a node in the graph.
type Kind string

const (
	// KindRuntime identifies a runtime/tool provider node (e.g. "node", "go").
	KindRuntime Kind = "runtime"
	// KindTool identifies an installed-tool node distinct from its runtime.
	KindTool Kind = "tool"
	// KindScript identifies a project script node (C10).
	KindScript Kind = "script"
)

// NodeID is a unique identifier for a node in the dependency graph.
type NodeID string

// NewNodeID creates a unique node identifier from kind and name.
func NewNodeID(kind Kind, name string) NodeID {
	return NodeID(fmt.Sprintf("%s/%s", kind, name))
}

// String returns the string representation of the NodeID.
func (id NodeID) String() string {
	return string(id)
}

// Node represents one unit of work in the dependency graph.
type Node struct {
	ID   NodeID
	Kind Kind
	Name string
}

// Layer represents a group of nodes that can be executed in parallel.
type Layer struct {
	Nodes []*Node
}

// dag represents a Directed Acyclic Graph for dependency resolution.
type dag struct {
	nodes    map[NodeID]*Node
	edges    map[NodeID]map[NodeID]struct{} // ID -> set of dependency IDs (this node depends on these)
	inDegree map[NodeID]int
}

// newDAG creates a new empty DAG.
func newDAG() *dag {
	return &dag{
		nodes:    make(map[NodeID]*Node),
		edges:    make(map[NodeID]map[NodeID]struct{}),
		inDegree: make(map[NodeID]int),
	}
}

// addNode adds a node to the graph and returns the created node.
// If the node already exists, it returns the existing node.
func (g *dag) addNode(kind Kind, name string) *Node {
	id := NewNodeID(kind, name)
	if node, exists := g.nodes[id]; exists {
		return node
	}
	node := &Node{ID: id, Kind: kind, Name: name}
	g.nodes[id] = node
	g.inDegree[id] = 0
	return node
}

// addEdge adds a directed edge from -> to (from depends on to).
// Both nodes must exist in the graph; if not, this method panics.
func (g *dag) addEdge(from, to *Node) {
	if from == nil || to == nil {
		panic("depgraph: addEdge called with nil node")
	}
	if _, exists := g.nodes[from.ID]; !exists {
		panic(fmt.Sprintf("depgraph: node %s does not exist", from.ID))
	}
	if _, exists := g.nodes[to.ID]; !exists {
		panic(fmt.Sprintf("depgraph: node %s does not exist", to.ID))
	}

	if g.edges[from.ID] == nil {
		g.edges[from.ID] = make(map[NodeID]struct{})
	}
	if _, exists := g.edges[from.ID][to.ID]; !exists {
		g.edges[from.ID][to.ID] = struct{}{}
		g.inDegree[from.ID]++
	}
}

// nodeColor represents the state of a node during DFS traversal.
type nodeColor int

const (
	white nodeColor = iota
	gray
	black
)

// detectCycle returns a cycle path if one exists, nil otherwise.
// Uses DFS with three-color marking for cycle detection.
func (g *dag) detectCycle() []NodeID {
	color := make(map[NodeID]nodeColor, len(g.nodes))
	parent := make(map[NodeID]NodeID, len(g.nodes))

	var cycle []NodeID

	var dfs func(node NodeID) bool
	dfs = func(node NodeID) bool {
		color[node] = gray

		for dep := range g.edges[node] {
			if color[dep] == gray {
				cycle = []NodeID{dep}
				for curr := node; curr != dep; curr = parent[curr] {
					cycle = append(cycle, curr)
				}
				cycle = append(cycle, dep)
				slices.Reverse(cycle)
				return true
			}
			if color[dep] == white {
				parent[dep] = node
				if dfs(dep) {
					return true
				}
			}
		}

		color[node] = black
		return false
	}

	for id := range g.nodes {
		if color[id] == white {
			if dfs(id) {
				return cycle
			}
		}
	}

	return nil
}

// kindPriority returns the priority of a node kind. Lower values are
// processed first within the same layer. Values are spaced apart to
// allow future insertions between existing kinds.
func kindPriority(kind Kind) int {
	switch kind {
	case KindRuntime:
		return 100
	case KindTool:
		return 300
	case KindScript:
		return 500
	default:
		return 1000
	}
}

// sortNodesByKind sorts nodes by Kind priority, then by name for
// determinism within the same Kind.
func sortNodesByKind(nodes []*Node) {
	slices.SortFunc(nodes, func(a, b *Node) int {
		if pa, pb := kindPriority(a.Kind), kindPriority(b.Kind); pa != pb {
			return pa - pb
		}
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})
}

// topologicalSort returns execution layers using Kahn's algorithm.
// Nodes in the same layer have no dependencies between them.
func (g *dag) topologicalSort() ([]Layer, error) {
	if cycle := g.detectCycle(); cycle != nil {
		return nil, NewCycleError(cycle)
	}

	inDegree := make(map[NodeID]int, len(g.inDegree))
	maps.Copy(inDegree, g.inDegree)

	reverseEdges := make(map[NodeID][]NodeID, len(g.nodes))
	for from, deps := range g.edges {
		for dep := range deps {
			reverseEdges[dep] = append(reverseEdges[dep], from)
		}
	}

	layers := make([]Layer, 0, len(g.nodes))

	queue := make([]NodeID, 0, len(g.nodes))
	for id, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		layer := Layer{Nodes: make([]*Node, 0, len(queue))}
		nextQueue := make([]NodeID, 0, len(g.nodes))

		for _, id := range queue {
			layer.Nodes = append(layer.Nodes, g.nodes[id])

			for _, dependent := range reverseEdges[id] {
				inDegree[dependent]--
				if inDegree[dependent] == 0 {
					nextQueue = append(nextQueue, dependent)
				}
			}
		}

		sortNodesByKind(layer.Nodes)

		layers = append(layers, layer)
		queue = nextQueue
	}

	return layers, nil
}

// nodeCount returns the number of nodes in the graph.
func (g *dag) nodeCount() int {
	return len(g.nodes)
}

// edgeCount returns the number of edges in the graph.
func (g *dag) edgeCount() int {
	count := 0
	for _, deps := range g.edges {
		count += len(deps)
	}
	return count
}
