package depgraph

// Edge represents a dependency edge in the graph.
type Edge struct {
	From NodeID // Dependent node
	To   NodeID // Dependency node
}

// DependencyRef names a single dependency of a Dependent: another node,
// identified by kind and name, that must be realized first.
type DependencyRef struct {
	Kind Kind
	Name string
}

// Dependent is anything that can be added to the graph: a tool pinned in
// vx.toml (C8) or a script definition (C10). Both expose the same shape —
// a kind-qualified identity plus a list of prerequisite nodes.
type Dependent interface {
	Kind() Kind
	Name() string
	Dependencies() []DependencyRef
}

// Resolver defines the interface for dependency resolution.
type Resolver interface {
	// Add adds a Dependent and its declared dependencies to the graph.
	Add(d Dependent)

	// Resolve validates the graph and returns execution layers.
	// Returns an error if circular dependencies are detected.
	Resolve() ([]Layer, error)

	// Validate checks for circular dependencies without computing the full sort.
	Validate() error

	// NodeCount returns the number of nodes in the graph.
	NodeCount() int

	// EdgeCount returns the number of edges in the graph.
	EdgeCount() int

	// GetEdges returns all edges in the graph.
	GetEdges() []Edge

	// GetNodes returns all nodes in the graph.
	GetNodes() []*Node
}

// resolver is the concrete implementation of Resolver interface.
type resolver struct {
	dag *dag
}

// NewResolver creates a new dependency resolver.
func NewResolver() Resolver {
	return &resolver{
		dag: newDAG(),
	}
}

// Add adds a Dependent and its declared dependencies to the graph.
func (r *resolver) Add(d Dependent) {
	fromNode := r.dag.addNode(d.Kind(), d.Name())

	for _, dep := range d.Dependencies() {
		toNode := r.dag.addNode(dep.Kind, dep.Name)
		r.dag.addEdge(fromNode, toNode)
	}
}

// Resolve validates the graph and returns execution layers.
func (r *resolver) Resolve() ([]Layer, error) {
	return r.dag.topologicalSort()
}

// Validate checks for circular dependencies without computing the full sort.
func (r *resolver) Validate() error {
	if cycle := r.dag.detectCycle(); cycle != nil {
		return NewCycleError(cycle)
	}
	return nil
}

// NodeCount returns the number of nodes in the graph.
func (r *resolver) NodeCount() int {
	return r.dag.nodeCount()
}

// EdgeCount returns the number of edges in the graph.
func (r *resolver) EdgeCount() int {
	return r.dag.edgeCount()
}

// GetEdges returns all edges in the graph.
func (r *resolver) GetEdges() []Edge {
	var edges []Edge
	for from, deps := range r.dag.edges {
		for to := range deps {
			edges = append(edges, Edge{From: from, To: to})
		}
	}
	return edges
}

// GetNodes returns all nodes in the graph.
func (r *resolver) GetNodes() []*Node {
	nodes := make([]*Node, 0, len(r.dag.nodes))
	for _, node := range r.dag.nodes {
		nodes = append(nodes, node)
	}
	return nodes
}
