package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDependent is a minimal Dependent used to exercise the resolver
// without pulling in the config/runtime packages that produce real ones.
type testDependent struct {
	kind Kind
	name string
	deps []DependencyRef
}

func (t *testDependent) Kind() Kind                    { return t.kind }
func (t *testDependent) Name() string                  { return t.name }
func (t *testDependent) Dependencies() []DependencyRef { return t.deps }

func runtimeDep(name string) *testDependent {
	return &testDependent{kind: KindRuntime, name: name}
}

func toolDep(name string, deps ...DependencyRef) *testDependent {
	return &testDependent{kind: KindTool, name: name, deps: deps}
}

func scriptDep(name string, deps ...DependencyRef) *testDependent {
	return &testDependent{kind: KindScript, name: name, deps: deps}
}

func TestResolver_Add_Runtime(t *testing.T) {
	resolver := NewResolver()

	resolver.Add(runtimeDep("go"))

	assert.Equal(t, 1, resolver.NodeCount())
	assert.Equal(t, 0, resolver.EdgeCount())
}

func TestResolver_Add_ToolWithRuntimeRef(t *testing.T) {
	resolver := NewResolver()

	resolver.Add(toolDep("gopls", DependencyRef{Kind: KindRuntime, Name: "go"}))

	assert.Equal(t, 2, resolver.NodeCount()) // tool + runtime (auto-added)
	assert.Equal(t, 1, resolver.EdgeCount())
}

func TestResolver_Add_ScriptWithToolRef(t *testing.T) {
	resolver := NewResolver()

	resolver.Add(scriptDep("lint", DependencyRef{Kind: KindTool, Name: "golangci-lint"}))

	assert.Equal(t, 2, resolver.NodeCount()) // script + tool (auto-added)
	assert.Equal(t, 1, resolver.EdgeCount())
}

func TestResolver_Add_ScriptWithMultipleDeps(t *testing.T) {
	resolver := NewResolver()

	resolver.Add(scriptDep("ci",
		DependencyRef{Kind: KindScript, Name: "build"},
		DependencyRef{Kind: KindScript, Name: "test"},
	))

	assert.Equal(t, 3, resolver.NodeCount())
	assert.Equal(t, 2, resolver.EdgeCount())
}

func TestResolver_Resolve_ToolChain(t *testing.T) {
	resolver := NewResolver()

	// Build: Runtime(rust) <- Tool(cargo-binstall) <- Tool(ripgrep)
	rustRuntime := runtimeDep("rust")
	cargoBinstall := toolDep("cargo-binstall", DependencyRef{Kind: KindRuntime, Name: "rust"})
	ripgrep := toolDep("ripgrep", DependencyRef{Kind: KindTool, Name: "cargo-binstall"})

	// Add in random order to ensure sorting works
	resolver.Add(ripgrep)
	resolver.Add(rustRuntime)
	resolver.Add(cargoBinstall)

	layers, err := resolver.Resolve()
	require.NoError(t, err)
	require.Len(t, layers, 3)

	assert.Equal(t, KindRuntime, layers[0].Nodes[0].Kind)
	assert.Equal(t, "rust", layers[0].Nodes[0].Name)

	assert.Equal(t, KindTool, layers[1].Nodes[0].Kind)
	assert.Equal(t, "cargo-binstall", layers[1].Nodes[0].Name)

	assert.Equal(t, KindTool, layers[2].Nodes[0].Kind)
	assert.Equal(t, "ripgrep", layers[2].Nodes[0].Name)
}

func TestResolver_Validate_CircularDependency(t *testing.T) {
	resolver := NewResolver()

	// script A depends on script B, script B depends on script A
	scriptA := scriptDep("a", DependencyRef{Kind: KindScript, Name: "b"})
	scriptB := scriptDep("b", DependencyRef{Kind: KindScript, Name: "a"})

	resolver.Add(scriptA)
	resolver.Add(scriptB)

	err := resolver.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Circular dependency detected")
}

func TestResolver_Resolve_ParallelTools(t *testing.T) {
	resolver := NewResolver()

	goRuntime := runtimeDep("go")
	ripgrep := toolDep("ripgrep", DependencyRef{Kind: KindRuntime, Name: "go"})
	fd := toolDep("fd", DependencyRef{Kind: KindRuntime, Name: "go"})
	bat := toolDep("bat", DependencyRef{Kind: KindRuntime, Name: "go"})

	resolver.Add(ripgrep)
	resolver.Add(fd)
	resolver.Add(bat)
	resolver.Add(goRuntime)

	layers, err := resolver.Resolve()
	require.NoError(t, err)
	require.Len(t, layers, 2)

	// Layer 0: go runtime
	assert.Len(t, layers[0].Nodes, 1)
	assert.Equal(t, "go", layers[0].Nodes[0].Name)

	// Layer 1: all tools (can be executed in parallel)
	assert.Len(t, layers[1].Nodes, 3)

	toolNames := make([]string, 0, 3)
	for _, node := range layers[1].Nodes {
		toolNames = append(toolNames, node.Name)
	}
	assert.Contains(t, toolNames, "ripgrep")
	assert.Contains(t, toolNames, "fd")
	assert.Contains(t, toolNames, "bat")
}

func TestResolver_GetEdgesAndNodes(t *testing.T) {
	resolver := NewResolver()

	resolver.Add(toolDep("gopls", DependencyRef{Kind: KindRuntime, Name: "go"}))

	edges := resolver.GetEdges()
	require.Len(t, edges, 1)
	assert.Equal(t, NodeID("tool/gopls"), edges[0].From)
	assert.Equal(t, NodeID("runtime/go"), edges[0].To)

	nodes := resolver.GetNodes()
	require.Len(t, nodes, 2)
}
