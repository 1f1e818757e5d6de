// Property-based tests for DAG dependency resolution.
//
// These use the rapid library to verify invariants of the dependency
// resolution system against randomly generated manifests of runtimes,
// tools, and scripts.
package depgraph

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// testResolver wraps the resolver interface with access to internal DAG for testing.
type testResolver struct {
	Resolver
	dag *dag
}

func newTestResolver() *testResolver {
	r := &resolver{dag: newDAG()}
	return &testResolver{
		Resolver: r,
		dag:      r.dag,
	}
}

// manifestGenerator generates a random but valid manifest: 0-3 runtimes,
// 1-10 tools (each optionally referencing a runtime or another tool), and
// 0-5 scripts (each optionally referencing tools or other scripts).
func manifestGenerator() *rapid.Generator[*testResolver] {
	return rapid.Custom(func(t *rapid.T) *testResolver {
		tr := newTestResolver()

		numRuntimes := rapid.IntRange(0, 3).Draw(t, "numRuntimes")
		runtimeNames := make([]string, numRuntimes)
		for i := range numRuntimes {
			name := fmt.Sprintf("runtime-%d", i)
			runtimeNames[i] = name
			tr.Add(runtimeDep(name))
		}

		numTools := rapid.IntRange(1, 10).Draw(t, "numTools")
		toolNames := make([]string, 0, numTools)
		for i := range numTools {
			name := fmt.Sprintf("tool-%d", i)

			var deps []DependencyRef
			switch {
			case len(runtimeNames) > 0 && rapid.Bool().Draw(t, fmt.Sprintf("tool_%d_useRuntime", i)):
				idx := rapid.IntRange(0, len(runtimeNames)-1).Draw(t, fmt.Sprintf("tool_%d_runtimeIdx", i))
				deps = append(deps, DependencyRef{Kind: KindRuntime, Name: runtimeNames[idx]})
			case len(toolNames) > 0 && rapid.Bool().Draw(t, fmt.Sprintf("tool_%d_useTool", i)):
				idx := rapid.IntRange(0, len(toolNames)-1).Draw(t, fmt.Sprintf("tool_%d_toolIdx", i))
				deps = append(deps, DependencyRef{Kind: KindTool, Name: toolNames[idx]})
			}

			tr.Add(toolDep(name, deps...))
			toolNames = append(toolNames, name)
		}

		numScripts := rapid.IntRange(0, 5).Draw(t, "numScripts")
		scriptNames := make([]string, 0, numScripts)
		for i := range numScripts {
			name := fmt.Sprintf("script-%d", i)

			var deps []DependencyRef
			if len(toolNames) > 0 && rapid.Bool().Draw(t, fmt.Sprintf("script_%d_useTool", i)) {
				idx := rapid.IntRange(0, len(toolNames)-1).Draw(t, fmt.Sprintf("script_%d_toolIdx", i))
				deps = append(deps, DependencyRef{Kind: KindTool, Name: toolNames[idx]})
			}
			if len(scriptNames) > 0 && rapid.Bool().Draw(t, fmt.Sprintf("script_%d_useScript", i)) {
				idx := rapid.IntRange(0, len(scriptNames)-1).Draw(t, fmt.Sprintf("script_%d_scriptIdx", i))
				deps = append(deps, DependencyRef{Kind: KindScript, Name: scriptNames[idx]})
			}

			tr.Add(scriptDep(name, deps...))
			scriptNames = append(scriptNames, name)
		}

		return tr
	})
}

// toolChainGenerator generates a linear chain: runtime -> tool -> tool -> ... -> script.
func toolChainGenerator() *rapid.Generator[*testResolver] {
	return rapid.Custom(func(t *rapid.T) *testResolver {
		tr := newTestResolver()

		runtimeName := "base-runtime"
		tr.Add(runtimeDep(runtimeName))

		chainLength := rapid.IntRange(1, 5).Draw(t, "chainLength")
		prevKind, prevName := KindRuntime, runtimeName

		for i := range chainLength {
			toolName := fmt.Sprintf("tool-%d", i)
			tr.Add(toolDep(toolName, DependencyRef{Kind: prevKind, Name: prevName}))
			prevKind, prevName = KindTool, toolName
		}

		numLeafScripts := rapid.IntRange(1, 5).Draw(t, "numLeafScripts")
		for i := range numLeafScripts {
			scriptName := fmt.Sprintf("leaf-script-%d", i)
			tr.Add(scriptDep(scriptName, DependencyRef{Kind: prevKind, Name: prevName}))
		}

		return tr
	})
}

// cyclicManifestGenerator generates manifests that may contain cycles among scripts.
func cyclicManifestGenerator() *rapid.Generator[*testResolver] {
	return rapid.Custom(func(t *rapid.T) *testResolver {
		tr := newTestResolver()

		numScripts := rapid.IntRange(2, 6).Draw(t, "numScripts")
		names := make([]string, numScripts)
		for i := range numScripts {
			names[i] = fmt.Sprintf("script-%d", i)
		}

		for i, name := range names {
			var deps []DependencyRef
			if rapid.Bool().Draw(t, fmt.Sprintf("script_%d_hasDep", i)) {
				depIdx := rapid.IntRange(0, numScripts-1).Draw(t, fmt.Sprintf("script_%d_depIdx", i))
				if depIdx != i {
					deps = append(deps, DependencyRef{Kind: KindScript, Name: names[depIdx]})
				}
			}
			tr.Add(scriptDep(name, deps...))
		}

		return tr
	})
}

func TestProperty_Manifest_TopologicalOrder(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		tr := manifestGenerator().Draw(t, "manifest")

		layers, err := tr.Resolve()
		require.NoError(t, err)

		nodeLayer := make(map[NodeID]int)
		for layerIdx, layer := range layers {
			for _, node := range layer.Nodes {
				nodeLayer[node.ID] = layerIdx
			}
		}

		for _, layer := range layers {
			for _, node := range layer.Nodes {
				deps := tr.dag.edges[node.ID]
				for dep := range deps {
					depLayer, ok := nodeLayer[dep]
					if !ok {
						t.Fatalf("dependency %s not found in layers", dep)
					}
					if depLayer >= nodeLayer[node.ID] {
						t.Fatalf("dependency %s (layer %d) should be before %s (layer %d)",
							dep, depLayer, node.ID, nodeLayer[node.ID])
					}
				}
			}
		}
	})
}

func TestProperty_Manifest_AllNodesIncluded(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		tr := manifestGenerator().Draw(t, "manifest")

		layers, err := tr.Resolve()
		require.NoError(t, err)

		seenNodes := make(map[NodeID]int)
		for _, layer := range layers {
			for _, node := range layer.Nodes {
				seenNodes[node.ID]++
			}
		}

		for nodeID := range tr.dag.nodes {
			count, ok := seenNodes[nodeID]
			if !ok {
				t.Fatalf("node %s not found in layers", nodeID)
			}
			if count != 1 {
				t.Fatalf("node %s appears %d times (expected 1)", nodeID, count)
			}
		}
	})
}

func TestProperty_Manifest_LayerParallelism(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		tr := manifestGenerator().Draw(t, "manifest")

		layers, err := tr.Resolve()
		require.NoError(t, err)

		for layerIdx, layer := range layers {
			layerNodeSet := make(map[NodeID]bool)
			for _, node := range layer.Nodes {
				layerNodeSet[node.ID] = true
			}

			for _, node := range layer.Nodes {
				deps := tr.dag.edges[node.ID]
				for dep := range deps {
					if layerNodeSet[dep] {
						t.Fatalf("layer %d: node %s depends on %s in same layer",
							layerIdx, node.ID, dep)
					}
				}
			}
		}
	})
}

func TestProperty_ToolChain_ExecutionOrder(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		tr := toolChainGenerator().Draw(t, "toolChain")

		layers, err := tr.Resolve()
		require.NoError(t, err)

		executionOrder := make([]NodeID, 0)
		for _, layer := range layers {
			for _, node := range layer.Nodes {
				executionOrder = append(executionOrder, node.ID)
			}
		}

		executionIdx := make(map[NodeID]int)
		for i, nodeID := range executionOrder {
			executionIdx[nodeID] = i
		}

		for nodeID, deps := range tr.dag.edges {
			nodeIdx := executionIdx[nodeID]
			for dep := range deps {
				depIdx := executionIdx[dep]
				if depIdx >= nodeIdx {
					t.Fatalf("dependency %s (idx %d) should be before %s (idx %d)",
						dep, depIdx, nodeID, nodeIdx)
				}
			}
		}
	})
}

func TestProperty_CycleDetection_Consistency(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		tr := cyclicManifestGenerator().Draw(t, "manifest")

		validateErr := tr.Validate()
		_, resolveErr := tr.Resolve()

		if validateErr != nil && resolveErr == nil {
			t.Fatal("Validate() found cycle but Resolve() succeeded")
		}
		if resolveErr != nil && strings.Contains(resolveErr.Error(), "Circular dependency") {
			if validateErr == nil {
				t.Fatal("Resolve() found cycle but Validate() succeeded")
			}
		}
	})
}

func TestProperty_Manifest_LayerCount(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		tr := manifestGenerator().Draw(t, "manifest")

		layers, err := tr.Resolve()
		require.NoError(t, err)

		numNodes := len(tr.dag.nodes)

		if numNodes == 0 {
			if len(layers) != 0 {
				t.Fatalf("expected 0 layers for empty manifest, got %d", len(layers))
			}
		} else if len(layers) < 1 || len(layers) > numNodes {
			t.Fatalf("layer count %d out of bounds [1, %d]", len(layers), numNodes)
		}
	})
}

func TestProperty_Manifest_RuntimesFirst(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		tr := manifestGenerator().Draw(t, "manifest")

		layers, err := tr.Resolve()
		require.NoError(t, err)

		if len(layers) == 0 {
			return
		}

		for nodeID, node := range tr.dag.nodes {
			if node.Kind != KindRuntime {
				continue
			}
			if len(tr.dag.edges[nodeID]) != 0 {
				continue
			}
			found := false
			for _, n := range layers[0].Nodes {
				if n.ID == nodeID {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("runtime %s with no dependencies should be in layer 0", nodeID)
			}
		}
	})
}

func TestProperty_Manifest_KindOrderWithinLayer(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		tr := manifestGenerator().Draw(t, "manifest")

		layers, err := tr.Resolve()
		require.NoError(t, err)

		for layerIdx, layer := range layers {
			for i := 1; i < len(layer.Nodes); i++ {
				prevKind := layer.Nodes[i-1].Kind
				currKind := layer.Nodes[i].Kind

				prevPriority := kindPriority(prevKind)
				currPriority := kindPriority(currKind)

				if prevPriority > currPriority {
					t.Fatalf("layer %d: kind order violation - %s (%s) should not come before %s (%s)",
						layerIdx,
						layer.Nodes[i-1].ID, prevKind,
						layer.Nodes[i].ID, currKind)
				}

				if prevPriority == currPriority && layer.Nodes[i-1].Name > layer.Nodes[i].Name {
					t.Fatalf("layer %d: name order violation within same kind - %s should not come before %s",
						layerIdx, layer.Nodes[i-1].ID, layer.Nodes[i].ID)
				}
			}
		}
	})
}

func TestProperty_KnownStructures(t *testing.T) {
	t.Parallel()
	t.Run("single runtime", func(t *testing.T) {
		t.Parallel()
		resolver := NewResolver()
		resolver.Add(runtimeDep("go"))

		layers, err := resolver.Resolve()
		require.NoError(t, err)
		assert.Len(t, layers, 1)
	})

	t.Run("runtime with tools", func(t *testing.T) {
		t.Parallel()
		resolver := NewResolver()
		resolver.Add(runtimeDep("go"))
		resolver.Add(toolDep("gopls", DependencyRef{Kind: KindRuntime, Name: "go"}))
		resolver.Add(toolDep("golangci-lint", DependencyRef{Kind: KindRuntime, Name: "go"}))

		layers, err := resolver.Resolve()
		require.NoError(t, err)
		assert.Len(t, layers, 2)
		assert.Len(t, layers[0].Nodes, 1) // runtime
		assert.Len(t, layers[1].Nodes, 2) // tools (parallel)
	})

	t.Run("tool chain with script", func(t *testing.T) {
		t.Parallel()
		resolver := NewResolver()
		// Runtime -> Tool -> Tool -> Script
		resolver.Add(runtimeDep("rust"))
		resolver.Add(toolDep("cargo-binstall", DependencyRef{Kind: KindRuntime, Name: "rust"}))
		resolver.Add(toolDep("ripgrep", DependencyRef{Kind: KindTool, Name: "cargo-binstall"}))
		resolver.Add(scriptDep("lint", DependencyRef{Kind: KindTool, Name: "ripgrep"}))

		layers, err := resolver.Resolve()
		require.NoError(t, err)
		assert.Len(t, layers, 4)
	})

	t.Run("multiple independent chains", func(t *testing.T) {
		t.Parallel()
		resolver := NewResolver()
		// Go chain
		resolver.Add(runtimeDep("go"))
		resolver.Add(toolDep("gopls", DependencyRef{Kind: KindRuntime, Name: "go"}))
		// Rust chain
		resolver.Add(runtimeDep("rust"))
		resolver.Add(toolDep("rust-analyzer", DependencyRef{Kind: KindRuntime, Name: "rust"}))
		// Standalone tool
		resolver.Add(toolDep("jq"))

		layers, err := resolver.Resolve()
		require.NoError(t, err)
		assert.Len(t, layers, 2)
		// Layer 0: go, rust, jq (3 independent roots)
		assert.Len(t, layers[0].Nodes, 3)
		// Layer 1: gopls, rust-analyzer (2 tools)
		assert.Len(t, layers[1].Nodes, 2)
	})
}
