// Package script implements the named-script DAG runner: dependency
// closure, Kahn-ordered execution with declared-order sibling tie-break,
// cycle detection, and `{{var}}` command interpolation (spec component
// C10).
package script

import (
	"fmt"
	"sort"

	"github.com/terassyi/vx/internal/config"
	"github.com/terassyi/vx/internal/depgraph"
)

// scriptDependent adapts one config.ScriptDef into depgraph.Dependent so
// the same Kahn-sort/cycle-detection core serving C8's tool dependency
// engine also drives the script DAG.
type scriptDependent struct {
	name string
	def  config.ScriptDef
}

func (s scriptDependent) Kind() depgraph.Kind { return depgraph.KindScript }
func (s scriptDependent) Name() string        { return s.name }

func (s scriptDependent) Dependencies() []depgraph.DependencyRef {
	refs := make([]depgraph.DependencyRef, 0, len(s.def.DependsOn))
	for _, dep := range s.def.DependsOn {
		refs = append(refs, depgraph.DependencyRef{Kind: depgraph.KindScript, Name: dep})
	}
	return refs
}

// Plan is a cycle-free execution order for one `vx run <target>`: each
// inner slice is a layer of scripts with no dependency between them, ready
// to run concurrently; layers themselves run in order.
type Plan struct {
	Layers [][]string
}

// Build resolves the transitive closure of target's depends_on against
// scripts and returns a deterministic Plan. Within a layer, siblings are
// ordered by the sequence in which they were first discovered while
// walking depends_on breadth-first from target — the spec's "declared
// order in depends" — falling back to the graph's own alphabetical
// tie-break for nodes depgraph.Resolve reorders relative to that.
func Build(scripts map[string]config.ScriptDef, target string) (*Plan, error) {
	if _, ok := scripts[target]; !ok {
		return nil, fmt.Errorf("script: unknown script %q", target)
	}

	order := map[string]int{target: 0}
	queue := []string{target}
	for i := 0; i < len(queue); i++ {
		name := queue[i]
		def, ok := scripts[name]
		if !ok {
			return nil, fmt.Errorf("script: unknown script %q referenced via depends_on", name)
		}
		for _, dep := range def.DependsOn {
			if _, seen := order[dep]; !seen {
				order[dep] = len(order)
				queue = append(queue, dep)
			}
		}
	}

	resolver := depgraph.NewResolver()
	for name := range order {
		resolver.Add(scriptDependent{name: name, def: scripts[name]})
	}

	layers, err := resolver.Resolve()
	if err != nil {
		return nil, err
	}

	plan := &Plan{Layers: make([][]string, len(layers))}
	for i, layer := range layers {
		names := make([]string, 0, len(layer.Nodes))
		for _, n := range layer.Nodes {
			names = append(names, n.Name)
		}
		sort.SliceStable(names, func(a, b int) bool {
			return order[names[a]] < order[names[b]]
		})
		plan.Layers[i] = names
	}

	return plan, nil
}
