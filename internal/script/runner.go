package script

import (
	"context"
	"fmt"
	"sync"

	"github.com/terassyi/vx/internal/config"
)

// NodeResult captures one executed script node's outcome.
type NodeResult struct {
	Name     string
	ExitCode int
	Err      error
}

// ExecFunc runs one script node's resolved command (interpolation and
// shell wrapping already applied by the caller) and reports its exit code.
// A non-zero code is treated as a fail-fast trigger the same as a non-nil
// err.
type ExecFunc func(ctx context.Context, name string, def config.ScriptDef) (exitCode int, err error)

// Run walks plan layer by layer. Every node in a layer is started
// concurrently, since a layer is by construction free of dependencies
// between its members; Run waits for the whole layer before deciding
// whether to continue, so a failing node never strands siblings mid-run
// but also never lets the next layer start early.
func Run(ctx context.Context, plan *Plan, scripts map[string]config.ScriptDef, exec ExecFunc) ([]NodeResult, error) {
	var all []NodeResult

	for _, layer := range plan.Layers {
		results := make([]NodeResult, len(layer))

		var wg sync.WaitGroup
		for i, name := range layer {
			def, ok := scripts[name]
			if !ok {
				return all, fmt.Errorf("script: %q not found in scripts table", name)
			}
			wg.Add(1)
			go func(i int, name string, def config.ScriptDef) {
				defer wg.Done()
				code, err := exec(ctx, name, def)
				results[i] = NodeResult{Name: name, ExitCode: code, Err: err}
			}(i, name, def)
		}
		wg.Wait()

		all = append(all, results...)
		if msg := firstFailure(results); msg != "" {
			return all, fmt.Errorf("script: %s", msg)
		}
	}

	return all, nil
}

func firstFailure(results []NodeResult) string {
	for _, r := range results {
		if r.Err != nil {
			return fmt.Sprintf("%s failed: %v", r.Name, r.Err)
		}
		if r.ExitCode != 0 {
			return fmt.Sprintf("%s exited with code %d", r.Name, r.ExitCode)
		}
	}
	return ""
}
