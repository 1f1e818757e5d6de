package main

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/terassyi/vx/internal/config"
	"github.com/terassyi/vx/internal/metrics"
	"github.com/terassyi/vx/internal/script"
)

var (
	setupDryRun bool
	setupForce  bool
	setupNoPar  bool
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Install every tool pinned in vx.toml and run the project's setup script, if any",
	RunE:  runSetup,
}

func init() {
	setupCmd.Flags().BoolVar(&setupDryRun, "dry-run", false, "Print the install plan without installing anything")
	setupCmd.Flags().BoolVar(&setupForce, "force", false, "Reinstall tools even if already present in the store")
	setupCmd.Flags().BoolVar(&setupNoPar, "no-parallel", false, "Install tools one at a time instead of concurrently")
}

func runSetup(cmd *cobra.Command, _ []string) error {
	started := time.Now()
	a, err := bootstrap()
	if err != nil {
		return wrapExit(exitConfigError, err)
	}

	if len(a.cfg.Tools) == 0 {
		cmd.Println("nothing to set up: vx.toml has no [tools] entries")
		return nil
	}

	ctx := context.Background()
	plans := make([]resolvedTool, 0, len(a.cfg.Tools))
	for name, spec := range a.cfg.Tools {
		primary, deps, err := resolveToolChain(ctx, a, name, spec)
		if err != nil {
			return wrapExit(exitCodeForResolve(err), err)
		}
		plans = append(plans, *primary)
		plans = append(plans, deps...)
	}

	if setupDryRun {
		printInstallPlan(cmd, plans)
		return nil
	}

	if setupForce {
		for _, t := range plans {
			_ = os.RemoveAll(a.paths.VersionStoreDir(t.rt.Name(), t.version))
		}
	}

	failed := installPlan(ctx, a, plans, setupNoPar || !a.cfg.Settings.ParallelInstall)

	if failed == nil {
		failed = runNamedScript(ctx, a, "setup")
	}

	recordInvocation(a, metrics.Record{
		Command:    "vx setup",
		StartedAt:  started,
		FinishedAt: time.Now(),
		ExitCode:   exitCodeFor(failed),
		Error:      errString(failed),
	})

	if failed != nil {
		return wrapExit(exitCodeForInstall(failed), failed)
	}
	cmd.Printf("set up %d tool(s)\n", len(plans))
	return nil
}

// installWorkerPoolSize bounds concurrent installs to a fixed pool of 4
// when settings.parallel_install is on.
const installWorkerPoolSize = 4

// installPlan runs ensureInstalled over plan, either serially or (when
// sequential is false) concurrently over a fixed worker pool of
// installWorkerPoolSize via an errgroup, and returns the first error
// encountered.
func installPlan(ctx context.Context, a *app, plan []resolvedTool, sequential bool) error {
	if sequential {
		for _, t := range plan {
			if _, err := ensureInstalled(ctx, a, t); err != nil {
				return err
			}
		}
		return nil
	}

	var mu sync.Mutex
	var first error
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(installWorkerPoolSize)
	for _, t := range plan {
		t := t
		g.Go(func() error {
			if _, err := ensureInstalled(gctx, a, t); err != nil {
				mu.Lock()
				if first == nil {
					first = err
				}
				mu.Unlock()
				return err
			}
			return nil
		})
	}
	_ = g.Wait()
	return first
}

// runNamedScript runs the script named name if the project defines one; a
// missing script is not an error, since not every project has a setup hook.
func runNamedScript(ctx context.Context, a *app, name string) error {
	if _, ok := a.cfg.Scripts[name]; !ok {
		return nil
	}
	plan, err := script.Build(a.cfg.Scripts, name)
	if err != nil {
		return err
	}
	path := buildScriptPath(a)
	execFn := func(ctx context.Context, n string, d config.ScriptDef) (int, error) {
		return runScriptNode(ctx, a, n, d, nil, path)
	}
	results, err := script.Run(ctx, plan, a.cfg.Scripts, execFn)
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.ExitCode != 0 {
			return r.Err
		}
	}
	return nil
}
