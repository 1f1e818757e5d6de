package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/terassyi/vx/internal/depgraph"
	"github.com/terassyi/vx/internal/metrics"
)

var installDryRun bool

var installCmd = &cobra.Command{
	Use:   "install [tool[@version]]...",
	Short: "Install one or more tools into the content-addressed store",
	Long: `Install resolves each tool's version (inline override, then the
project's vx.toml pin, then "latest"), narrows its dependency constraints,
and runs the install pipeline for anything not already in the store. With
no arguments, every tool pinned in vx.toml is installed.`,
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVar(&installDryRun, "dry-run", false, "Print the install plan without installing anything")
}

func runInstall(cmd *cobra.Command, args []string) error {
	started := time.Now()
	a, err := bootstrap()
	if err != nil {
		return wrapExit(exitConfigError, err)
	}

	specs := args
	if len(specs) == 0 {
		for name, spec := range a.cfg.Tools {
			specs = append(specs, name+"@"+spec)
		}
	}
	if len(specs) == 0 {
		cmd.Println("nothing to install: no tools given and vx.toml has no [tools] entries")
		return nil
	}

	ctx := context.Background()
	var installed []string
	var failed error

	for _, spec := range specs {
		name, versionOverride := splitToolSpec(spec)
		primary, deps, err := resolveToolChain(ctx, a, name, versionOverride)
		if err != nil {
			failed = err
			break
		}

		plan := append([]resolvedTool{*primary}, deps...)
		if installDryRun {
			printInstallPlan(cmd, plan)
			continue
		}

		for _, t := range plan {
			result, err := ensureInstalled(ctx, a, t)
			if err != nil {
				failed = err
				break
			}
			installed = append(installed, fmt.Sprintf("%s@%s", result.Tool, result.Version))
		}
		if failed != nil {
			break
		}
	}

	recordInvocation(a, metrics.Record{
		Command:    "vx install " + joinArgs(args),
		Args:       args,
		StartedAt:  started,
		FinishedAt: time.Now(),
		ExitCode:   exitCodeFor(failed),
		Error:      errString(failed),
	})

	if failed != nil {
		return wrapExit(exitCodeForInstall(failed), failed)
	}
	if !installDryRun {
		for _, s := range installed {
			cmd.Println("installed", s)
		}
	}
	return nil
}

func printInstallPlan(cmd *cobra.Command, plan []resolvedTool) {
	info := make(map[depgraph.NodeID]depgraph.ResourceInfo, len(plan))
	for _, t := range plan {
		id := depgraph.NewNodeID(depgraph.KindTool, t.rt.Name())
		info[id] = depgraph.ResourceInfo{Kind: depgraph.KindTool, Name: t.rt.Name(), Version: t.version, Action: depgraph.ActionInstall}
	}
	for _, t := range plan {
		cmd.Printf("+ install %s@%s\n", t.rt.Name(), t.version)
	}
}

func exitCodeFor(err error) int {
	if err == nil {
		return exitOK
	}
	return exitGeneral
}

func joinArgs(args []string) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += " "
		}
		out += a
	}
	return out
}
