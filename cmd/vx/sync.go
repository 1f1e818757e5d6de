package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/terassyi/vx/internal/config"
	"github.com/terassyi/vx/internal/metrics"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Install every tool exactly as pinned in vx.lock",
	Long: `Sync installs the precise versions recorded in vx.lock, bypassing
version-spec resolution entirely. Unlike install and setup, which resolve
"latest"/range specs from vx.toml, sync exists to reproduce a known-good
set of tool versions across machines.`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, _ []string) error {
	started := time.Now()
	a, err := bootstrap()
	if err != nil {
		return wrapExit(exitConfigError, err)
	}
	if a.cfg.ProjectRoot == "" {
		return wrapExit(exitConfigError, errNoProjectManifest())
	}

	lockPath := filepath.Join(a.cfg.ProjectRoot, config.LockFileName)
	lf, err := config.LoadLockfile(lockPath)
	if err != nil {
		return wrapExit(exitGeneral, err)
	}
	if lf == nil {
		return wrapExit(exitGeneral, fmt.Errorf("no vx.lock found; run `vx lock` first"))
	}

	ctx := context.Background()
	var failed error
	count := 0

	for name, locked := range lf.Tools {
		rt, ok := a.registry.Lookup(name)
		if !ok {
			failed = errUnknownTool(name)
			break
		}
		t := resolvedTool{rt: rt, version: locked.Version}
		if _, err := ensureInstalled(ctx, a, t); err != nil {
			failed = err
			break
		}
		count++
	}

	recordInvocation(a, metrics.Record{
		Command:    "vx sync",
		StartedAt:  started,
		FinishedAt: time.Now(),
		ExitCode:   exitCodeFor(failed),
		Error:      errString(failed),
	})

	if failed != nil {
		return wrapExit(exitCodeForInstall(failed), failed)
	}
	cmd.Printf("synced %d tool(s) from %s\n", count, lockPath)
	return nil
}
