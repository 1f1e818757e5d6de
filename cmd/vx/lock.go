package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/terassyi/vx/internal/config"
)

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Resolve every pinned tool to a concrete version and write vx.lock",
	RunE:  runLock,
}

func runLock(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap()
	if err != nil {
		return wrapExit(exitConfigError, err)
	}
	if a.cfg.ProjectRoot == "" {
		return wrapExit(exitConfigError, errNoProjectManifest())
	}

	lf := &config.Lockfile{Tools: map[string]config.LockedTool{}}
	ctx := context.Background()

	for name, spec := range a.cfg.Tools {
		rt, ok := a.registry.Lookup(name)
		if !ok {
			return wrapExit(exitCommandNotFound, errUnknownTool(name))
		}
		v, err := resolveVersion(ctx, a, rt, spec)
		if err != nil {
			return wrapExit(exitCodeForResolve(err), err)
		}

		entry := config.LockedTool{Version: v}
		if url, ok := rt.DownloadURL(v, a.plat); ok {
			entry.URL = url
		}
		if sum, ok := rt.Checksum(v, a.plat); ok {
			entry.Checksum = sum
		}
		lf.Tools[name] = entry
	}

	data, err := lf.Marshal()
	if err != nil {
		return wrapExit(exitGeneral, err)
	}

	path := filepath.Join(a.cfg.ProjectRoot, config.LockFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return wrapExit(exitGeneral, err)
	}

	cmd.Printf("wrote %s (%d tools)\n", path, len(lf.Tools))
	return nil
}

func errNoProjectManifest() error {
	return fmt.Errorf("no vx.toml found in this directory or its parents")
}
