package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/terassyi/vx/internal/config"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check vx.lock against vx.toml and the installed store for drift",
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, _ []string) error {
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
	var drift []string

	for name, spec := range a.cfg.Tools {
		locked, ok := lf.Tools[name]
		if !ok {
			drift = append(drift, fmt.Sprintf("%s: pinned in vx.toml but missing from vx.lock", name))
			continue
		}

		rt, ok := a.registry.Lookup(name)
		if !ok {
			drift = append(drift, fmt.Sprintf("%s: in vx.lock but not registered", name))
			continue
		}

		resolved, err := resolveVersion(ctx, a, rt, spec)
		if err != nil {
			drift = append(drift, fmt.Sprintf("%s: failed to resolve vx.toml spec %q: %v", name, spec, err))
			continue
		}
		if resolved != locked.Version {
			drift = append(drift, fmt.Sprintf("%s: vx.toml resolves to %s but vx.lock pins %s", name, resolved, locked.Version))
		}

		relExec := rt.ExecutableRelativePath(locked.Version, a.plat)
		if !a.paths.IsVersionInStore(name, locked.Version, a.plat, relExec) {
			drift = append(drift, fmt.Sprintf("%s: locked version %s is not installed", name, locked.Version))
		}
	}

	for name := range lf.Tools {
		if _, ok := a.cfg.Tools[name]; !ok {
			drift = append(drift, fmt.Sprintf("%s: in vx.lock but no longer pinned in vx.toml", name))
		}
	}

	if len(drift) == 0 {
		cmd.Println("vx.lock is in sync")
		return nil
	}

	for _, d := range drift {
		cmd.Println(d)
	}
	return wrapExit(exitGeneral, fmt.Errorf("%d drift issue(s) found", len(drift)))
}
