package main

import (
	"context"
	"errors"
	"os"

	"github.com/terassyi/vx/internal/execbuilder"
	vxerrors "github.com/terassyi/vx/internal/errors"
	"github.com/terassyi/vx/internal/resolve"
)

// execTool resolves, ensures-installed, and execs name@versionOverride with
// toolArgs, returning the exit code to propagate. It never returns a nil
// error with a non-zero code for anything execbuilder.Spawn itself
// produced — that error already carries the right code via vxerrors.
func execTool(ctx context.Context, a *app, name, versionOverride string, toolArgs []string) (int, error) {
	primary, deps, err := resolveToolChain(ctx, a, name, versionOverride)
	if err != nil {
		return exitCodeForResolve(err), err
	}

	primaryResult, err := ensureInstalled(ctx, a, *primary)
	if err != nil {
		return exitCodeForInstall(err), err
	}

	depPins := make([]execbuilder.PinnedTool, 0, len(deps))
	for _, d := range deps {
		result, err := ensureInstalled(ctx, a, d)
		if err != nil {
			return exitCodeForInstall(err), err
		}
		depPins = append(depPins, execbuilder.PinnedTool{Tool: result.Tool, Version: result.Version})
	}

	pinned := pinnedProjectTools(a)

	builder := execbuilder.New(a.paths, a.plat)
	primaryPin := execbuilder.PinnedTool{Tool: primaryResult.Tool, Version: primaryResult.Version}
	path := builder.BuildPath(primaryPin, depPins, a.cfg.Settings.InheritVxPath, pinned, os.Getenv("PATH"))

	env, err := execbuilder.BuildEnv(execbuilder.EnvLayers{
		Caller:  envAsMap(os.Environ()),
		Project: a.cfg.Env.Vars,
	})
	if err != nil {
		return exitConfigError, err
	}
	env["PATH"] = path
	envSlice := execbuilder.AsSlice(env)

	req := execbuilder.SpawnRequest{
		Path: primaryResult.ExecutablePath,
		Args: toolArgs,
		Env:  envSlice,
		Dir:  "",
	}

	code, spawnErr := execbuilder.Spawn(ctx, req)
	if spawnErr != nil {
		return code, spawnErr
	}
	return code, nil
}

// pinnedProjectTools resolves every vx.toml [tools] entry to the newest
// already-installed version its spec matches, best-effort: a tool with no matching
// installed version is silently omitted rather than failing the whole
// PATH composition.
func pinnedProjectTools(a *app) []execbuilder.PinnedTool {
	var pinned []execbuilder.PinnedTool
	for name := range a.cfg.Tools {
		rt, ok := a.registry.Lookup(name)
		if !ok {
			continue
		}
		installed, err := a.paths.ListStoreVersions(name, a.plat)
		if err != nil || len(installed) == 0 {
			continue
		}
		cands := make([]resolve.Candidate, 0, len(installed))
		for _, v := range installed {
			cands = append(cands, resolve.Candidate{Version: v})
		}
		match, err := resolve.MatchSpec(cands, a.cfg.Tools[name])
		if err != nil {
			continue
		}
		relExec := rt.ExecutableRelativePath(match.Version, a.plat)
		if a.paths.IsVersionInStore(name, match.Version, a.plat, relExec) {
			pinned = append(pinned, execbuilder.PinnedTool{Tool: name, Version: match.Version})
		}
	}
	return pinned
}

func envAsMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				m[kv[:i]] = kv[i+1:]
				break
			}
		}
	}
	return m
}

// exitCodeForResolve classifies a resolveToolChain failure: an unknown
// tool name is "command not found" (2); everything else is a config/
// resolve-layer error (4).
func exitCodeForResolve(err error) int {
	var vxErr *vxerrors.Error
	if errors.As(err, &vxErr) && vxErr.Category == vxerrors.CategoryResolve {
		return exitCommandNotFound
	}
	return exitConfigError
}

// exitCodeForInstall classifies an ensureInstalled failure: the
// auto-install-disabled case is "tool not installed" (3); everything else
// (download/extract/hook failure) is general (1).
func exitCodeForInstall(err error) int {
	var vxErr *vxerrors.Error
	if errors.As(err, &vxErr) && vxErr.Category == vxerrors.CategoryInstall {
		return exitToolNotInstalled
	}
	return exitGeneral
}
