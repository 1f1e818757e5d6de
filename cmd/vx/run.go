package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/terassyi/vx/internal/config"
	"github.com/terassyi/vx/internal/execbuilder"
	"github.com/terassyi/vx/internal/metrics"
	"github.com/terassyi/vx/internal/script"
)

var runCmd = &cobra.Command{
	Use:                "run <script> [-- args...]",
	Short:              "Run a named project script, and its dependencies, as a DAG",
	Args:               cobra.ArbitraryArgs,
	DisableFlagParsing: true,
	RunE:               runRun,
}

func runRun(cmd *cobra.Command, rawArgs []string) error {
	var listOnly bool
	args := make([]string, 0, len(rawArgs))
	for _, a := range rawArgs {
		if a == "--list" || a == "-l" {
			listOnly = true
			continue
		}
		args = append(args, a)
	}

	a, err := bootstrap()
	if err != nil {
		return wrapExit(exitConfigError, err)
	}

	if listOnly {
		for name, def := range a.cfg.Scripts {
			if def.Description != "" {
				cmd.Printf("%-20s %s\n", name, def.Description)
			} else {
				cmd.Println(name)
			}
		}
		return nil
	}

	if len(args) == 0 {
		return wrapExit(exitGeneral, fmt.Errorf("vx run: missing script name (use --list to see available scripts)"))
	}
	target := args[0]

	var scriptArgs []string
	rest := args[1:]
	for i, v := range rest {
		if v == "--" {
			scriptArgs = rest[i+1:]
			rest = nil
			break
		}
	}
	if rest != nil {
		scriptArgs = rest
	}

	if _, ok := a.cfg.Scripts[target]; !ok {
		return wrapExit(exitCommandNotFound, fmt.Errorf("vx run: no script named %q", target))
	}

	plan, err := script.Build(a.cfg.Scripts, target)
	if err != nil {
		return wrapExit(exitGeneral, err)
	}

	path := buildScriptPath(a)
	ctx := context.Background()
	started := time.Now()

	execFn := func(ctx context.Context, name string, def config.ScriptDef) (int, error) {
		return runScriptNode(ctx, a, name, def, scriptArgs, path)
	}

	results, runErr := script.Run(ctx, plan, a.cfg.Scripts, execFn)
	finished := time.Now()
	for _, r := range results {
		recordInvocation(a, metrics.Record{
			Command:    "vx run " + target,
			Args:       scriptArgs,
			Tool:       "script:" + r.Name,
			StartedAt:  started,
			FinishedAt: finished,
			ExitCode:   r.ExitCode,
			Error:      errString(r.Err),
		})
	}

	if runErr != nil {
		return wrapExit(exitGeneral, runErr)
	}
	return nil
}

// buildScriptPath composes the PATH scripts run under: every project-pinned
// tool's store directory ahead of the caller's own PATH, the same
// composition execTool uses for direct tool invocation.
func buildScriptPath(a *app) string {
	builder := execbuilder.New(a.paths, a.plat)
	pinned := pinnedProjectTools(a)
	if len(pinned) == 0 {
		return os.Getenv("PATH")
	}
	first, rest := pinned[0], pinned[1:]
	return builder.BuildPath(first, rest, a.cfg.Settings.InheritVxPath, nil, os.Getenv("PATH"))
}

func runScriptNode(ctx context.Context, a *app, name string, def config.ScriptDef, args []string, path string) (int, error) {
	interpCtx := script.Context{
		Args:    args,
		Env:     envAsMap(os.Environ()),
		Project: map[string]string{"name": a.cfg.Project.Name, "root": a.cfg.ProjectRoot},
		OS:      map[string]string{"name": string(a.plat.OS), "arch": string(a.plat.Arch)},
		Vx:      map[string]string{"version": version, "home": a.paths.Home()},
		Home:    a.paths.Home(),
	}

	resolved, err := script.Interpolate(def.Command, interpCtx)
	if err != nil {
		return 1, err
	}

	shellName := "sh"
	shellFlag := "-c"
	if runtime.GOOS == "windows" {
		shellName = "cmd"
		shellFlag = "/C"
	}

	cmd := exec.CommandContext(ctx, shellName, shellFlag, resolved)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Dir = def.WorkingDir
	if cmd.Dir == "" {
		cmd.Dir = a.cfg.ProjectRoot
	}

	env := os.Environ()
	env = append(env, "PATH="+path)
	for k, v := range a.cfg.Env.Vars {
		env = append(env, k+"="+v)
	}
	for k, v := range def.Env {
		env = append(env, k+"="+v)
	}
	cmd.Env = env

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 1, err
	}
	return 0, nil
}
