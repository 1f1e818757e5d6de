package main

import (
	"errors"
	"os"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	envmgr "github.com/terassyi/vx/internal/envmgr"
	"github.com/terassyi/vx/internal/execbuilder"
)

var (
	devCommand string
	devExport  bool
	devFormat  string
)

var devCmd = &cobra.Command{
	Use:   "dev",
	Short: "Enter (or run a command in) a shell with every project tool on PATH",
	RunE:  runDev,
}

func init() {
	devCmd.Flags().StringVarP(&devCommand, "command", "c", "", "Run a single command in the dev environment instead of an interactive shell")
	devCmd.Flags().BoolVar(&devExport, "export", false, "Print shell export statements instead of entering a shell")
	devCmd.Flags().StringVar(&devFormat, "format", "", "Shell syntax for --export (posix, fish); defaults to $SHELL")
}

func runDev(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap()
	if err != nil {
		return wrapExit(exitConfigError, err)
	}

	path := buildScriptPath(a)

	if devExport {
		shellName := devFormat
		if shellName == "" {
			shellName = detectShellName()
		}
		st, err := envmgr.ParseShellType(shellName)
		if err != nil {
			return wrapExit(exitGeneral, err)
		}
		f := envmgr.NewFormatter(st)
		cmd.Println(f.ExportPath([]string{path}))
		for k, v := range a.cfg.Env.Vars {
			cmd.Println(f.ExportVar(k, v))
		}
		return nil
	}

	env, err := execbuilder.BuildEnv(execbuilder.EnvLayers{
		Caller:  envAsMap(os.Environ()),
		Project: a.cfg.Env.Vars,
	})
	if err != nil {
		return wrapExit(exitConfigError, err)
	}
	env["PATH"] = path
	envSlice := execbuilder.AsSlice(env)

	shellName := os.Getenv("SHELL")
	if shellName == "" {
		shellName = "/bin/sh"
	}
	if runtime.GOOS == "windows" {
		shellName = "cmd"
	}

	var c *exec.Cmd
	if devCommand != "" {
		shellFlag := "-c"
		if runtime.GOOS == "windows" {
			shellFlag = "/C"
		}
		c = exec.CommandContext(cmd.Context(), shellName, shellFlag, devCommand)
	} else {
		c = exec.CommandContext(cmd.Context(), shellName)
	}
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	c.Env = envSlice

	if err := c.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return wrapExit(exitErr.ExitCode(), nil)
		}
		return wrapExit(exitSpawnFailed, err)
	}
	return nil
}
