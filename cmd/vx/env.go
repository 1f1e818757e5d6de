package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	envmgr "github.com/terassyi/vx/internal/envmgr"
)

var envShell string

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print shell statements wiring installed tools onto PATH",
	RunE:  runEnv,
}

func init() {
	envCmd.Flags().StringVar(&envShell, "shell", "", "Shell syntax to emit (posix, fish); defaults to $SHELL")
}

func runEnv(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap()
	if err != nil {
		return wrapExit(exitConfigError, err)
	}

	shellName := envShell
	if shellName == "" {
		shellName = detectShellName()
	}
	st, err := envmgr.ParseShellType(shellName)
	if err != nil {
		return wrapExit(exitGeneral, err)
	}
	formatter := envmgr.NewFormatter(st)

	runtimes := map[string]*envmgr.InstalledRuntime{}
	for name, pin := range a.cfg.Tools {
		rt, ok := a.registry.Lookup(name)
		if !ok {
			continue
		}
		v, err := resolveVersion(cmd.Context(), a, rt, pin)
		if err != nil {
			continue
		}
		relExec := rt.ExecutableRelativePath(v, a.plat)
		if !a.paths.IsVersionInStore(name, v, a.plat, relExec) {
			continue
		}
		runtimes[name] = &envmgr.InstalledRuntime{
			Version: v,
			BinDir:  a.paths.PlatformStoreDir(name, v, a.plat),
		}
	}

	for _, line := range envmgr.Generate(runtimes, a.paths.BinDir(), formatter) {
		cmd.Println(line)
	}
	return nil
}

func detectShellName() string {
	shell := os.Getenv("SHELL")
	if strings.HasSuffix(shell, "fish") {
		return "fish"
	}
	return "posix"
}
