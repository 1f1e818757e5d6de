package main

import (
	"context"

	"github.com/spf13/cobra"
)

var whichCmd = &cobra.Command{
	Use:   "which <tool>[@version]",
	Short: "Print the resolved executable path for a tool",
	Args:  cobra.ExactArgs(1),
	RunE:  runWhich,
}

func runWhich(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return wrapExit(exitConfigError, err)
	}

	name, versionOverride := splitToolSpec(args[0])
	primary, _, err := resolveToolChain(context.Background(), a, name, versionOverride)
	if err != nil {
		return wrapExit(exitCodeForResolve(err), err)
	}

	relExec := primary.rt.ExecutableRelativePath(primary.version, a.plat)
	execPath := a.paths.ExecutablePath(primary.rt.Name(), primary.version, a.plat, relExec)
	if !a.paths.IsVersionInStore(primary.rt.Name(), primary.version, a.plat, relExec) {
		return wrapExit(exitToolNotInstalled, errNotInstalled(name, primary.version))
	}

	cmd.Println(execPath)
	return nil
}
