package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var uninstallAll bool

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <tool>[@version]",
	Short: "Remove an installed tool version from the store",
	Args:  cobra.ExactArgs(1),
	RunE:  runUninstall,
}

func init() {
	uninstallCmd.Flags().BoolVar(&uninstallAll, "all", false, "Remove every installed version of the tool")
}

func runUninstall(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return wrapExit(exitConfigError, err)
	}

	name, version := splitToolSpec(args[0])

	versions := []string{version}
	if uninstallAll || version == "" {
		installed, err := a.paths.ListStoreVersions(name, a.plat)
		if err != nil {
			return wrapExit(exitGeneral, err)
		}
		versions = installed
	}
	if len(versions) == 0 {
		cmd.Printf("%s is not installed\n", name)
		return nil
	}

	for _, v := range versions {
		dir := a.paths.VersionStoreDir(name, v)
		if err := os.RemoveAll(dir); err != nil {
			return wrapExit(exitGeneral, fmt.Errorf("removing %s: %w", dir, err))
		}
		cmd.Printf("uninstalled %s@%s\n", name, v)
	}
	return nil
}
