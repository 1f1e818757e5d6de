package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var listInstalledOnly bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered tools and which versions are installed",
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listInstalledOnly, "installed", false, "Only show tools with at least one installed version")
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap()
	if err != nil {
		return wrapExit(exitConfigError, err)
	}

	for _, rt := range a.registry.All() {
		installed, err := a.paths.ListStoreVersions(rt.Name(), a.plat)
		if err != nil {
			return wrapExit(exitGeneral, err)
		}
		if listInstalledOnly && len(installed) == 0 {
			continue
		}

		pin := a.cfg.Tools[rt.Name()]
		switch {
		case len(installed) == 0:
			cmd.Printf("%-20s (not installed)\n", rt.Name())
		case pin != "":
			cmd.Printf("%-20s %s  [pinned: %s]\n", rt.Name(), strings.Join(installed, ", "), pin)
		default:
			cmd.Printf("%-20s %s\n", rt.Name(), strings.Join(installed, ", "))
		}
	}
	return nil
}
