package main

import (
	"context"

	"github.com/spf13/cobra"
)

var versionsAll bool

var versionsCmd = &cobra.Command{
	Use:   "versions <tool>",
	Short: "List versions of a tool, installed and (optionally) upstream",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersions,
}

func init() {
	versionsCmd.Flags().BoolVar(&versionsAll, "all", false, "Also list versions known upstream, not just installed")
}

func runVersions(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return wrapExit(exitConfigError, err)
	}

	name := args[0]
	rt, ok := a.registry.Lookup(name)
	if !ok {
		return wrapExit(exitCommandNotFound, errUnknownTool(name))
	}

	installed, err := a.paths.ListStoreVersions(name, a.plat)
	if err != nil {
		return wrapExit(exitGeneral, err)
	}
	installedSet := make(map[string]bool, len(installed))
	for _, v := range installed {
		installedSet[v] = true
	}
	for _, v := range installed {
		cmd.Printf("%s  (installed)\n", v)
	}

	if !versionsAll {
		return nil
	}

	infos, err := rt.FetchVersions(context.Background())
	if err != nil {
		return wrapExit(exitGeneral, err)
	}
	for _, info := range infos {
		if installedSet[info.Version] {
			continue
		}
		cmd.Println(info.Version)
	}
	return nil
}
