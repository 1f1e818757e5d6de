package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/terassyi/vx/internal/doctor"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Scan the store, named environments, and install locks for integrity problems",
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap()
	if err != nil {
		return wrapExit(exitConfigError, err)
	}

	result, err := doctor.New(a.paths).Check(context.Background())
	if err != nil {
		return wrapExit(exitGeneral, err)
	}

	printDoctorResult(cmd, result)

	if result.HasIssues() {
		return wrapExit(exitGeneral, fmt.Errorf("doctor found issues; see above"))
	}
	return nil
}

func printDoctorResult(cmd *cobra.Command, result *doctor.Result) {
	if !result.HasIssues() {
		cmd.Println(color.GreenString("no issues found"))
		return
	}

	for _, issue := range result.BrokenStoreEntries {
		cmd.Println(color.YellowString("store: ") + issue.Message())
	}
	for _, issue := range result.DanglingSymlinks {
		cmd.Println(color.YellowString("env:   ") + issue.Message())
	}
	for _, path := range result.OrphanedLocks {
		cmd.Println(color.YellowString("lock:  ") + path)
	}

	cmd.Printf(
		"%d issue(s): %d broken store entr(y/ies), %d dangling symlink(s), %d orphaned lock(s)\n",
		len(result.BrokenStoreEntries)+len(result.DanglingSymlinks)+len(result.OrphanedLocks),
		len(result.BrokenStoreEntries), len(result.DanglingSymlinks), len(result.OrphanedLocks),
	)
}
