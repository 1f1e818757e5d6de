package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var (
	infoJSON     bool
	infoWarnings bool
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print resolved configuration, paths, and platform",
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "Print as JSON")
	infoCmd.Flags().BoolVar(&infoWarnings, "warnings", false, "Print only configuration warnings")
}

type infoOutput struct {
	Platform    string            `json:"platform"`
	Home        string            `json:"home"`
	ProjectRoot string            `json:"project_root,omitempty"`
	Tools       map[string]string `json:"tools,omitempty"`
	Warnings    []string          `json:"warnings,omitempty"`
}

func runInfo(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap()
	if err != nil {
		return wrapExit(exitConfigError, err)
	}

	warnings := make([]string, 0, len(a.warnings))
	for _, w := range a.warnings {
		warnings = append(warnings, w.Message)
	}

	if infoWarnings {
		if len(warnings) == 0 {
			cmd.Println("no configuration warnings")
			return nil
		}
		for _, w := range warnings {
			cmd.Println(w)
		}
		return nil
	}

	out := infoOutput{
		Platform:    a.plat.AsTag(),
		Home:        a.paths.Home(),
		ProjectRoot: a.cfg.ProjectRoot,
		Tools:       a.cfg.Tools,
		Warnings:    warnings,
	}

	if infoJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	cmd.Printf("platform:     %s\n", out.Platform)
	cmd.Printf("home:         %s\n", out.Home)
	if out.ProjectRoot != "" {
		cmd.Printf("project root: %s\n", out.ProjectRoot)
	}
	for name, spec := range out.Tools {
		cmd.Printf("tool:         %s@%s\n", name, spec)
	}
	if len(out.Warnings) > 0 {
		cmd.Printf("warnings:     %d (run `vx info --warnings` to see them)\n", len(out.Warnings))
	}
	return nil
}
