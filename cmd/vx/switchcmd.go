package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/terassyi/vx/internal/config"
)

var switchGlobal bool

// switchCmd implements `vx switch`; the file is named switchcmd.go since
// "switch" is a reserved word and cannot name a Go source file's primary
// exported identifier cleanly alongside the `switch` statement it resolves.
var switchCmd = &cobra.Command{
	Use:   "switch <tool> <version>",
	Short: "Pin a tool to a version in the nearest vx.toml",
	Args:  cobra.ExactArgs(2),
	RunE:  runSwitch,
}

func init() {
	switchCmd.Flags().BoolVar(&switchGlobal, "global", false, "Pin in a vx.toml in the current directory instead of the nearest project manifest")
}

func runSwitch(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return wrapExit(exitConfigError, err)
	}

	name, v := args[0], args[1]
	if _, ok := a.registry.Lookup(name); !ok {
		return wrapExit(exitCommandNotFound, errUnknownTool(name))
	}

	primary, _, err := resolveToolChain(context.Background(), a, name, v)
	if err != nil {
		return wrapExit(exitCodeForResolve(err), err)
	}
	if _, err := ensureInstalled(context.Background(), a, *primary); err != nil {
		return wrapExit(exitCodeForInstall(err), err)
	}

	manifestPath := a.cfg.ProjectRoot
	if manifestPath == "" || switchGlobal {
		cwd, _ := os.Getwd()
		manifestPath = cwd
	}
	path := filepath.Join(manifestPath, config.ManifestFileName)

	if err := pinToolInManifest(path, name, primary.version); err != nil {
		return wrapExit(exitGeneral, err)
	}

	cmd.Printf("pinned %s to %s in %s\n", name, primary.version, path)
	return nil
}

// pinToolInManifest loads (or starts) a vx.toml at path, sets its
// [tools] entry for name, and writes it back. A missing file is created
// fresh rather than treated as an error, since `vx switch` is a common way
// to bootstrap a project's first pin.
func pinToolInManifest(path, name, v string) error {
	cfg, err := config.LoadManifest(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		cfg = &config.Config{Tools: map[string]string{}, Scripts: map[string]config.ScriptDef{}}
	}
	if cfg.Tools == nil {
		cfg.Tools = map[string]string{}
	}
	cfg.Tools[name] = v

	data, err := config.MarshalManifest(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
