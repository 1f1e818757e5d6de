// Package place exposes one installed version of a tool on the user's PATH
// by symlinking from the content-addressed store into VX_HOME/bin — the
// global default, distinct from the per-project named environments internal
// envmgr renders (spec component C11's "global" activation path).
package place

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Target identifies one (tool, binary) pairing to expose globally.
type Target struct {
	Tool       string // tool name, e.g. ripgrep
	BinaryName string // executable name as it should appear on PATH, e.g. rg
	ExecPath   string // absolute path to the executable inside the store
}

// LinkResult describes a symlink placed by Link.
type LinkResult struct {
	LinkPath string
	Target   string
}

// Action represents the action Validate found necessary.
type Action int

const (
	ActionCreate  Action = iota // no symlink exists yet
	ActionSkip                  // symlink already points at this exact store path
	ActionReplace               // symlink exists but points elsewhere (or isn't a symlink)
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionSkip:
		return "skip"
	case ActionReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Placer manages the global bin-directory symlinks that expose store
// executables on PATH.
type Placer interface {
	// Validate reports what Link would need to do for target without
	// doing it.
	Validate(target Target) (Action, error)

	// Link creates or replaces the binDir symlink for target, pointing it
	// at target.ExecPath.
	Link(target Target) (*LinkResult, error)

	// Unlink removes the binDir symlink for binaryName, if present.
	Unlink(binaryName string) error
}

type symlinkPlacer struct {
	binDir string
}

// NewPlacer creates a Placer that manages symlinks under binDir.
func NewPlacer(binDir string) Placer {
	return &symlinkPlacer{binDir: binDir}
}

func (p *symlinkPlacer) linkPath(binaryName string) string {
	return filepath.Join(p.binDir, binaryName)
}

// Validate checks the current state of the binDir symlink for target.
func (p *symlinkPlacer) Validate(target Target) (Action, error) {
	linkPath := p.linkPath(target.BinaryName)
	info, err := os.Lstat(linkPath)
	if os.IsNotExist(err) {
		return ActionCreate, nil
	}
	if err != nil {
		return 0, fmt.Errorf("place: stat %s: %w", linkPath, err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		slog.Debug("place: existing entry is not a symlink", "path", linkPath)
		return ActionReplace, nil
	}

	current, err := os.Readlink(linkPath)
	if err != nil {
		return ActionReplace, nil
	}
	if current == target.ExecPath {
		return ActionSkip, nil
	}
	return ActionReplace, nil
}

// Link creates binDir/target.BinaryName as a symlink to target.ExecPath,
// replacing any existing entry of that name.
func (p *symlinkPlacer) Link(target Target) (*LinkResult, error) {
	if _, err := os.Stat(target.ExecPath); err != nil {
		return nil, fmt.Errorf("place: executable not found at %s: %w", target.ExecPath, err)
	}

	if err := os.MkdirAll(p.binDir, 0o755); err != nil {
		return nil, fmt.Errorf("place: creating bin directory: %w", err)
	}

	linkPath := p.linkPath(target.BinaryName)
	if _, err := os.Lstat(linkPath); err == nil {
		if err := os.Remove(linkPath); err != nil {
			return nil, fmt.Errorf("place: removing existing entry at %s: %w", linkPath, err)
		}
	}

	if err := os.Symlink(target.ExecPath, linkPath); err != nil {
		return nil, fmt.Errorf("place: creating symlink: %w", err)
	}

	slog.Debug("place: symlink created", "link", linkPath, "target", target.ExecPath)
	return &LinkResult{LinkPath: linkPath, Target: target.ExecPath}, nil
}

// Unlink removes binDir/binaryName if it exists.
func (p *symlinkPlacer) Unlink(binaryName string) error {
	linkPath := p.linkPath(binaryName)
	if err := os.Remove(linkPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("place: removing %s: %w", linkPath, err)
	}
	return nil
}
