// Package execbuilder constructs and spawns the child process for a
// resolved tool invocation: PATH composition, environment merge, working
// directory, stdio inheritance, signal forwarding, and exit-code
// transparency (spec component C9).
package execbuilder

import (
	"os"
	"strings"

	"github.com/terassyi/vx/internal/pathmgr"
	"github.com/terassyi/vx/internal/platform"
)

// PinnedTool identifies one (tool, version) pin whose store directory
// should be exposed on PATH.
type PinnedTool struct {
	Tool    string
	Version string
}

// Builder constructs process launch parameters rooted at paths, targeting
// plat.
type Builder struct {
	paths *pathmgr.Paths
	plat  platform.Platform
}

// New creates a Builder.
func New(paths *pathmgr.Paths, plat platform.Platform) *Builder {
	return &Builder{paths: paths, plat: plat}
}

// BuildPath constructs the PATH prefix: primary's store directory, each
// transitive dependency's store directory in the order given, the
// currently pinned project tools when inheritVxPath is set, then
// existingPath. Directories already added are not repeated.
func (b *Builder) BuildPath(primary PinnedTool, deps []PinnedTool, inheritVxPath bool, pinned []PinnedTool, existingPath string) string {
	var dirs []string
	seen := make(map[string]bool)

	add := func(pt PinnedTool) {
		dir := b.paths.PlatformStoreDir(pt.Tool, pt.Version, b.plat)
		if seen[dir] {
			return
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}

	add(primary)
	for _, d := range deps {
		add(d)
	}
	if inheritVxPath {
		for _, pt := range pinned {
			add(pt)
		}
	}

	if existingPath != "" {
		dirs = append(dirs, existingPath)
	}
	return strings.Join(dirs, string(os.PathListSeparator))
}
