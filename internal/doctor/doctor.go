// Package doctor implements vx's read-only diagnostic scan over the
// content-addressed store, named environments, and install locks: stale or
// broken store entries, dangling environment symlinks, and orphaned lock
// files left behind by an interrupted install.
package doctor

import (
	"context"
	"fmt"

	"github.com/terassyi/vx/internal/pathmgr"
)

// Doctor scans a VX_HOME tree for integrity problems.
type Doctor struct {
	paths *pathmgr.Paths
}

// Result contains the findings from a doctor check.
type Result struct {
	// BrokenStoreEntries are (tool, version, platform) directories present
	// in the store that hold no regular file at all (an interrupted publish).
	BrokenStoreEntries []StoreIssue
	// DanglingSymlinks are entries under envs/ whose symlink target no
	// longer exists.
	DanglingSymlinks []SymlinkIssue
	// OrphanedLocks are lock files under cache/locks/ with no matching
	// store entry, left behind by an install that failed before
	// publishing or was interrupted before the lock was removed.
	OrphanedLocks []string
}

// StoreIssue describes one broken store entry.
type StoreIssue struct {
	Tool     string
	Version  string
	Platform string
	Path     string
}

// Message returns a human-readable description of the issue.
func (i StoreIssue) Message() string {
	return fmt.Sprintf("%s %s (%s): platform directory is empty at %s", i.Tool, i.Version, i.Platform, i.Path)
}

// SymlinkIssue describes one dangling symlink under envs/.
type SymlinkIssue struct {
	Path   string
	Target string
}

// Message returns a human-readable description of the issue.
func (i SymlinkIssue) Message() string {
	return fmt.Sprintf("%s -> %s: target does not exist", i.Path, i.Target)
}

// New creates a Doctor rooted at paths.
func New(paths *pathmgr.Paths) *Doctor {
	return &Doctor{paths: paths}
}

// Check performs all health checks and returns the results.
func (d *Doctor) Check(ctx context.Context) (*Result, error) {
	result := &Result{}

	broken, err := d.scanStoreEntries()
	if err != nil {
		return nil, err
	}
	result.BrokenStoreEntries = broken

	dangling, err := d.scanEnvSymlinks()
	if err != nil {
		return nil, err
	}
	result.DanglingSymlinks = dangling

	orphaned, err := d.scanOrphanedLocks()
	if err != nil {
		return nil, err
	}
	result.OrphanedLocks = orphaned

	return result, nil
}

// HasIssues returns true if there are any issues found.
func (r *Result) HasIssues() bool {
	return len(r.BrokenStoreEntries) > 0 || len(r.DanglingSymlinks) > 0 || len(r.OrphanedLocks) > 0
}
