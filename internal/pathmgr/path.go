// Package pathmgr owns the on-disk layout rooted at VX_HOME and is the sole
// authority for path construction and presence checks (spec component C2).
// Readers and writers elsewhere never build store/cache/env paths by hand;
// they ask a *Paths.
package pathmgr

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/terassyi/vx/internal/platform"
)

// longPathThreshold is the path length above which Windows paths are
// prefixed with \\?\ so the OS does not apply its legacy MAX_PATH limit.
const longPathThreshold = 240

// Paths resolves all vx on-disk locations relative to a single VX_HOME root.
type Paths struct {
	home string
}

// Option configures a Paths during construction.
type Option func(*Paths)

// WithHome overrides the VX_HOME root directory.
func WithHome(dir string) Option {
	return func(p *Paths) {
		p.home = dir
	}
}

// New resolves VX_HOME (env var, then platform default) and returns a Paths
// rooted there. Options override the resolved default.
func New(opts ...Option) (*Paths, error) {
	home, err := defaultHome()
	if err != nil {
		return nil, err
	}

	p := &Paths{home: home}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func defaultHome() (string, error) {
	if v := os.Getenv("VX_HOME"); v != "" {
		return Expand(v)
	}
	if runtime.GOOS == "windows" {
		if v := os.Getenv("LOCALAPPDATA"); v != "" {
			return filepath.Join(v, "vx"), nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".vx"), nil
}

// Home returns VX_HOME.
func (p *Paths) Home() string {
	return p.home
}

// StoreDir returns VX_HOME/store, the immutable content-addressed root.
func (p *Paths) StoreDir() string {
	return filepath.Join(p.home, "store")
}

// CacheDir returns VX_HOME/cache.
func (p *Paths) CacheDir() string {
	return filepath.Join(p.home, "cache")
}

// DownloadsDir returns VX_HOME/cache/downloads, where in-flight .part files
// and completed archives land before extraction.
func (p *Paths) DownloadsDir() string {
	return filepath.Join(p.CacheDir(), "downloads")
}

// VersionsCacheDir returns VX_HOME/cache/versions, holding the TTL-stamped
// upstream version list cache (<tool>.json) used by the resolver.
func (p *Paths) VersionsCacheDir() string {
	return filepath.Join(p.CacheDir(), "versions")
}

// StagingDir returns VX_HOME/cache/staging, the root for in-flight
// extraction directories (one subdirectory per install attempt).
func (p *Paths) StagingDir() string {
	return filepath.Join(p.CacheDir(), "staging")
}

// LocksDir returns VX_HOME/cache/locks, holding per-key advisory lock files.
func (p *Paths) LocksDir() string {
	return filepath.Join(p.CacheDir(), "locks")
}

// LockFile returns the advisory lock file path for a (tool, version,
// platform) install key.
func (p *Paths) LockFile(tool, version string, plat platform.Platform) string {
	name := tool + "-" + version + "-" + plat.AsTag() + ".lock"
	return filepath.Join(p.LocksDir(), name)
}

// EnvsDir returns VX_HOME/envs, the root of global named environments.
func (p *Paths) EnvsDir() string {
	return filepath.Join(p.home, "envs")
}

// BinDir returns VX_HOME/bin, an optional location for shims or a global CLI.
func (p *Paths) BinDir() string {
	return filepath.Join(p.home, "bin")
}

// MetricsDir returns VX_HOME/metrics, where per-invocation metrics JSON
// files are written.
func (p *Paths) MetricsDir() string {
	return filepath.Join(p.home, "metrics")
}

// ConfigDir returns VX_HOME/config, whose providers/ subdirectory holds
// user-supplied provider manifests.
func (p *Paths) ConfigDir() string {
	return filepath.Join(p.home, "config")
}

// VersionStoreDir returns the logical per-version grouping directory
// store/<tool>/<version>/. It is an API-level convenience; all I/O goes
// through PlatformStoreDir.
func (p *Paths) VersionStoreDir(tool, version string) string {
	return LongPath(filepath.Join(p.StoreDir(), tool, version))
}

// PlatformStoreDir returns the physical per-platform install directory
// store/<tool>/<version>/<platform>/. All readers and writers use this
// path for actual I/O.
func (p *Paths) PlatformStoreDir(tool, version string, plat platform.Platform) string {
	return LongPath(filepath.Join(p.StoreDir(), tool, version, plat.AsTag()))
}

// ExecutablePath returns the full path to a tool's executable inside the
// store, given the relative path a runtime reports for the platform.
func (p *Paths) ExecutablePath(tool, version string, plat platform.Platform, relExecPath string) string {
	return LongPath(filepath.Join(p.PlatformStoreDir(tool, version, plat), relExecPath))
}

// IsVersionInStore reports whether the platform store directory exists and
// contains the given relative executable. A directory existing without its
// executable is treated as not installed (interrupted/partial publish).
func (p *Paths) IsVersionInStore(tool, version string, plat platform.Platform, relExecPath string) bool {
	exe := p.ExecutablePath(tool, version, plat, relExecPath)
	info, err := os.Stat(exe)
	return err == nil && !info.IsDir()
}

// ListStoreVersions returns the versions of tool present in the store for
// the given platform, ascending by semver. Entries whose platform
// subdirectory is absent or empty are excluded (a dangling version-level
// directory left by an aborted install is not "installed").
func (p *Paths) ListStoreVersions(tool string, plat platform.Platform) ([]string, error) {
	toolDir := filepath.Join(p.StoreDir(), tool)
	entries, err := os.ReadDir(toolDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	type versioned struct {
		raw string
		sv  *semver.Version
	}
	var found []versioned
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		platDir := filepath.Join(toolDir, e.Name(), plat.AsTag())
		if fi, err := os.Stat(platDir); err != nil || !fi.IsDir() {
			continue
		}
		sub, err := os.ReadDir(platDir)
		if err != nil || len(sub) == 0 {
			continue
		}
		sv, err := semver.NewVersion(e.Name())
		if err != nil {
			// Non-semver directory names still count; sort them last by
			// falling back to string order via a nil sv sentinel below.
			found = append(found, versioned{raw: e.Name()})
			continue
		}
		found = append(found, versioned{raw: e.Name(), sv: sv})
	}

	sort.Slice(found, func(i, j int) bool {
		a, b := found[i], found[j]
		switch {
		case a.sv != nil && b.sv != nil:
			return a.sv.LessThan(b.sv)
		case a.sv != nil:
			return true
		case b.sv != nil:
			return false
		default:
			return a.raw < b.raw
		}
	})

	versions := make([]string, len(found))
	for i, f := range found {
		versions[i] = f.raw
	}
	return versions, nil
}

// EnsureDir creates a directory (and parents) if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(LongPath(path), 0o755)
}

// Expand expands a leading ~ to the user's home directory.
func Expand(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" {
		return os.UserHomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// LongPath prefixes path with \\?\ on Windows when it would otherwise
// exceed the legacy MAX_PATH-adjacent threshold. It is a no-op on other
// platforms and a no-op for already-prefixed paths.
func LongPath(path string) string {
	if runtime.GOOS != "windows" {
		return path
	}
	if len(path) <= longPathThreshold || strings.HasPrefix(path, `\\?\`) {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return `\\?\` + abs
}
