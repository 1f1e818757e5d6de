// Package runtime defines the contract a language runtime or standalone tool
// must satisfy to be installable and executable through vx, plus the
// manifest-driven implementation that lets third-party providers describe a
// runtime in TOML instead of Go.
package runtime

import (
	"context"
	"time"

	"github.com/terassyi/vx/internal/platform"
)

// Ecosystem tags the broad family a runtime belongs to, mostly used for
// grouping in `vx list` and for dependency defaults (e.g. npm packages
// default to depending on the NodeJS ecosystem).
type Ecosystem string

const (
	EcosystemNodeJS  Ecosystem = "nodejs"
	EcosystemPython  Ecosystem = "python"
	EcosystemGo      Ecosystem = "go"
	EcosystemRust    Ecosystem = "rust"
	EcosystemDotNet  Ecosystem = "dotnet"
	EcosystemJVM     Ecosystem = "jvm"
	EcosystemRuby    Ecosystem = "ruby"
	EcosystemSystem  Ecosystem = "system"
	EcosystemUnknown Ecosystem = "unknown"
)

// VersionInfo describes one version an upstream source advertises. Runtimes
// report these from FetchVersions; the resolver picks one against a spec.
type VersionInfo struct {
	Version    string
	Prerelease bool
	LTS        bool
	Channel    string
	ReleasedAt time.Time
}

// VersionConstraint bounds the versions acceptable to a dependent. Min/Max
// are inclusive semver strings; either may be empty to mean unbounded.
// Recommended is substituted when a constraint needs a concrete pin (e.g.
// when installing a dependency for the first time) and is itself free of
// other constraints.
type VersionConstraint struct {
	Min         string
	Max         string
	Recommended string
}

// DependencyRef names a runtime or tool a Runtime requires, and the version
// range that dependency must satisfy.
type DependencyRef struct {
	Name       string
	Constraint VersionConstraint
}

// HookContext carries the information a lifecycle hook needs to act: which
// version of the runtime is being installed, for which platform, and where
// on disk the relevant files live.
type HookContext struct {
	Version     string
	Platform    platform.Platform
	InstallPath string
	Env         map[string]string
}

// Runtime is the contract every installable tool or language runtime must
// implement, whether compiled into vx or assembled from a provider manifest.
type Runtime interface {
	// Name is the canonical, lowercase identifier used in vx.toml and the store path.
	Name() string

	// Aliases lists alternate names this runtime can be addressed by
	// (e.g. "golang" for "go").
	Aliases() []string

	// Ecosystem reports the broad family this runtime belongs to.
	Ecosystem() Ecosystem

	// SupportedPlatforms lists the platforms this runtime ships binaries
	// for. An empty slice means all platforms are assumed supported.
	SupportedPlatforms() []platform.Platform

	// Dependencies lists other runtimes or tools this runtime requires
	// to be installed alongside it.
	Dependencies() []DependencyRef

	// FetchVersions retrieves the list of versions known to upstream.
	// Callers are expected to cache the result; FetchVersions itself
	// performs no caching.
	FetchVersions(ctx context.Context) ([]VersionInfo, error)

	// DownloadURL returns the archive URL for a version/platform pair.
	// ok is false when no build exists for that platform.
	DownloadURL(version string, plat platform.Platform) (url string, ok bool)

	// Checksum returns the checksum source for a version/platform pair:
	// either an "<algorithm>:<hex>" value or the URL of a checksum file to
	// fetch. ok is false when none is known, in which case the installer
	// skips verification.
	Checksum(version string, plat platform.Platform) (sum string, ok bool)

	// ExecutableRelativePath returns the path, relative to the installed
	// and (optionally) root-stripped archive, of the runtime's entry
	// point executable.
	ExecutableRelativePath(version string, plat platform.Platform) string

	// StripArchiveRoot reports whether the installer should collapse a
	// single top-level directory in the extracted archive (the common
	// "<name>-<version>/..." layout most release tarballs use).
	StripArchiveRoot(version string) bool

	// PreInstall runs before download begins.
	PreInstall(ctx context.Context, hc HookContext) error

	// PostExtract runs after the archive has been extracted into its
	// staging directory but before the atomic publish.
	PostExtract(ctx context.Context, hc HookContext) error

	// PostInstall runs after the install directory has been published.
	PostInstall(ctx context.Context, hc HookContext) error

	// PreExecute runs immediately before vx execs into the tool.
	PreExecute(ctx context.Context, hc HookContext) error

	// PostExecute runs after the tool exits. Only hooks that genuinely
	// need to observe completion should implement this; most runtimes
	// leave it a no-op.
	PostExecute(ctx context.Context, hc HookContext) error
}

// BaseRuntime implements the five lifecycle hooks as no-ops so concrete
// runtimes can embed it and override only the hooks they need.
type BaseRuntime struct{}

func (BaseRuntime) PreInstall(context.Context, HookContext) error  { return nil }
func (BaseRuntime) PostExtract(context.Context, HookContext) error { return nil }
func (BaseRuntime) PostInstall(context.Context, HookContext) error { return nil }
func (BaseRuntime) PreExecute(context.Context, HookContext) error  { return nil }
func (BaseRuntime) PostExecute(context.Context, HookContext) error { return nil }
