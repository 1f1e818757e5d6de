package runtime

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/terassyi/vx/internal/platform"
)

// VersionFetcher retrieves the list of versions a manifest-driven runtime
// should consider, given the version-source command(s) declared in its
// provider.toml. It is injected rather than hard-coded so this package does
// not need to import internal/resolve (which in turn depends on
// internal/installer/command and internal/github) just to parse a manifest.
type VersionFetcher func(ctx context.Context, versionSource []string, name string) ([]VersionInfo, error)

// manifestDependency mirrors one [[dependencies]] table in provider.toml.
type manifestDependency struct {
	Name        string `toml:"name"`
	Min         string `toml:"min"`
	Max         string `toml:"max"`
	Recommended string `toml:"recommended"`
}

// manifestDoc is the raw shape of a provider.toml file.
type manifestDoc struct {
	Name                string               `toml:"name"`
	Aliases             []string             `toml:"aliases"`
	Ecosystem           string               `toml:"ecosystem"`
	Platforms           []string             `toml:"platforms"`
	DownloadURLTemplate string               `toml:"download_url_template"`
	ChecksumURLTemplate string               `toml:"checksum_url_template"`
	ExecutableRelPath   string               `toml:"executable_relative_path"`
	StripArchiveRoot    *bool                `toml:"strip_archive_root"`
	VersionSource       []string             `toml:"version_source"`
	Dependencies        []manifestDependency `toml:"dependencies"`
}

// ManifestRuntime is a Runtime assembled from a provider.toml manifest
// instead of compiled Go code. Once registered it is indistinguishable from
// a built-in runtime to every other component in vx.
type ManifestRuntime struct {
	BaseRuntime

	name              string
	aliases           []string
	ecosystem         Ecosystem
	platforms         []platform.Platform
	downloadURLTpl    string
	checksumURLTpl    string
	executableRelPath string
	stripArchiveRoot  bool
	versionSource     []string
	dependencies      []DependencyRef

	fetch VersionFetcher
}

// LoadManifestRuntime parses a provider.toml file and returns the Runtime it
// describes. fetch supplies FetchVersions; pass nil to get a runtime whose
// FetchVersions always returns an error (useful for manifests that only
// declare install metadata and resolve versions through a project pin).
func LoadManifestRuntime(path string, fetch VersionFetcher) (*ManifestRuntime, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("runtime: reading manifest %s: %w", path, err)
	}
	return ParseManifestRuntime(data, fetch)
}

// ParseManifestRuntime parses provider.toml content already read into memory.
func ParseManifestRuntime(data []byte, fetch VersionFetcher) (*ManifestRuntime, error) {
	var doc manifestDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("runtime: parsing manifest: %w", err)
	}
	if doc.Name == "" {
		return nil, fmt.Errorf("runtime: manifest is missing a name")
	}

	plats := make([]platform.Platform, 0, len(doc.Platforms))
	for _, tag := range doc.Platforms {
		p, err := parsePlatformTag(tag)
		if err != nil {
			return nil, fmt.Errorf("runtime: manifest %s: %w", doc.Name, err)
		}
		plats = append(plats, p)
	}

	deps := make([]DependencyRef, 0, len(doc.Dependencies))
	for _, d := range doc.Dependencies {
		if d.Name == "" {
			return nil, fmt.Errorf("runtime: manifest %s: dependency entry missing a name", doc.Name)
		}
		deps = append(deps, DependencyRef{
			Name: d.Name,
			Constraint: VersionConstraint{
				Min:         d.Min,
				Max:         d.Max,
				Recommended: d.Recommended,
			},
		})
	}

	strip := true
	if doc.StripArchiveRoot != nil {
		strip = *doc.StripArchiveRoot
	}

	eco := Ecosystem(doc.Ecosystem)
	if eco == "" {
		eco = EcosystemUnknown
	}

	return &ManifestRuntime{
		name:              doc.Name,
		aliases:           doc.Aliases,
		ecosystem:         eco,
		platforms:         plats,
		downloadURLTpl:    doc.DownloadURLTemplate,
		checksumURLTpl:    doc.ChecksumURLTemplate,
		executableRelPath: doc.ExecutableRelPath,
		stripArchiveRoot:  strip,
		versionSource:     doc.VersionSource,
		dependencies:      deps,
		fetch:             fetch,
	}, nil
}

func parsePlatformTag(tag string) (platform.Platform, error) {
	osPart, archPart, ok := strings.Cut(tag, "-")
	if !ok {
		return platform.Platform{}, fmt.Errorf("invalid platform tag %q: expected <os>-<arch>", tag)
	}
	return platform.Platform{
		OS:   platform.OS(osPart),
		Arch: platform.CanonicalizeArch(archPart),
	}, nil
}

func (m *ManifestRuntime) Name() string                  { return m.name }
func (m *ManifestRuntime) Aliases() []string             { return m.aliases }
func (m *ManifestRuntime) Ecosystem() Ecosystem          { return m.ecosystem }
func (m *ManifestRuntime) Dependencies() []DependencyRef { return m.dependencies }
func (m *ManifestRuntime) StripArchiveRoot(string) bool  { return m.stripArchiveRoot }

func (m *ManifestRuntime) SupportedPlatforms() []platform.Platform {
	return m.platforms
}

func (m *ManifestRuntime) FetchVersions(ctx context.Context) ([]VersionInfo, error) {
	if m.fetch == nil {
		return nil, fmt.Errorf("runtime: %s manifest declares no version source", m.name)
	}
	if len(m.versionSource) == 0 {
		return nil, fmt.Errorf("runtime: %s manifest declares no version_source", m.name)
	}
	return m.fetch(ctx, m.versionSource, m.name)
}

func (m *ManifestRuntime) DownloadURL(version string, plat platform.Platform) (string, bool) {
	if m.downloadURLTpl == "" {
		return "", false
	}
	return expandTemplate(m.downloadURLTpl, version, plat), true
}

func (m *ManifestRuntime) Checksum(version string, plat platform.Platform) (string, bool) {
	if m.checksumURLTpl == "" {
		return "", false
	}
	// The checksum template points at a URL to fetch, not the digest
	// itself; resolving it is the downloader's job. We only expand it.
	return expandTemplate(m.checksumURLTpl, version, plat), true
}

func (m *ManifestRuntime) ExecutableRelativePath(version string, plat platform.Platform) string {
	return expandTemplate(m.executableRelPath, version, plat)
}

func expandTemplate(tpl, version string, plat platform.Platform) string {
	r := strings.NewReplacer(
		"{version}", version,
		"{platform}", plat.AsTag(),
		"{os}", string(plat.OS),
		"{arch}", string(plat.Arch),
		"{ext}", plat.ExecutableExt(),
	)
	return r.Replace(tpl)
}
