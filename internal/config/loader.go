package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	vxerrors "github.com/terassyi/vx/internal/errors"
)

// Loader resolves vx's layered configuration for a given environment.
type Loader struct {
	env *Env
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithEnv overrides the detected environment (used by tests).
func WithEnv(env *Env) LoaderOption {
	return func(l *Loader) {
		l.env = env
	}
}

// NewLoader creates a Loader. If env is nil, it is auto-detected.
func NewLoader(env *Env, opts ...LoaderOption) *Loader {
	if env == nil {
		env = DetectEnv()
	}
	l := &Loader{env: env}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FlagOverrides carries CLI-flag-sourced overrides, the final and
// highest-priority layer. Only non-nil/non-empty fields are applied.
type FlagOverrides struct {
	DataDir *string
	BinDir  *string
	Tools   map[string]string // tool -> version-spec, merged over [tools]
}

// Warning is a non-fatal finding surfaced during Load (e.g. an unknown
// top-level table in vx.toml).
type Warning struct {
	Message string
}

// Load builds the fully-merged Config by applying, in order:
// built-in defaults, ~/.config/vx/config.toml, the nearest-ancestor
// vx.toml found by walking up from startDir, environment variables, and
// finally flags. It returns the merged Config plus any non-fatal warnings.
func (l *Loader) Load(startDir string, flags *FlagOverrides) (*Config, []Warning, error) {
	cfg := DefaultConfig()
	var warnings []Warning

	userConfigPath, err := userConfigFilePath()
	if err != nil {
		return nil, nil, err
	}
	if data, err := os.ReadFile(userConfigPath); err == nil {
		if err := UnmarshalUserConfig(data, cfg); err != nil {
			return nil, nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("read %s: %w", userConfigPath, err)
	}

	manifestPath, err := FindProjectManifest(startDir)
	if err != nil {
		return nil, nil, err
	}
	if manifestPath != "" {
		ws, err := overlayManifest(cfg, manifestPath)
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, ws...)
	}

	overlayEnvVars(cfg)

	if flags != nil {
		overlayFlags(cfg, flags)
	}

	if err := validate(cfg); err != nil {
		return nil, warnings, err
	}

	return cfg, warnings, nil
}

// userConfigFilePath returns the path to ~/.config/vx/config.toml.
func userConfigFilePath() (string, error) {
	dir, err := Expand(DefaultConfigDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// Expand expands a leading ~ in p to the user's home directory.
func Expand(p string) (string, error) {
	if p == "~" {
		return os.UserHomeDir()
	}
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, p[2:]), nil
	}
	return p, nil
}

// FindProjectManifest walks from startDir upward to the filesystem root,
// returning the path to the first vx.toml found, or "" if none exists.
func FindProjectManifest(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, ManifestFileName)
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// knownTopLevelTables are the vx.toml tables the core consumes; anything
// else is preserved on disk but produces a warning, never a hard error.
var knownTopLevelTables = map[string]bool{
	"project":  true,
	"tools":    true,
	"env":      true,
	"scripts":  true,
	"settings": true,
}

func overlayManifest(cfg *Config, path string) ([]Warning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var warnings []Warning
	for key := range raw {
		if !knownTopLevelTables[key] {
			warnings = append(warnings, Warning{
				Message: fmt.Sprintf("%s: unknown top-level table [%s] ignored", path, key),
			})
		}
	}

	projectCfg, err := ParseManifest(data, filepath.Dir(path))
	if err != nil {
		return warnings, err
	}

	cfg.Project = projectCfg.Project
	cfg.ProjectRoot = projectCfg.ProjectRoot
	for name, spec := range projectCfg.Tools {
		cfg.Tools[name] = spec
	}
	if projectCfg.Env.Vars != nil || projectCfg.Env.Required != nil || projectCfg.Env.Optional != nil {
		if cfg.Env.Vars == nil {
			cfg.Env.Vars = map[string]string{}
		}
		for k, v := range projectCfg.Env.Vars {
			cfg.Env.Vars[k] = v
		}
		if cfg.Env.Required == nil {
			cfg.Env.Required = map[string]string{}
		}
		for k, v := range projectCfg.Env.Required {
			cfg.Env.Required[k] = v
		}
		if cfg.Env.Optional == nil {
			cfg.Env.Optional = map[string]string{}
		}
		for k, v := range projectCfg.Env.Optional {
			cfg.Env.Optional[k] = v
		}
	}
	for name, def := range projectCfg.Scripts {
		cfg.Scripts[name] = def
	}
	if settings, ok := raw["settings"].(map[string]any); ok {
		applyRawSettings(&cfg.Settings, settings)
	}

	return warnings, nil
}

// environment variable names recognised by the core (spec §6).
const (
	EnvHome          = "VX_HOME"
	EnvCDNEnabled    = "VX_CDN_ENABLED"
	EnvCDNRegion     = "VX_CDN_REGION"
	EnvAutoInstall   = "VX_AUTO_INSTALL"
	EnvVerbose       = "VX_VERBOSE"
	EnvDebug         = "VX_DEBUG"
	EnvNoInheritPath = "VX_NO_INHERIT_PATH"
)

func overlayEnvVars(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv(EnvAutoInstall); v != "" {
		cfg.Settings.AutoInstall = parseBoolEnv(v, cfg.Settings.AutoInstall)
	}
	if v := os.Getenv(EnvNoInheritPath); v != "" && parseBoolEnv(v, false) {
		cfg.Settings.InheritVxPath = false
	}
	for name := range cfg.Tools {
		key := "VX_" + strings.ToUpper(toEnvIdent(name)) + "_VERSION"
		if v := os.Getenv(key); v != "" {
			cfg.Tools[name] = v
		}
	}
}

func toEnvIdent(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, s)
}

func parseBoolEnv(v string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func overlayFlags(cfg *Config, flags *FlagOverrides) {
	if flags.DataDir != nil && *flags.DataDir != "" {
		cfg.DataDir = *flags.DataDir
	}
	if flags.BinDir != nil && *flags.BinDir != "" {
		cfg.BinDir = *flags.BinDir
	}
	for name, spec := range flags.Tools {
		cfg.Tools[name] = spec
	}
}

// validate rejects malformed [tools] entries with a hard error; unknown
// top-level tables are warned about (see overlayManifest), not rejected.
func validate(cfg *Config) error {
	for name, spec := range cfg.Tools {
		if strings.TrimSpace(name) == "" {
			return vxerrors.NewValidationError("vx.toml [tools]", "name", "a non-empty tool name", "\"\"")
		}
		if strings.TrimSpace(spec) == "" {
			return vxerrors.NewValidationError(fmt.Sprintf("vx.toml [tools.%s]", name), "version-spec", "a non-empty version spec", "\"\"")
		}
	}
	return nil
}
