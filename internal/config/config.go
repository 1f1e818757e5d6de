// Package config loads vx's layered configuration: built-in defaults, the
// user-level config.toml, the project's vx.toml, environment variables, and
// finally CLI flags, each overlaying the last (spec component C6).
package config

import (
	"fmt"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Default path constants (all relative to the user's home directory).
const (
	DefaultConfigDir = "~/.config/vx"
	DefaultDataDir   = "~/.vx"
	DefaultBinDir    = "~/.vx/bin"
	DefaultEnvDir    = "~/.config/vx"
	ConfigFileName   = "config.toml"
	ManifestFileName = "vx.toml"
	LockFileName     = "vx.lock"
)

// Settings holds the [settings] table of vx.toml / config.toml.
type Settings struct {
	AutoInstall     bool     `toml:"auto_install"`
	ParallelInstall bool     `toml:"parallel_install"`
	CacheDuration   Duration `toml:"cache_duration"`
	InheritVxPath   bool     `toml:"inherit_vx_path"`
}

// DefaultSettings returns the built-in default settings (spec §6).
func DefaultSettings() Settings {
	return Settings{
		AutoInstall:     true,
		ParallelInstall: true,
		CacheDuration:   Duration(7 * 24 * time.Hour),
		InheritVxPath:   true,
	}
}

// Duration wraps time.Duration so it can be decoded from TOML strings like
// "7d" or "30s" rather than only an integer nanosecond count.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler, accepting the usual
// Go duration suffixes plus a "d" (day) suffix vx's schema documents.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)
	if s == "" {
		*d = 0
		return nil
	}
	if n := len(s); n > 1 && s[n-1] == 'd' {
		days, err := time.ParseDuration(s[:n-1] + "h")
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(days * 24)
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// AsDuration returns the plain time.Duration value.
func (d Duration) AsDuration() time.Duration {
	return time.Duration(d)
}

// ScriptDef is one entry of the [scripts] table. It supports both the short
// form (a bare command string) and the long form (command plus deps/env/
// description), decoded by the caller inspecting the raw TOML value — see
// decodeScript in manifest.go.
type ScriptDef struct {
	Command     string   `toml:"cmd"`
	DependsOn   []string `toml:"depends_on,omitempty"`
	Env         map[string]string `toml:"env,omitempty"`
	Description string   `toml:"description,omitempty"`
	WorkingDir  string   `toml:"cwd,omitempty"`
}

// ProjectMeta is the informational [project] table.
type ProjectMeta struct {
	Name        string `toml:"name,omitempty"`
	Description string `toml:"description,omitempty"`
}

// EnvTable is the [env] table: plain defaults plus required/optional maps.
type EnvTable struct {
	Vars     map[string]string `toml:"-"`
	Required map[string]string `toml:"required,omitempty"`
	Optional map[string]string `toml:"optional,omitempty"`
}

// Config is the fully-merged configuration vx operates against, after all
// layers (defaults, user config, project manifest, env, flags) have been
// overlaid by a Loader.
type Config struct {
	DataDir   string
	BinDir    string
	EnvDir    string
	ConfigDir string

	Project  ProjectMeta
	Tools    map[string]string // tool name -> version-spec
	Env      EnvTable
	Scripts  map[string]ScriptDef
	Settings Settings

	// ProjectRoot is the directory containing the vx.toml that contributed
	// [tools]/[scripts]/[env], or "" if none was found.
	ProjectRoot string
}

// DefaultConfig returns the built-in default configuration (layer 1).
func DefaultConfig() *Config {
	return &Config{
		DataDir:   DefaultDataDir,
		BinDir:    DefaultBinDir,
		EnvDir:    DefaultEnvDir,
		ConfigDir: DefaultConfigDir,
		Tools:     map[string]string{},
		Scripts:   map[string]ScriptDef{},
		Settings:  DefaultSettings(),
	}
}

// partialSettings mirrors Settings but with pointer fields so TOML decoding
// can distinguish "key present" from "key absent" — a plain bool or
// Duration can't represent "not given" since their zero values are valid.
type partialSettings struct {
	AutoInstall     *bool     `toml:"auto_install,omitempty"`
	ParallelInstall *bool     `toml:"parallel_install,omitempty"`
	CacheDuration   *Duration `toml:"cache_duration,omitempty"`
	InheritVxPath   *bool     `toml:"inherit_vx_path,omitempty"`
}

func (p partialSettings) applyTo(base *Settings) {
	if p.AutoInstall != nil {
		base.AutoInstall = *p.AutoInstall
	}
	if p.ParallelInstall != nil {
		base.ParallelInstall = *p.ParallelInstall
	}
	if p.CacheDuration != nil {
		base.CacheDuration = *p.CacheDuration
	}
	if p.InheritVxPath != nil {
		base.InheritVxPath = *p.InheritVxPath
	}
}

// userConfigFile is the on-disk shape of ~/.config/vx/config.toml. It only
// ever carries the ambient, non-project settings; [tools]/[scripts] live in
// vx.toml.
type userConfigFile struct {
	DataDir  string          `toml:"data_dir,omitempty"`
	BinDir   string          `toml:"bin_dir,omitempty"`
	EnvDir   string          `toml:"env_dir,omitempty"`
	Settings partialSettings `toml:"settings,omitempty"`
}

// MarshalUserConfig renders c's ambient fields as config.toml content.
func MarshalUserConfig(c *Config) ([]byte, error) {
	s := c.Settings
	return toml.Marshal(userConfigFile{
		DataDir: c.DataDir,
		BinDir:  c.BinDir,
		EnvDir:  c.EnvDir,
		Settings: partialSettings{
			AutoInstall:     &s.AutoInstall,
			ParallelInstall: &s.ParallelInstall,
			CacheDuration:   &s.CacheDuration,
			InheritVxPath:   &s.InheritVxPath,
		},
	})
}

// UnmarshalUserConfig overlays TOML content from config.toml onto c.
// Absent keys in the file leave c's existing values untouched.
func UnmarshalUserConfig(data []byte, c *Config) error {
	var f userConfigFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse config.toml: %w", err)
	}
	if f.DataDir != "" {
		c.DataDir = f.DataDir
	}
	if f.BinDir != "" {
		c.BinDir = f.BinDir
	}
	if f.EnvDir != "" {
		c.EnvDir = f.EnvDir
	}
	f.Settings.applyTo(&c.Settings)
	return nil
}
