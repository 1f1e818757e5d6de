package config

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// LoadManifest parses a vx.toml file at path.
func LoadManifest(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseManifest(data, filepath.Dir(path))
}

// ParseManifest decodes vx.toml content into a Config fragment (the
// project-scoped layer only; DataDir/BinDir/EnvDir are untouched here).
func ParseManifest(data []byte, projectRoot string) (*Config, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse vx.toml: %w", err)
	}

	cfg := &Config{
		Tools:       map[string]string{},
		Scripts:     map[string]ScriptDef{},
		ProjectRoot: projectRoot,
	}

	if p, ok := raw["project"].(map[string]any); ok {
		cfg.Project.Name, _ = p["name"].(string)
		cfg.Project.Description, _ = p["description"].(string)
	}

	if tools, ok := raw["tools"].(map[string]any); ok {
		for name, v := range tools {
			spec, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("vx.toml: [tools] entry %q must be a version-spec string", name)
			}
			cfg.Tools[name] = spec
		}
	}

	if envTable, ok := raw["env"].(map[string]any); ok {
		cfg.Env.Vars = map[string]string{}
		for k, v := range envTable {
			switch k {
			case "required":
				cfg.Env.Required = toStringMap(v)
			case "optional":
				cfg.Env.Optional = toStringMap(v)
			default:
				if s, ok := v.(string); ok {
					cfg.Env.Vars[k] = s
				}
			}
		}
	}

	if scripts, ok := raw["scripts"].(map[string]any); ok {
		for name, v := range scripts {
			def, err := decodeScript(v)
			if err != nil {
				return nil, fmt.Errorf("vx.toml: [scripts.%s]: %w", name, err)
			}
			cfg.Scripts[name] = def
		}
	}

	if settings, ok := raw["settings"].(map[string]any); ok {
		cfg.Settings = DefaultSettings()
		applyRawSettings(&cfg.Settings, settings)
	}

	return cfg, nil
}

// decodeScript accepts either the short form (a bare command string) or the
// long form (a table with cmd/depends_on/env/description/cwd).
func decodeScript(v any) (ScriptDef, error) {
	switch val := v.(type) {
	case string:
		return ScriptDef{Command: val}, nil
	case map[string]any:
		var def ScriptDef
		def.Command, _ = val["cmd"].(string)
		if def.Command == "" {
			return def, fmt.Errorf("missing cmd")
		}
		def.Description, _ = val["description"].(string)
		def.WorkingDir, _ = val["cwd"].(string)
		if deps, ok := val["depends_on"].([]any); ok {
			for _, d := range deps {
				if s, ok := d.(string); ok {
					def.DependsOn = append(def.DependsOn, s)
				}
			}
		}
		if env, ok := val["env"].(map[string]any); ok {
			def.Env = toStringMap(env)
		}
		return def, nil
	default:
		return ScriptDef{}, fmt.Errorf("must be a string or table")
	}
}

func toStringMap(v any) map[string]string {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		if s, ok := val.(string); ok {
			out[k] = s
		}
	}
	return out
}

func applyRawSettings(s *Settings, raw map[string]any) {
	if b, ok := raw["auto_install"].(bool); ok {
		s.AutoInstall = b
	}
	if b, ok := raw["parallel_install"].(bool); ok {
		s.ParallelInstall = b
	}
	if b, ok := raw["inherit_vx_path"].(bool); ok {
		s.InheritVxPath = b
	}
	if str, ok := raw["cache_duration"].(string); ok {
		var d Duration
		if err := d.UnmarshalText([]byte(str)); err == nil {
			s.CacheDuration = d
		}
	}
}

// MarshalManifest renders the project-scoped fields of cfg (tools, scripts,
// env, project metadata, settings) back to vx.toml shape. DataDir/BinDir/
// EnvDir and other user-config-only fields are never written here.
func MarshalManifest(cfg *Config) ([]byte, error) {
	raw := map[string]any{}

	if cfg.Project.Name != "" || cfg.Project.Description != "" {
		proj := map[string]any{}
		if cfg.Project.Name != "" {
			proj["name"] = cfg.Project.Name
		}
		if cfg.Project.Description != "" {
			proj["description"] = cfg.Project.Description
		}
		raw["project"] = proj
	}

	if len(cfg.Tools) > 0 {
		tools := map[string]any{}
		for name, v := range cfg.Tools {
			tools[name] = v
		}
		raw["tools"] = tools
	}

	if len(cfg.Env.Vars) > 0 || len(cfg.Env.Required) > 0 || len(cfg.Env.Optional) > 0 {
		env := map[string]any{}
		for k, v := range cfg.Env.Vars {
			env[k] = v
		}
		if len(cfg.Env.Required) > 0 {
			req := map[string]any{}
			for k, v := range cfg.Env.Required {
				req[k] = v
			}
			env["required"] = req
		}
		if len(cfg.Env.Optional) > 0 {
			opt := map[string]any{}
			for k, v := range cfg.Env.Optional {
				opt[k] = v
			}
			env["optional"] = opt
		}
		raw["env"] = env
	}

	if len(cfg.Scripts) > 0 {
		scripts := map[string]any{}
		for name, def := range cfg.Scripts {
			tbl := map[string]any{"cmd": def.Command}
			if def.Description != "" {
				tbl["description"] = def.Description
			}
			if def.WorkingDir != "" {
				tbl["cwd"] = def.WorkingDir
			}
			if len(def.DependsOn) > 0 {
				tbl["depends_on"] = def.DependsOn
			}
			if len(def.Env) > 0 {
				env := map[string]any{}
				for k, v := range def.Env {
					env[k] = v
				}
				tbl["env"] = env
			}
			scripts[name] = tbl
		}
		raw["scripts"] = scripts
	}

	if (cfg.Settings != Settings{}) {
		raw["settings"] = map[string]any{
			"auto_install":     cfg.Settings.AutoInstall,
			"parallel_install": cfg.Settings.ParallelInstall,
			"inherit_vx_path":  cfg.Settings.InheritVxPath,
			"cache_duration":   cfg.Settings.CacheDuration.AsDuration().String(),
		}
	}

	return toml.Marshal(raw)
}

// LockedTool is one entry of vx.lock: a concrete pinned version plus the
// checksum and URL it was installed from.
type LockedTool struct {
	Version  string `toml:"version"`
	Checksum string `toml:"checksum,omitempty"`
	URL      string `toml:"url,omitempty"`
}

// Lockfile is the parsed shape of vx.lock.
type Lockfile struct {
	Tools map[string]LockedTool `toml:"tools"`
}

// LoadLockfile parses vx.lock at path. A missing file returns a nil
// Lockfile and no error — vx.lock is optional.
func LoadLockfile(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var lf Lockfile
	if err := toml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parse vx.lock: %w", err)
	}
	return &lf, nil
}

// Marshal renders the lockfile back to TOML, sorted by tool name for
// deterministic diffs (go-toml's map encoding already sorts keys).
func (lf *Lockfile) Marshal() ([]byte, error) {
	return toml.Marshal(lf)
}
