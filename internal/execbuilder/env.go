package execbuilder

import (
	"sort"

	"github.com/terassyi/vx/internal/errors"
)

// EnvLayers holds the ordered overlays that make up a child process's
// environment: caller env first, `.env`, `.env.local`, `vx.toml [env]`
// defaults, then the script's own `env` table last. Required names the
// `[env.required]` keys that must be set by the time every layer has been
// applied.
type EnvLayers struct {
	Caller      map[string]string
	DotEnv      map[string]string
	DotEnvLocal map[string]string
	Project     map[string]string
	Script      map[string]string
	Required    []string
}

// BuildEnv overlays each layer in order (later wins) and fails with
// EnvError if a required key is still unset or empty afterward. Required
// checking only applies when layers.Required is non-empty, i.e. for script
// runs that declare [env.required]; a bare `vx <tool>` invocation passes an
// empty Required slice.
func BuildEnv(layers EnvLayers) (map[string]string, error) {
	merged := make(map[string]string, len(layers.Caller))

	overlay := func(m map[string]string) {
		for k, v := range m {
			merged[k] = v
		}
	}
	overlay(layers.Caller)
	overlay(layers.DotEnv)
	overlay(layers.DotEnvLocal)
	overlay(layers.Project)
	overlay(layers.Script)

	for _, key := range layers.Required {
		if merged[key] == "" {
			return nil, errors.NewEnvMissingRequiredError(key)
		}
	}

	return merged, nil
}

// AsSlice renders a merged environment map as a "KEY=VALUE" slice suitable
// for exec.Cmd.Env, in sorted key order for determinism.
func AsSlice(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(env))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}
