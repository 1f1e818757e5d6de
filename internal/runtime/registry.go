package runtime

import (
	"fmt"
	"sort"
	"sync"

	"github.com/terassyi/vx/internal/platform"
)

// Registry is a process-wide, name-or-alias lookup table of registered
// Runtimes. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Runtime
	byAlias map[string]string // alias -> canonical name
	order   []string          // registration order, for stable All()
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:  make(map[string]Runtime),
		byAlias: make(map[string]string),
	}
}

// Register adds a Runtime to the registry. It returns an error if the
// runtime's name or any of its aliases collide with an already-registered
// name or alias.
func (r *Registry) Register(rt Runtime) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := rt.Name()
	if name == "" {
		return fmt.Errorf("runtime: cannot register a runtime with an empty name")
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("runtime: %q is already registered", name)
	}
	if _, exists := r.byAlias[name]; exists {
		return fmt.Errorf("runtime: %q collides with an existing alias", name)
	}
	for _, alias := range rt.Aliases() {
		if _, exists := r.byName[alias]; exists {
			return fmt.Errorf("runtime: alias %q collides with a registered runtime name", alias)
		}
		if owner, exists := r.byAlias[alias]; exists {
			return fmt.Errorf("runtime: alias %q already points to %q", alias, owner)
		}
	}

	r.byName[name] = rt
	for _, alias := range rt.Aliases() {
		r.byAlias[alias] = name
	}
	r.order = append(r.order, name)
	return nil
}

// Lookup finds a Runtime by its canonical name or any registered alias.
func (r *Registry) Lookup(name string) (Runtime, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if rt, ok := r.byName[name]; ok {
		return rt, true
	}
	if canonical, ok := r.byAlias[name]; ok {
		return r.byName[canonical], true
	}
	return nil, false
}

// All returns every registered Runtime in registration order.
func (r *Registry) All() []Runtime {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Runtime, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// FilterByPlatform returns the registered runtimes that support the given
// platform. A runtime with no declared SupportedPlatforms is treated as
// supporting every platform.
func (r *Registry) FilterByPlatform(plat platform.Platform) []Runtime {
	all := r.All()
	out := make([]Runtime, 0, len(all))
	for _, rt := range all {
		supported := rt.SupportedPlatforms()
		if len(supported) == 0 {
			out = append(out, rt)
			continue
		}
		for _, p := range supported {
			if p == plat {
				out = append(out, rt)
				break
			}
		}
	}
	return out
}

// Names returns every canonical runtime name, sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.byName))
	for name := range r.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
