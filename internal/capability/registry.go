package capability

import (
	"fmt"
	"strings"
	"sync"
)

// Registry maps provider names to live instances.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: map[string]Provider{}}
}

// Register adds a provider under its name and optional aliases.
func (r *Registry) Register(p Provider, aliases ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := append([]string{p.Name()}, aliases...)
	for _, n := range all {
		r.providers[strings.ToLower(n)] = p
	}
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	p := r.providers[strings.ToLower(name)]
	r.mu.RUnlock()

	if p == nil {
		return nil, fmt.Errorf("capability: provider %q not registered", name)
	}
	return p, nil
}

// Names returns the registered provider names in priority order, followed
// by any extras in no particular order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[string]bool{}
	var out []string
	for _, n := range PriorityOrder {
		if _, ok := r.providers[n]; ok {
			out = append(out, n)
			seen[n] = true
		}
	}
	for n := range r.providers {
		if !seen[n] {
			out = append(out, n)
		}
	}
	return out
}
