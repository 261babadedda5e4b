package types

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-asks/pkg/schema"
)

// Built-in type names.
const (
	String  = "string"
	Number  = "number"
	Integer = "integer"
	Boolean = "boolean"
	Path    = "path"
	URL     = "url"
)

// Registry maps type names to capability bundles. Registered entries shadow
// built-ins; unknown names resolve to an empty bundle.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]schema.Type
}

// NewRegistry creates a registry that falls back to the built-in types.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]schema.Type),
	}
}

// Register stores or overwrites the bundle for name.
func (r *Registry) Register(name string, bundle schema.Type) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("types: type name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[string]schema.Type)
	}
	r.entries[name] = bundle
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(name string, bundle schema.Type) {
	if err := r.Register(name, bundle); err != nil {
		panic(err)
	}
}

// Resolve returns the bundle for name. It never fails.
func (r *Registry) Resolve(name string) schema.Type {
	name = strings.TrimSpace(name)
	if name == "" {
		return schema.Type{}
	}
	if r != nil {
		r.mu.RLock()
		bundle, ok := r.entries[name]
		r.mu.RUnlock()
		if ok {
			return bundle
		}
	}
	if bundle, ok := builtins[name]; ok {
		return bundle
	}
	return schema.Type{}
}

// Has reports whether name is registered or built in.
func (r *Registry) Has(name string) bool {
	if _, ok := builtins[name]; ok {
		return true
	}
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.entries[name]
	return ok
}

// Names returns a sorted list of every resolvable type name.
func (r *Registry) Names() []string {
	seen := make(map[string]struct{}, len(builtins))
	for name := range builtins {
		seen[name] = struct{}{}
	}
	if r != nil {
		r.mu.RLock()
		for name := range r.entries {
			seen[name] = struct{}{}
		}
		r.mu.RUnlock()
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
