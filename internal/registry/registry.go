package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/noah-isme/easyaudit-api/internal/models"
)

// Entity is anything that can be shown as the subject or source of an activity.
type Entity interface {
	DisplayName() string
}

// EntityLookup resolves polymorphic references into entities.
type EntityLookup interface {
	Lookup(ctx context.Context, ref models.Reference) (Entity, bool, error)
}

// LookupFunc adapts a function to EntityLookup.
type LookupFunc func(ctx context.Context, ref models.Reference) (Entity, bool, error)

// Lookup calls f.
func (f LookupFunc) Lookup(ctx context.Context, ref models.Reference) (Entity, bool, error) {
	return f(ctx, ref)
}

// NamedEntity is a plain Entity carrying only a display name.
type NamedEntity struct {
	Name string
}

// DisplayName returns the stored name.
func (e NamedEntity) DisplayName() string {
	return e.Name
}

// Registry dispatches lookups by reference type tag.
type Registry struct {
	mu      sync.RWMutex
	lookups map[string]EntityLookup
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{lookups: make(map[string]EntityLookup)}
}

// Register binds typeTag to lookup, replacing any earlier binding.
func (r *Registry) Register(typeTag string, lookup EntityLookup) error {
	tag := strings.TrimSpace(typeTag)
	if tag == "" {
		return fmt.Errorf("type tag must not be empty")
	}
	if lookup == nil {
		return fmt.Errorf("lookup for %q must not be nil", tag)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups[tag] = lookup
	return nil
}

// Types lists the registered type tags.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.lookups))
	for tag := range r.lookups {
		types = append(types, tag)
	}
	return types
}

// Lookup resolves ref through the lookup registered for its type. Unknown types are not found.
func (r *Registry) Lookup(ctx context.Context, ref models.Reference) (Entity, bool, error) {
	r.mu.RLock()
	lookup, ok := r.lookups[ref.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return lookup.Lookup(ctx, ref)
}
