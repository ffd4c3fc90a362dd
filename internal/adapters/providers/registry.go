package providers

import "fmt"

// Registry maps provider slugs to adapters. The set is closed at construction;
// participants linked to a slug outside it verify as unavailable.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry builds a registry over the given adapters, keyed by Name.
func NewRegistry(adapters ...Adapter) *Registry {
	m := make(map[string]Adapter, len(adapters))
	for _, a := range adapters {
		m[a.Name()] = a
	}
	return &Registry{adapters: m}
}

// Resolve returns the adapter registered under the slug.
func (r *Registry) Resolve(slug string) (Adapter, error) {
	a, ok := r.adapters[slug]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, slug)
	}
	return a, nil
}

// Names returns the registered slugs.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	return names
}
