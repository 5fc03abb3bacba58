package indicator

import (
	"fmt"
	"sort"
)

// Registry indexes indicator types by name and by the source doc_type they consume.
type Registry struct {
	byName map[string]*Type
	types  []*Type
}

func NewRegistry(types ...*Type) (*Registry, error) {
	r := &Registry{
		byName: map[string]*Type{},
	}
	for _, t := range types {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds t. Names must be unique.
func (r *Registry) Register(t *Type) error {
	if _, exists := r.byName[t.name]; exists {
		return fmt.Errorf("%w: indicator %q registered twice", ErrInvalidDefinition, t.name)
	}
	r.byName[t.name] = t
	r.types = append(r.types, t)
	return nil
}

func (r *Registry) Get(name string) (*Type, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// ForSource returns the types fed by docType in registration order. Types
// without a source type are fed by every doc_type.
func (r *Registry) ForSource(docType string) []*Type {
	var out []*Type
	for _, t := range r.types {
		if t.sourceType == "" || t.sourceType == docType {
			out = append(out, t)
		}
	}
	return out
}

// Names returns all registered indicator names sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Len() int { return len(r.byName) }
