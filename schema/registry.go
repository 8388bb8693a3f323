package schema

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// ErrUnknownSchema is returned when a schema name is not registered.
var ErrUnknownSchema = errors.New("schema: unknown schema")

// ErrSchemaAlreadyRegistered is returned when registering a duplicate name.
type ErrSchemaAlreadyRegistered struct {
	Name string
}

func (e *ErrSchemaAlreadyRegistered) Error() string {
	return fmt.Sprintf("schema: %q already registered", e.Name)
}

// Registry holds named schemas. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Schema)}
}

// Register adds a schema under its name.
func (r *Registry) Register(s *Schema) error {
	if s == nil {
		return errors.New("schema: cannot register nil schema")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[s.name]; exists {
		return &ErrSchemaAlreadyRegistered{Name: s.name}
	}
	r.schemas[s.name] = s
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(schemas ...*Schema) *Registry {
	for _, s := range schemas {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
	return r
}

// Get returns the schema registered under name.
func (r *Registry) Get(name string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[name]
	return s, ok
}

// Lookup is like Get but returns ErrUnknownSchema for a missing name.
func (r *Registry) Lookup(name string) (*Schema, error) {
	s, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSchema, name)
	}
	return s, nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := lo.Keys(r.schemas)
	r.mu.RUnlock()
	slices.Sort(names)
	return names
}

// Validate checks payload against the named schema.
func (r *Registry) Validate(name string, payload []byte) error {
	s, err := r.Lookup(name)
	if err != nil {
		return err
	}
	return s.Validate(payload)
}
