package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
)

// Builder is the interface implemented by all schema builders.
type Builder interface {
	// Build serializes the schema to json.RawMessage.
	// Returns a *DefinitionError if the schema is inconsistent.
	Build() (json.RawMessage, error)

	// MustBuild is like Build but panics on error.
	MustBuild() json.RawMessage

	// schema returns the internal representation for composition.
	schema() *schemaNode
}

// property is one named entry of an object, kept in declaration order.
type property struct {
	name string
	node *schemaNode
}

// schemaNode is the internal representation of a JSON Schema.
type schemaNode struct {
	Type        string
	Nullable    bool
	Description string
	Enum        []any
	Default     any

	// String constraints
	MinLength *int
	MaxLength *int
	Pattern   string

	// Numeric constraints
	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum *float64
	ExclusiveMaximum *float64

	// Array constraints
	Items       *schemaNode
	MinItems    *int
	MaxItems    *int
	UniqueItems bool

	// Object constraints
	Properties           []property
	Required             []string
	AdditionalProperties *bool
}

// Sentinel errors for schema definitions.
var (
	// ErrInvalidRange is returned when min exceeds max.
	ErrInvalidRange = errors.New("schema: minimum exceeds maximum")

	// ErrInvalidPattern is returned when a regex pattern is invalid.
	ErrInvalidPattern = errors.New("schema: invalid regex pattern")

	// ErrNilItems is returned when an array has no items schema.
	ErrNilItems = errors.New("schema: array requires items schema")

	// ErrMissingName is returned when a named schema is defined without a name.
	ErrMissingName = errors.New("schema: name is required")
)

// DefinitionError reports an inconsistent schema descriptor.
// It is raised while building, never while validating a payload.
type DefinitionError struct {
	Field   string // The field name (for objects)
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *DefinitionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("schema: field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("schema: %s", e.Message)
}

func (e *DefinitionError) Unwrap() error {
	return e.Err
}

// closed reports whether unknown object fields are rejected.
func (s *schemaNode) closed() bool {
	return s.AdditionalProperties != nil && !*s.AdditionalProperties
}

// check verifies the schema for internal consistency.
func (s *schemaNode) check() error {
	switch s.Type {
	case "string":
		if s.MinLength != nil && s.MaxLength != nil && *s.MinLength > *s.MaxLength {
			return &DefinitionError{Message: "minLength exceeds maxLength", Err: ErrInvalidRange}
		}
		if s.Pattern != "" {
			if _, err := regexp.Compile(s.Pattern); err != nil {
				return &DefinitionError{
					Message: fmt.Sprintf("invalid pattern %q: %v", s.Pattern, err),
					Err:     ErrInvalidPattern,
				}
			}
		}

	case "integer", "number":
		if s.Minimum != nil && s.Maximum != nil && *s.Minimum > *s.Maximum {
			return &DefinitionError{Message: "minimum exceeds maximum", Err: ErrInvalidRange}
		}
		if s.ExclusiveMinimum != nil && s.ExclusiveMaximum != nil && *s.ExclusiveMinimum >= *s.ExclusiveMaximum {
			return &DefinitionError{Message: "exclusiveMinimum >= exclusiveMaximum", Err: ErrInvalidRange}
		}

	case "array":
		if s.Items == nil {
			return &DefinitionError{Message: "array requires items schema", Err: ErrNilItems}
		}
		if s.MinItems != nil && s.MaxItems != nil && *s.MinItems > *s.MaxItems {
			return &DefinitionError{Message: "minItems exceeds maxItems", Err: ErrInvalidRange}
		}
		if err := s.Items.check(); err != nil {
			return &DefinitionError{Message: fmt.Sprintf("invalid items schema: %v", err), Err: err}
		}

	case "object":
		for _, p := range s.Properties {
			if err := p.node.check(); err != nil {
				return &DefinitionError{Field: p.name, Message: err.Error(), Err: err}
			}
		}
	}
	return nil
}

// MarshalJSON writes the schema with a stable key order and the object
// properties in declaration order.
func (s *schemaNode) MarshalJSON() ([]byte, error) {
	w := &objectWriter{}
	w.buf.WriteByte('{')

	switch {
	case s.Nullable && s.Type != "":
		w.field("type", []string{s.Type, "null"})
	case s.Type != "":
		w.field("type", s.Type)
	}
	if s.Description != "" {
		w.field("description", s.Description)
	}
	if len(s.Enum) > 0 {
		enum := s.Enum
		if s.Nullable {
			enum = append(slices.Clone(enum), nil)
		}
		w.field("enum", enum)
	}
	if s.Default != nil {
		w.field("default", s.Default)
	}

	w.optional("minLength", s.MinLength)
	w.optional("maxLength", s.MaxLength)
	if s.Pattern != "" {
		w.field("pattern", s.Pattern)
	}

	w.optional("minimum", s.Minimum)
	w.optional("maximum", s.Maximum)
	w.optional("exclusiveMinimum", s.ExclusiveMinimum)
	w.optional("exclusiveMaximum", s.ExclusiveMaximum)

	if s.Items != nil {
		w.field("items", s.Items)
	}
	w.optional("minItems", s.MinItems)
	w.optional("maxItems", s.MaxItems)
	if s.UniqueItems {
		w.field("uniqueItems", true)
	}

	if s.Type == "object" || len(s.Properties) > 0 {
		w.key("properties")
		w.buf.WriteByte('{')
		for i, p := range s.Properties {
			if i > 0 {
				w.buf.WriteByte(',')
			}
			w.raw(p.name)
			w.buf.WriteByte(':')
			w.raw(p.node)
		}
		w.buf.WriteByte('}')
	}
	if len(s.Required) > 0 {
		w.field("required", s.Required)
	}
	if s.AdditionalProperties != nil {
		w.field("additionalProperties", *s.AdditionalProperties)
	}

	w.buf.WriteByte('}')
	if w.err != nil {
		return nil, w.err
	}
	return w.buf.Bytes(), nil
}

// objectWriter accumulates a JSON object and remembers the first error.
type objectWriter struct {
	buf    bytes.Buffer
	fields int
	err    error
}

func (w *objectWriter) key(name string) {
	if w.fields > 0 {
		w.buf.WriteByte(',')
	}
	w.fields++
	w.raw(name)
	w.buf.WriteByte(':')
}

func (w *objectWriter) field(name string, v any) {
	w.key(name)
	w.raw(v)
}

func (w *objectWriter) raw(v any) {
	if w.err != nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		w.err = err
		return
	}
	w.buf.Write(data)
}

func optionalValue[T any](p *T) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

func (w *objectWriter) optional(name string, p any) {
	switch v := p.(type) {
	case *int:
		if n, ok := optionalValue(v); ok {
			w.field(name, n)
		}
	case *float64:
		if f, ok := optionalValue(v); ok {
			w.field(name, f)
		}
	}
}

// build validates and serializes a node.
func build(node *schemaNode) (json.RawMessage, error) {
	if err := node.check(); err != nil {
		return nil, err
	}
	return json.Marshal(node)
}

// mustBuild is like build but panics on error.
func mustBuild(node *schemaNode) json.RawMessage {
	data, err := build(node)
	if err != nil {
		panic(err)
	}
	return data
}

// ptr returns a pointer to the value.
func ptr[T any](v T) *T {
	return &v
}
