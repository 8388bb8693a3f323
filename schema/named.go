package schema

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/samber/lo"
	"github.com/santhosh-tekuri/jsonschema/v6"

	ai "github.com/spetersoncode/flowgate"
)

// Schema is a named, immutable descriptor for a structured output shape.
// It serializes the shape sent upstream and validates what comes back.
type Schema struct {
	name        string
	description string
	root        *schemaNode
	raw         json.RawMessage
	compiled    *jsonschema.Schema
}

// Define builds a named schema from an object builder.
// The builder must not be modified afterward.
func Define(name, description string, object *ObjectBuilder) (*Schema, error) {
	if name == "" {
		return nil, &DefinitionError{Message: "name is required", Err: ErrMissingName}
	}
	if object == nil {
		return nil, &DefinitionError{Message: "object builder is required"}
	}
	raw, err := object.Build()
	if err != nil {
		return nil, err
	}
	compiled, err := compile(raw)
	if err != nil {
		return nil, &DefinitionError{Message: fmt.Sprintf("compile %q: %v", name, err), Err: err}
	}
	return &Schema{
		name:        name,
		description: description,
		root:        object.node,
		raw:         raw,
		compiled:    compiled,
	}, nil
}

// MustDefine is like Define but panics on error.
func MustDefine(name, description string, object *ObjectBuilder) *Schema {
	s, err := Define(name, description, object)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Description returns the schema description.
func (s *Schema) Description() string { return s.description }

// JSON returns a copy of the serialized JSON Schema.
func (s *Schema) JSON() json.RawMessage { return slices.Clone(s.raw) }

// Closed reports whether unknown top-level fields are rejected.
func (s *Schema) Closed() bool { return s.root.closed() }

// Fields returns the top-level field names in declaration order.
func (s *Schema) Fields() []string {
	return lo.Map(s.root.Properties, func(p property, _ int) string { return p.name })
}

// Validate checks a raw JSON payload. It returns nil or ValidationErrors.
func (s *Schema) Validate(payload []byte) error {
	return validatePayload(s.compiled, payload)
}

// ResponseSchema returns the request form of this schema. Closed schemas
// ask the provider for strict adherence.
func (s *Schema) ResponseSchema() *ai.ResponseSchema {
	return &ai.ResponseSchema{
		Name:        s.name,
		Description: s.description,
		Schema:      s.JSON(),
		Strict:      s.Closed(),
		Validator:   s,
	}
}

// Decode validates payload against s and unmarshals it into T.
// Failures are reported as *ai.SchemaValidationError.
func Decode[T any](s *Schema, payload []byte) (T, error) {
	var out T
	if err := s.Validate(payload); err != nil {
		return out, &ai.SchemaValidationError{Schema: s.name, Payload: string(payload), Err: err}
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return out, &ai.SchemaValidationError{Schema: s.name, Payload: string(payload), Err: err}
	}
	return out, nil
}
