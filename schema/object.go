package schema

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Object creates a new object schema builder.
// Fields are serialized and validated in the order they are added.
func Object() *ObjectBuilder {
	return &ObjectBuilder{node: &schemaNode{Type: "object"}}
}

// ObjectBuilder constructs object type schemas.
type ObjectBuilder struct {
	node *schemaNode
}

// Desc sets the description for the object itself.
func (b *ObjectBuilder) Desc(description string) *ObjectBuilder {
	b.node.Description = description
	return b
}

// Field adds a field with its schema.
// The field argument can be a Builder or a *RequiredField.
// Adding a name twice replaces the earlier schema in place.
func (b *ObjectBuilder) Field(name string, field any) *ObjectBuilder {
	switch f := field.(type) {
	case *RequiredField:
		b.setProperty(name, f.builder.schema())
		if !slices.Contains(b.node.Required, name) {
			b.node.Required = append(b.node.Required, name)
		}
	case Builder:
		b.setProperty(name, f.schema())
	default:
		panic(fmt.Sprintf("schema: Field %q requires a Builder or *RequiredField, got %T", name, field))
	}
	return b
}

func (b *ObjectBuilder) setProperty(name string, node *schemaNode) {
	for i, p := range b.node.Properties {
		if p.name == name {
			b.node.Properties[i].node = node
			return
		}
	}
	b.node.Properties = append(b.node.Properties, property{name: name, node: node})
}

// AdditionalProperties controls whether extra properties are allowed.
func (b *ObjectBuilder) AdditionalProperties(allowed bool) *ObjectBuilder {
	b.node.AdditionalProperties = ptr(allowed)
	return b
}

// StrictMode closes the object: unknown fields are rejected during
// validation and providers are asked to follow the schema exactly.
func (b *ObjectBuilder) StrictMode() *ObjectBuilder {
	return b.AdditionalProperties(false)
}

// Nullable also accepts null in place of the object.
func (b *ObjectBuilder) Nullable() *ObjectBuilder {
	b.node.Nullable = true
	return b
}

// Required marks this object as required when nested in another object.
func (b *ObjectBuilder) Required() *RequiredField {
	return &RequiredField{builder: b}
}

// Build serializes the schema to json.RawMessage.
func (b *ObjectBuilder) Build() (json.RawMessage, error) { return build(b.node) }

// MustBuild is like Build but panics on error.
func (b *ObjectBuilder) MustBuild() json.RawMessage { return mustBuild(b.node) }

func (b *ObjectBuilder) schema() *schemaNode { return b.node }

// RequiredField wraps a Builder to mark it as required in an object.
type RequiredField struct {
	builder Builder
}
