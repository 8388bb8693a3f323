package flowgate

import "encoding/json"

// PayloadValidator checks a raw structured payload against a declared shape.
type PayloadValidator interface {
	Validate(payload []byte) error
}

// ResponseSchema is the wire form of a structured output declaration.
// Providers send Schema upstream; the client runs Validator on the reply.
type ResponseSchema struct {
	// Name identifies the schema to the provider.
	Name string
	// Description steers the model toward the intended content.
	Description string
	// Schema is the JSON Schema document.
	Schema json.RawMessage
	// Strict asks the provider to enforce the schema exactly.
	Strict bool
	// Validator checks returned payloads. When nil only JSON syntax is checked.
	Validator PayloadValidator `json:"-"`
}
