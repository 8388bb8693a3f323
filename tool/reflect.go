package tool

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaFor reflects a closed JSON Schema object from struct type T.
//
// Fields use the json tag for their name and are required unless tagged
// omitempty. Descriptions and constraints come from the jsonschema tag:
//
//	type WeatherArgs struct {
//	    Latitude float64 `json:"latitude" jsonschema:"description=Latitude in degrees,minimum=-90,maximum=90"`
//	}
func SchemaFor[T any]() (json.RawMessage, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Anonymous:                 true,
	}
	var v T
	s := reflector.Reflect(v)
	if s.Type != "object" {
		return nil, fmt.Errorf("tool: arguments must be a struct, got %T", v)
	}
	s.Version = ""

	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("tool: marshal schema: %w", err)
	}
	return data, nil
}

// MustSchemaFor is like SchemaFor but panics on error.
func MustSchemaFor[T any]() json.RawMessage {
	s, err := SchemaFor[T]()
	if err != nil {
		panic(err)
	}
	return s
}
