package openai

import (
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"

	ai "github.com/spetersoncode/flowgate"
)

func buildSchemaFormat(schema *ai.ResponseSchema) (openai.ChatCompletionNewParamsResponseFormatUnion, error) {
	var schemaMap map[string]any
	if err := json.Unmarshal(schema.Schema, &schemaMap); err != nil {
		return openai.ChatCompletionNewParamsResponseFormatUnion{},
			ai.NewUserInputError(fmt.Sprintf("openai: invalid response schema %q", schema.Name), 0, err)
	}

	name := schema.Name
	if name == "" {
		name = "response_schema"
	}
	if schema.Strict {
		closeObjects(schemaMap)
	}

	jsonSchema := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:   name,
		Schema: schemaMap,
		Strict: openai.Bool(schema.Strict),
	}
	if schema.Description != "" {
		jsonSchema.Description = openai.String(schema.Description)
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: jsonSchema},
	}, nil
}

// closeObjects sets additionalProperties to false on every nested object,
// which strict mode requires.
func closeObjects(schema map[string]any) {
	if schema == nil {
		return
	}
	if isObjectType(schema["type"]) {
		schema["additionalProperties"] = false
	}
	if props, ok := schema["properties"].(map[string]any); ok {
		for _, prop := range props {
			if m, ok := prop.(map[string]any); ok {
				closeObjects(m)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		closeObjects(items)
	}
}

// isObjectType accepts both "object" and ["object","null"].
func isObjectType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "object"
	case []any:
		for _, e := range v {
			if e == "object" {
				return true
			}
		}
	}
	return false
}
