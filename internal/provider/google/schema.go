package google

import (
	"encoding/json"
	"slices"

	"google.golang.org/genai"
)

// convertJSONSchema converts a JSON Schema document to a genai.Schema.
// An empty document converts to nil.
func convertJSONSchema(schemaJSON json.RawMessage) (*genai.Schema, error) {
	if len(schemaJSON) == 0 {
		return nil, nil
	}

	var schema map[string]any
	if err := json.Unmarshal(schemaJSON, &schema); err != nil {
		return nil, err
	}
	return convertSchemaObject(schema), nil
}

func convertSchemaObject(schema map[string]any) *genai.Schema {
	if schema == nil {
		return nil
	}

	result := &genai.Schema{}

	switch t := schema["type"].(type) {
	case string:
		result.Type = convertType(t)
	case []any:
		// ["string", "null"] is how nullable fields are spelled.
		for _, v := range t {
			s, _ := v.(string)
			if s == "null" {
				result.Nullable = genai.Ptr(true)
			} else if s != "" {
				result.Type = convertType(s)
			}
		}
	}

	if desc, ok := schema["description"].(string); ok {
		result.Description = desc
	}
	if enumVal, ok := schema["enum"].([]any); ok {
		for _, e := range enumVal {
			if s, ok := e.(string); ok {
				result.Enum = append(result.Enum, s)
			}
		}
	}
	if pattern, ok := schema["pattern"].(string); ok {
		result.Pattern = pattern
	}
	if format, ok := schema["format"].(string); ok {
		result.Format = format
	}

	result.MinLength = intField(schema, "minLength")
	result.MaxLength = intField(schema, "maxLength")
	result.MinItems = intField(schema, "minItems")
	result.MaxItems = intField(schema, "maxItems")
	result.Minimum = floatField(schema, "minimum")
	result.Maximum = floatField(schema, "maximum")

	if props, ok := schema["properties"].(map[string]any); ok {
		result.Properties = make(map[string]*genai.Schema, len(props))
		for name, propSchema := range props {
			if propMap, ok := propSchema.(map[string]any); ok {
				result.Properties[name] = convertSchemaObject(propMap)
				result.PropertyOrdering = append(result.PropertyOrdering, name)
			}
		}
		slices.Sort(result.PropertyOrdering)
	}

	if required, ok := schema["required"].([]any); ok {
		for _, r := range required {
			if s, ok := r.(string); ok {
				result.Required = append(result.Required, s)
			}
		}
	}

	if items, ok := schema["items"].(map[string]any); ok {
		result.Items = convertSchemaObject(items)
	}

	return result
}

func convertType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeUnspecified
	}
}

func intField(schema map[string]any, key string) *int64 {
	if f, ok := schema[key].(float64); ok {
		return genai.Ptr(int64(f))
	}
	return nil
}

func floatField(schema map[string]any, key string) *float64 {
	if f, ok := schema[key].(float64); ok {
		return genai.Ptr(f)
	}
	return nil
}
