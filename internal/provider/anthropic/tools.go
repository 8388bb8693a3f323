package anthropic

import (
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	ai "github.com/spetersoncode/flowgate"
)

// responseToolName is the synthetic tool used to carry structured output.
const responseToolName = "structured_response"

func convertTools(tools []ai.Tool) []anthropic.ToolUnionParam {
	if len(tools) == 0 {
		return nil
	}
	result := make([]anthropic.ToolUnionParam, len(tools))
	for i, t := range tools {
		schema, _ := decodeSchema(t.Parameters)
		result[i] = anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name,
				Description: anthropic.String(t.Description),
				InputSchema: inputSchema(schema),
			},
		}
	}
	return result
}

func convertToolChoice(choice ai.ToolChoice) anthropic.ToolChoiceUnionParam {
	switch choice {
	case ai.ToolChoiceNone:
		return anthropic.ToolChoiceUnionParam{OfNone: &anthropic.ToolChoiceNoneParam{}}
	case ai.ToolChoiceRequired:
		return anthropic.ToolChoiceUnionParam{OfAny: &anthropic.ToolChoiceAnyParam{}}
	default:
		return anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}
	}
}

// buildResponseTool declares the response schema as a tool and forces the
// model to call it.
func buildResponseTool(rs *ai.ResponseSchema) (anthropic.ToolUnionParam, anthropic.ToolChoiceUnionParam, error) {
	schema, err := decodeSchema(rs.Schema)
	if err != nil {
		return anthropic.ToolUnionParam{}, anthropic.ToolChoiceUnionParam{},
			ai.NewUserInputError(fmt.Sprintf("anthropic: invalid response schema %q", rs.Name), 0, err)
	}

	description := "Respond with structured JSON matching the input schema."
	if rs.Description != "" {
		description = rs.Description
	}

	tool := anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        responseToolName,
			Description: anthropic.String(description),
			InputSchema: inputSchema(schema),
		},
	}
	choice := anthropic.ToolChoiceUnionParam{
		OfTool: &anthropic.ToolChoiceToolParam{Name: responseToolName},
	}
	return tool, choice, nil
}

func decodeSchema(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var schema map[string]any
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, err
	}
	return schema, nil
}

// inputSchema splits a JSON Schema object into the SDK's typed fields,
// carrying everything else through as extra fields.
func inputSchema(schema map[string]any) anthropic.ToolInputSchemaParam {
	param := anthropic.ToolInputSchemaParam{Properties: schema["properties"]}
	if req, ok := schema["required"].([]any); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				param.Required = append(param.Required, s)
			}
		}
	}

	extra := make(map[string]any)
	for k, v := range schema {
		switch k {
		case "type", "properties", "required":
		default:
			extra[k] = v
		}
	}
	if len(extra) > 0 {
		param.ExtraFields = extra
	}
	return param
}
