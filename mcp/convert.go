package mcp

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	ai "github.com/spetersoncode/flowgate"
)

// emptyObject is the input schema of a tool declared without parameters.
var emptyObject = json.RawMessage(`{"type":"object","properties":{}}`)

// ToMCPTool converts a tool declaration to an MCP tool. The parameter
// schema is passed through as the raw input schema.
func ToMCPTool(t ai.Tool) mcp.Tool {
	params := t.Parameters
	if len(params) == 0 {
		params = emptyObject
	}
	return mcp.NewToolWithRawSchema(t.Name, t.Description, params)
}

// FromMCPTool converts an MCP tool to a tool declaration.
func FromMCPTool(t mcp.Tool) ai.Tool {
	schema := t.RawInputSchema
	if len(schema) == 0 {
		if data, err := json.Marshal(t.InputSchema); err == nil {
			schema = data
		}
	}
	return ai.Tool{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  schema,
	}
}

// toCallToolRequest converts a tool call to an MCP request. Arguments that
// are not a JSON object are sent as-is.
func toCallToolRequest(call ai.ToolCall) mcp.CallToolRequest {
	var args any
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			args = call.Arguments
		}
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      call.Name,
			Arguments: args,
		},
	}
}

// resultText joins the text parts and structured content of a result.
func resultText(result *mcp.CallToolResult) string {
	var parts []string
	for _, c := range result.Content {
		switch content := c.(type) {
		case mcp.TextContent:
			parts = append(parts, content.Text)
		case *mcp.TextContent:
			parts = append(parts, content.Text)
		default:
			if data, err := json.Marshal(content); err == nil {
				parts = append(parts, string(data))
			}
		}
	}
	if result.StructuredContent != nil {
		if data, err := json.Marshal(result.StructuredContent); err == nil {
			parts = append(parts, string(data))
		}
	}
	return strings.Join(parts, "\n")
}

// fromCallToolResult converts an MCP result into a tool result for call.
// A result flagged as an error becomes a Go error.
func fromCallToolResult(call ai.ToolCall, result *mcp.CallToolResult) (ai.ToolResult, error) {
	if result == nil {
		return ai.ToolResult{}, errors.New("mcp: empty tool result")
	}
	text := resultText(result)
	if result.IsError {
		return ai.ToolResult{}, errors.New(text)
	}
	return ai.ToolResult{ToolCallID: call.ID, Name: call.Name, Content: text}, nil
}
