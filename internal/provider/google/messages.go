package google

import (
	"encoding/json"

	"google.golang.org/genai"

	ai "github.com/spetersoncode/flowgate"
)

// convertMessages splits a conversation into Gemini contents and a system
// instruction. Consecutive tool results are grouped into one user turn.
func convertMessages(messages []ai.Message) ([]*genai.Content, *genai.Content) {
	var contents []*genai.Content
	var system *genai.Content

	// Function responses are matched by name, so remember which call ID
	// belongs to which function.
	names := make(map[string]string)

	for i := 0; i < len(messages); i++ {
		msg := messages[i]
		switch msg.Role {
		case ai.RoleSystem:
			if msg.Content == "" {
				continue
			}
			if system == nil {
				system = &genai.Content{}
			}
			system.Parts = append(system.Parts, &genai.Part{Text: msg.Content})

		case ai.RoleAssistant:
			var parts []*genai.Part
			if msg.Content != "" {
				parts = append(parts, &genai.Part{Text: msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				names[tc.ID] = tc.Name
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{
						ID:   tc.ID,
						Name: tc.Name,
						Args: decodeObject(tc.Arguments, "args"),
					},
				})
			}
			if len(parts) > 0 {
				contents = append(contents, &genai.Content{Role: "model", Parts: parts})
			}

		case ai.RoleTool:
			var parts []*genai.Part
			for ; i < len(messages) && messages[i].Role == ai.RoleTool; i++ {
				tr := messages[i]
				parts = append(parts, &genai.Part{
					FunctionResponse: &genai.FunctionResponse{
						ID:       tr.ToolCallID,
						Name:     names[tr.ToolCallID],
						Response: decodeObject(tr.Content, "result"),
					},
				})
			}
			i--
			contents = append(contents, &genai.Content{Role: "user", Parts: parts})

		default:
			if msg.Content != "" {
				contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{{Text: msg.Content}}})
			}
		}
	}

	return contents, system
}

// decodeObject parses s as a JSON object. Anything else is wrapped under
// key so Gemini still receives an object.
func decodeObject(s, key string) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err == nil && obj != nil {
		return obj
	}
	var value any
	if err := json.Unmarshal([]byte(s), &value); err == nil {
		return map[string]any{key: value}
	}
	return map[string]any{key: s}
}
