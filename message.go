package flowgate

import "github.com/google/uuid"

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Message represents a single message in a conversation.
// The order of messages in a conversation is the prompt history.
type Message struct {
	// ID is an optional unique identifier for the message.
	ID      string `json:"id,omitempty"`
	Role    Role   `json:"role"`
	Content string `json:"content,omitempty"`
	// ToolCalls contains tool invocation requests from an assistant message.
	// Only populated when Role is RoleAssistant and the model wants to use tools.
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`
	// ToolCallID links a tool message to the ToolCall it answers.
	// Only populated when Role is RoleTool.
	ToolCallID string `json:"toolCallId,omitempty"`
}

// GenerateMessageID creates a unique message identifier.
func GenerateMessageID() string {
	return "msg-" + uuid.New().String()
}

// SystemMessage creates a system instruction message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage creates an assistant message with optional tool calls.
func AssistantMessage(content string, calls ...ToolCall) Message {
	return Message{Role: RoleAssistant, Content: content, ToolCalls: calls}
}

// HasToolCalls reports whether the message requests tool execution.
func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// FinishReason marks why the provider stopped generating.
type FinishReason string

const (
	// FinishStop indicates a final answer.
	FinishStop FinishReason = "stop"
	// FinishToolCalls indicates the model is waiting on tool results.
	FinishToolCalls FinishReason = "tool_calls"
	// FinishLength indicates the output was truncated by the token limit.
	FinishLength FinishReason = "length"
	// FinishRejected indicates the provider declined on policy or safety grounds.
	FinishRejected FinishReason = "rejected"
)

// Response represents a complete response from a chat provider.
type Response struct {
	Content      string       `json:"content,omitempty"`
	FinishReason FinishReason `json:"finishReason,omitempty"`
	Usage        Usage        `json:"usage"`
	// ToolCalls contains any tool invocation requests from the model.
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`
	// Refusal carries the provider's explanation when it declined to answer.
	Refusal string `json:"refusal,omitempty"`
}

// Usage contains token usage information for a request.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// Add returns the sum of two usage records.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		InputTokens:  u.InputTokens + other.InputTokens,
		OutputTokens: u.OutputTokens + other.OutputTokens,
	}
}
