package workflow

import (
	"context"
	"strings"
	"sync"

	ai "github.com/spetersoncode/flowgate"
	"github.com/spetersoncode/flowgate/client"
)

// replyFunc answers one completion call.
type replyFunc func(call int, msgs []ai.Message, opts *ai.Options) (*ai.Response, error)

// mockProvider answers calls with a reply function and records them.
type mockProvider struct {
	mu    sync.Mutex
	reply replyFunc
	calls [][]ai.Message
}

func (m *mockProvider) Chat(ctx context.Context, msgs []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	m.mu.Lock()
	call := len(m.calls)
	m.calls = append(m.calls, append([]ai.Message(nil), msgs...))
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.reply(call, msgs, ai.ApplyOptions(opts...))
}

func (m *mockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockProvider) call(i int) []ai.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[i]
}

// scripted replays responses in order.
func scripted(responses ...*ai.Response) *mockProvider {
	return &mockProvider{reply: func(call int, _ []ai.Message, _ *ai.Options) (*ai.Response, error) {
		if call < len(responses) {
			return responses[call], nil
		}
		return &ai.Response{Content: "no more responses", FinishReason: ai.FinishStop}, nil
	}}
}

func newClient(p ai.ChatProvider) *client.Client {
	return client.NewWithProvider(p)
}

func text(content string) *ai.Response {
	return &ai.Response{Content: content, FinishReason: ai.FinishStop, Usage: ai.Usage{InputTokens: 10, OutputTokens: 5}}
}

func toolCalls(calls ...ai.ToolCall) *ai.Response {
	return &ai.Response{ToolCalls: calls, FinishReason: ai.FinishToolCalls, Usage: ai.Usage{InputTokens: 10, OutputTokens: 5}}
}

func refusal(reason string) *ai.Response {
	return &ai.Response{FinishReason: ai.FinishRejected, Refusal: reason}
}

func systemPrompt(msgs []ai.Message) string {
	for _, m := range msgs {
		if m.Role == ai.RoleSystem {
			return m.Content
		}
	}
	return ""
}

func userPrompt(system string) PromptFunc[string] {
	return func(in string) []ai.Message {
		return []ai.Message{ai.SystemMessage(system), ai.UserMessage(in)}
	}
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
