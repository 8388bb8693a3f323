package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/spetersoncode/flowgate"
	"github.com/spetersoncode/flowgate/event"
	"github.com/spetersoncode/flowgate/schema"
	"github.com/spetersoncode/flowgate/tool"
)

type answer struct {
	Answer string `json:"answer"`
	Source string `json:"source"`
}

func answerSchema() *schema.Schema {
	return schema.MustDefine("kb_response", "Answer with source",
		schema.Object().
			Field("answer", schema.String().Required()).
			Field("source", schema.String().Required()).
			StrictMode())
}

func lookupRegistry(calls *atomic.Int32) *tool.Registry {
	return tool.NewRegistry().Add(
		tool.WithHandler("lookup", "Look up a fact", json.RawMessage(`{"type":"object"}`),
			func(_ context.Context, call ai.ToolCall) (any, error) {
				calls.Add(1)
				return map[string]string{"fact": "returns within 30 days", "call": call.ID}, nil
			}),
	)
}

func TestPromptStepText(t *testing.T) {
	p := scripted(text("Hello there"))
	step := NewPromptStep[string, string]("greet", newClient(p), userPrompt("Be nice."))

	out, err := step.Run(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello there", out)
	assert.Equal(t, "greet", step.Name())
}

func TestPromptStepStructured(t *testing.T) {
	p := scripted(text(`{"answer":"30 days","source":"policy"}`))
	step := NewPromptStep[string, answer]("kb", newClient(p), userPrompt("Answer."),
		WithSchema(answerSchema()))

	run := NewRun()
	out, err := step.Run(WithRun(context.Background(), run), "returns?")
	require.NoError(t, err)
	assert.Equal(t, answer{Answer: "30 days", Source: "policy"}, out)

	stepName, payload, ok := run.LastResult()
	require.True(t, ok)
	assert.Equal(t, "kb", stepName)
	assert.JSONEq(t, `{"answer":"30 days","source":"policy"}`, string(payload))
}

func TestPromptStepSchemaViolation(t *testing.T) {
	p := scripted(text(`{"answer":"30 days"}`))
	step := NewPromptStep[string, answer]("kb", newClient(p), userPrompt("Answer."),
		WithSchema(answerSchema()))

	_, err := step.Run(context.Background(), "returns?")

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "kb", stepErr.StepName)
	var schemaErr *ai.SchemaValidationError
	assert.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, 1, p.callCount())
}

func TestPromptStepToolRoundTripPreservesCallID(t *testing.T) {
	var executed atomic.Int32
	p := scripted(
		toolCalls(ai.ToolCall{ID: "call_42", Name: "lookup", Arguments: `{"q":"returns"}`}),
		text(`{"answer":"30 days","source":"policy"}`),
	)
	step := NewPromptStep[string, answer]("kb", newClient(p), userPrompt("Answer."),
		WithSchema(answerSchema()), WithTools(lookupRegistry(&executed)))

	out, err := step.Run(context.Background(), "returns?")
	require.NoError(t, err)
	assert.Equal(t, "30 days", out.Answer)
	assert.EqualValues(t, 1, executed.Load())
	require.Equal(t, 2, p.callCount())

	second := p.call(1)
	require.Len(t, second, 4)
	assert.Equal(t, ai.RoleAssistant, second[2].Role)
	require.Len(t, second[2].ToolCalls, 1)
	assert.Equal(t, "call_42", second[2].ToolCalls[0].ID)
	assert.Equal(t, ai.RoleTool, second[3].Role)
	assert.Equal(t, "call_42", second[3].ToolCallID)
	assert.JSONEq(t, `{"fact":"returns within 30 days","call":"call_42"}`, second[3].Content)
}

func TestPromptStepEveryCallAnswered(t *testing.T) {
	var executed atomic.Int32
	p := scripted(
		toolCalls(
			ai.ToolCall{ID: "a", Name: "lookup", Arguments: `{}`},
			ai.ToolCall{ID: "b", Name: "lookup", Arguments: `{}`},
			ai.ToolCall{ID: "c", Name: "lookup", Arguments: `{}`},
		),
		text("done"),
	)
	step := NewPromptStep[string, string]("multi", newClient(p), userPrompt("Go."),
		WithTools(lookupRegistry(&executed)))

	_, err := step.Run(context.Background(), "x")
	require.NoError(t, err)
	assert.EqualValues(t, 3, executed.Load())

	second := p.call(1)
	var ids []string
	for _, m := range second {
		if m.Role == ai.RoleTool {
			ids = append(ids, m.ToolCallID)
		}
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestPromptStepUnknownTool(t *testing.T) {
	var executed atomic.Int32
	p := scripted(toolCalls(ai.ToolCall{ID: "call_1", Name: "delete_everything", Arguments: `{}`}))
	step := NewPromptStep[string, string]("kb", newClient(p), userPrompt("Go."),
		WithTools(lookupRegistry(&executed)))

	_, err := step.Run(context.Background(), "x")

	var notFound *tool.ErrToolNotFound
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "delete_everything", notFound.Name)
	assert.Equal(t, 1, p.callCount())
	assert.Zero(t, executed.Load())
}

func TestPromptStepToolFailureHalts(t *testing.T) {
	registry := tool.NewRegistry().Add(
		tool.WithHandler("broken", "Always fails", json.RawMessage(`{"type":"object"}`),
			func(context.Context, ai.ToolCall) (any, error) { return nil, errors.New("upstream down") }),
	)
	p := scripted(toolCalls(ai.ToolCall{ID: "call_1", Name: "broken", Arguments: `{}`}), text("unreachable"))
	step := NewPromptStep[string, string]("kb", newClient(p), userPrompt("Go."), WithTools(registry))

	_, err := step.Run(context.Background(), "x")

	var execErr *tool.ErrToolExecution
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "call_1", execErr.CallID)
	assert.Equal(t, 1, p.callCount())
}

func TestPromptStepToolLoopExceeded(t *testing.T) {
	var executed atomic.Int32
	p := &mockProvider{reply: func(call int, _ []ai.Message, _ *ai.Options) (*ai.Response, error) {
		return toolCalls(ai.ToolCall{ID: "loop", Name: "lookup", Arguments: `{}`}), nil
	}}
	step := NewPromptStep[string, string]("loopy", newClient(p), userPrompt("Go."),
		WithTools(lookupRegistry(&executed)), WithMaxIterations(3))

	_, err := step.Run(context.Background(), "x")

	var exceeded *ToolLoopExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.Equal(t, 3, exceeded.MaxIterations)
	assert.Equal(t, "loopy", exceeded.StepName)
	assert.Equal(t, 3, p.callCount())
	// Calls from the last allowed completion are never executed.
	assert.Equal(t, int32(2), executed.Load())
}

func TestPromptStepRejected(t *testing.T) {
	p := scripted(refusal("content policy"))
	step := NewPromptStep[string, string]("kb", newClient(p), userPrompt("Go."))

	_, err := step.Run(context.Background(), "x")

	require.Error(t, err)
	assert.True(t, ai.IsRejected(err))
	var stepErr *StepError
	assert.ErrorAs(t, err, &stepErr)
}

func TestPromptStepEmptyPrompt(t *testing.T) {
	p := scripted()
	step := NewPromptStep[string, string]("kb", newClient(p), func(string) []ai.Message { return nil })

	_, err := step.Run(context.Background(), "x")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
	assert.Zero(t, p.callCount())
}

func TestPromptStepTranscriptAppendOnly(t *testing.T) {
	var executed atomic.Int32
	p := scripted(
		toolCalls(ai.ToolCall{ID: "call_1", Name: "lookup", Arguments: `{}`}),
		text("final"),
	)
	step := NewPromptStep[string, string]("kb", newClient(p), userPrompt("Go."),
		WithTools(lookupRegistry(&executed)))

	run := NewRun()
	ctx := WithRun(context.Background(), run)

	_, err := step.Run(ctx, "first")
	require.NoError(t, err)
	before := run.Messages()
	require.Len(t, before, 5)

	p2 := scripted(text("second"))
	_, err = NewPromptStep[string, string]("again", newClient(p2), userPrompt("Go.")).Run(ctx, "second")
	require.NoError(t, err)

	after := run.Messages()
	require.Len(t, after, 8)
	assert.Equal(t, before, after[:len(before)])
	for _, m := range after {
		assert.NotEmpty(t, m.ID)
	}
}

func TestPromptStepEmitsToolEvents(t *testing.T) {
	var executed atomic.Int32
	p := scripted(
		toolCalls(ai.ToolCall{ID: "call_1", Name: "lookup", Arguments: `{}`}),
		text("final"),
	)
	step := NewPromptStep[string, string]("kb", newClient(p), userPrompt("Go."),
		WithTools(lookupRegistry(&executed)))

	events := event.NewChannel()
	run := NewRun(WithEvents(events))
	_, err := step.Run(WithRun(context.Background(), run), "x")
	require.NoError(t, err)
	close(events)

	var types []event.Type
	for e := range events {
		assert.Equal(t, run.ID(), e.RunID)
		types = append(types, e.Type)
	}
	assert.Equal(t, []event.Type{event.ToolCallStart, event.ToolCallResult}, types)
}

func TestPromptStepUsageAccumulates(t *testing.T) {
	var executed atomic.Int32
	p := scripted(
		toolCalls(ai.ToolCall{ID: "call_1", Name: "lookup", Arguments: `{}`}),
		text("final"),
	)
	step := NewPromptStep[string, string]("kb", newClient(p), userPrompt("Go."),
		WithTools(lookupRegistry(&executed)))

	run := NewRun()
	_, err := step.Run(WithRun(context.Background(), run), "x")
	require.NoError(t, err)
	assert.Equal(t, ai.Usage{InputTokens: 20, OutputTokens: 10}, run.Usage())
}
