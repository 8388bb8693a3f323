package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/spetersoncode/flowgate"
	"github.com/spetersoncode/flowgate/retry"
	"github.com/spetersoncode/flowgate/schema"
)

// mockProvider replays queued responses and records each call.
type mockProvider struct {
	mu        sync.Mutex
	responses []*ai.Response
	errs      []error
	calls     int
	lastMsgs  []ai.Message
	lastOpts  *ai.Options
}

func (m *mockProvider) Chat(_ context.Context, msgs []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.calls
	m.calls++
	m.lastMsgs = msgs
	m.lastOpts = ai.ApplyOptions(opts...)

	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if i < len(m.responses) {
		return m.responses[i], nil
	}
	return &ai.Response{Content: "default", FinishReason: ai.FinishStop}, nil
}

func (m *mockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func extractionSchema() *schema.Schema {
	return schema.MustDefine("event_extraction", "Calendar event classification",
		schema.Object().
			Field("description", schema.String().Required()).
			Field("is_calendar_event", schema.Bool().Required()).
			Field("confidence_score", schema.Number().Min(0).Max(1).Required()).
			StrictMode())
}

func TestCompleteEmptyInput(t *testing.T) {
	p := &mockProvider{}
	c := NewWithProvider(p)

	_, err := c.Complete(context.Background(), nil)
	assert.ErrorIs(t, err, ai.ErrEmptyInput)
	assert.Zero(t, p.callCount())
}

func TestCompleteText(t *testing.T) {
	p := &mockProvider{responses: []*ai.Response{
		{Content: "Hello", FinishReason: ai.FinishStop, Usage: ai.Usage{InputTokens: 3, OutputTokens: 1}},
	}}
	c := NewWithProvider(p)

	comp, err := c.Complete(context.Background(), []ai.Message{ai.UserMessage("Hi")})
	require.NoError(t, err)
	assert.Equal(t, KindText, comp.Kind)
	assert.Equal(t, "Hello", comp.Text)
	assert.Equal(t, ai.Usage{InputTokens: 3, OutputTokens: 1}, comp.Usage)
	assert.Equal(t, ai.AssistantMessage("Hello"), comp.Message)
}

func TestCompleteToolCalls(t *testing.T) {
	calls := []ai.ToolCall{{ID: "call_1", Name: "get_weather", Arguments: `{}`}}
	p := &mockProvider{responses: []*ai.Response{
		{ToolCalls: calls, FinishReason: ai.FinishToolCalls},
	}}
	c := NewWithProvider(p)

	// Tool calls win over a requested schema: the turn is not finished.
	comp, err := c.Complete(context.Background(), []ai.Message{ai.UserMessage("Weather?")},
		ai.WithResponseSchema(extractionSchema().ResponseSchema()))
	require.NoError(t, err)
	assert.Equal(t, KindToolCalls, comp.Kind)
	assert.Equal(t, calls, comp.ToolCalls)
	assert.True(t, comp.Message.HasToolCalls())
	assert.Equal(t, "call_1", comp.Message.ToolCalls[0].ID)
}

func TestCompleteStructured(t *testing.T) {
	payload := `{"description":"Team meeting","is_calendar_event":true,"confidence_score":0.92}`
	p := &mockProvider{responses: []*ai.Response{{Content: payload, FinishReason: ai.FinishStop}}}
	c := NewWithProvider(p)

	s := extractionSchema()
	comp, err := c.Complete(context.Background(), []ai.Message{ai.UserMessage("x")},
		ai.WithResponseSchema(s.ResponseSchema()))
	require.NoError(t, err)
	assert.Equal(t, KindStructured, comp.Kind)
	assert.JSONEq(t, payload, string(comp.Payload))
	assert.Equal(t, "event_extraction", p.lastOpts.ResponseSchema.Name)
}

func TestCompleteSchemaViolation(t *testing.T) {
	p := &mockProvider{responses: []*ai.Response{
		{Content: `{"description":"x","is_calendar_event":"yes"}`, FinishReason: ai.FinishStop},
	}}
	c := NewWithProvider(p)

	_, err := c.Complete(context.Background(), []ai.Message{ai.UserMessage("x")},
		ai.WithResponseSchema(extractionSchema().ResponseSchema()))

	var schemaErr *ai.SchemaValidationError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "event_extraction", schemaErr.Schema)
	assert.False(t, retry.IsTransient(err))

	var violations schema.ValidationErrors
	require.ErrorAs(t, err, &violations)
	assert.Len(t, violations, 2)
}

func TestCompleteSchemaWithoutValidatorChecksJSON(t *testing.T) {
	p := &mockProvider{responses: []*ai.Response{{Content: "not json"}}}
	c := NewWithProvider(p)

	_, err := c.Complete(context.Background(), []ai.Message{ai.UserMessage("x")},
		ai.WithResponseSchema(&ai.ResponseSchema{Name: "loose", Schema: json.RawMessage(`{}`)}))
	var schemaErr *ai.SchemaValidationError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestCompleteRejected(t *testing.T) {
	t.Run("finish reason", func(t *testing.T) {
		p := &mockProvider{responses: []*ai.Response{{FinishReason: ai.FinishRejected, Refusal: "policy"}}}
		c := NewWithProvider(p)

		comp, err := c.Complete(context.Background(), []ai.Message{ai.UserMessage("x")})
		require.NoError(t, err)
		assert.True(t, comp.Rejected())
		assert.Equal(t, "policy", comp.Rejection.Msg)
		assert.Equal(t, ai.ErrorRejected, comp.Rejection.Category())
	})

	t.Run("provider error", func(t *testing.T) {
		p := &mockProvider{errs: []error{ai.NewRejectedError("content_filter", 400, nil)}}
		c := NewWithProvider(p, WithRetry(retry.DefaultConfig()))

		comp, err := c.Complete(context.Background(), []ai.Message{ai.UserMessage("x")})
		require.NoError(t, err)
		assert.Equal(t, KindRejected, comp.Kind)
		assert.Equal(t, 400, comp.Rejection.StatusCode())
		assert.Equal(t, 1, p.callCount(), "rejections are never retried")
	})
}

func TestCompleteTransportErrorNotRetriedByDefault(t *testing.T) {
	p := &mockProvider{errs: []error{ai.NewTransientError("503", 503, nil)}}
	c := NewWithProvider(p)

	_, err := c.Complete(context.Background(), []ai.Message{ai.UserMessage("x")})
	assert.True(t, ai.IsTransient(err))
	assert.Equal(t, 1, p.callCount())
}

func TestCompleteWithRetry(t *testing.T) {
	p := &mockProvider{
		errs:      []error{ai.NewTransientError("503", 503, nil), ai.NewTransientError("503", 503, nil)},
		responses: []*ai.Response{nil, nil, {Content: "ok", FinishReason: ai.FinishStop}},
	}
	events := make(chan Event, 32)
	cfg := retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
	c := NewWithProvider(p, WithRetry(cfg), WithEvents(events))

	comp, err := c.Complete(context.Background(), []ai.Message{ai.UserMessage("x")})
	require.NoError(t, err)
	assert.Equal(t, "ok", comp.Text)
	assert.Equal(t, 3, p.callCount())

	close(events)
	var types []EventType
	for e := range events {
		types = append(types, e.Type)
	}
	assert.Equal(t, EventRequestStart, types[0])
	assert.Equal(t, EventRequestComplete, types[len(types)-1])
	assert.Contains(t, types, EventRetry)
}

func TestCompleteDefaultOptions(t *testing.T) {
	p := &mockProvider{}
	c := NewWithProvider(p, WithDefaultOptions(ai.WithModel("base"), ai.WithTemperature(0)))

	_, err := c.Complete(context.Background(), []ai.Message{ai.UserMessage("x")}, ai.WithModel("override"))
	require.NoError(t, err)
	assert.Equal(t, "override", p.lastOpts.Model)
	require.NotNil(t, p.lastOpts.Temperature)
	assert.Equal(t, 0.0, *p.lastOpts.Temperature)
}

func TestCompleteAs(t *testing.T) {
	type extraction struct {
		Description     string  `json:"description"`
		IsCalendarEvent bool    `json:"is_calendar_event"`
		ConfidenceScore float64 `json:"confidence_score"`
	}

	t.Run("decodes", func(t *testing.T) {
		p := &mockProvider{responses: []*ai.Response{
			{Content: `{"description":"Lunch","is_calendar_event":true,"confidence_score":0.8}`},
		}}
		out, comp, err := CompleteAs[extraction](context.Background(), NewWithProvider(p), extractionSchema(),
			[]ai.Message{ai.UserMessage("x")})
		require.NoError(t, err)
		assert.Equal(t, KindStructured, comp.Kind)
		assert.Equal(t, extraction{"Lunch", true, 0.8}, out)
	})

	t.Run("rejected", func(t *testing.T) {
		p := &mockProvider{responses: []*ai.Response{{FinishReason: ai.FinishRejected}}}
		_, comp, err := CompleteAs[extraction](context.Background(), NewWithProvider(p), extractionSchema(),
			[]ai.Message{ai.UserMessage("x")})
		var kindErr *ErrUnexpectedKind
		require.ErrorAs(t, err, &kindErr)
		assert.Equal(t, KindRejected, kindErr.Got)
		assert.True(t, comp.Rejected())
	})

	t.Run("transport error", func(t *testing.T) {
		p := &mockProvider{errs: []error{errors.New("connection reset")}}
		_, comp, err := CompleteAs[extraction](context.Background(), NewWithProvider(p), extractionSchema(),
			[]ai.Message{ai.UserMessage("x")})
		assert.Error(t, err)
		assert.Nil(t, comp)
	})
}

func TestNewProviderValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		cfg  Config
	}{
		{"azure without key", Config{Provider: ai.ProviderAzure, Endpoint: "https://x.openai.azure.com", Model: "d"}},
		{"azure without endpoint", Config{Provider: ai.ProviderAzure, APIKey: "k", Model: "d"}},
		{"azure without deployment", Config{Provider: ai.ProviderAzure, APIKey: "k", Endpoint: "https://x"}},
		{"openai without key", Config{Provider: ai.ProviderOpenAI}},
		{"anthropic without key", Config{Provider: ai.ProviderAnthropic}},
		{"google without key", Config{Provider: ai.ProviderGoogle}},
		{"vertex without project", Config{Provider: ai.ProviderVertex, VertexLocation: "us-central1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(ctx, tt.cfg)
			var credErr *ErrMissingCredentials
			assert.ErrorAs(t, err, &credErr)
		})
	}

	_, err := New(ctx, Config{Provider: "bedrock"})
	var unsupported *ErrUnsupportedProvider
	assert.ErrorAs(t, err, &unsupported)
}

func TestNewBuildsProviders(t *testing.T) {
	ctx := context.Background()

	c, err := New(ctx, Config{Provider: ai.ProviderAzure, APIKey: "k", Endpoint: "https://x.openai.azure.com", APIVersion: "2024-10-21", Model: "deploy"})
	require.NoError(t, err)
	assert.NotNil(t, c.Provider())

	c, err = New(ctx, Config{Provider: ai.ProviderAnthropic, APIKey: "k"})
	require.NoError(t, err)
	assert.NotNil(t, c.Provider())

	c, err = New(ctx, Config{Provider: ai.ProviderGoogle, APIKey: "k"})
	require.NoError(t, err)
	assert.NotNil(t, c.Provider())
}
