package augment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/spetersoncode/flowgate"
	"github.com/spetersoncode/flowgate/client"
	"github.com/spetersoncode/flowgate/tool"
)

// scriptedProvider replays responses and records each conversation.
type scriptedProvider struct {
	mu        sync.Mutex
	responses []*ai.Response
	calls     [][]ai.Message
	opts      []*ai.Options
}

func (s *scriptedProvider) Chat(_ context.Context, msgs []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := len(s.calls)
	s.calls = append(s.calls, append([]ai.Message(nil), msgs...))
	s.opts = append(s.opts, ai.ApplyOptions(opts...))
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return &ai.Response{Content: "out of responses", FinishReason: ai.FinishStop}, nil
}

func stop(content string) *ai.Response {
	return &ai.Response{Content: content, FinishReason: ai.FinishStop}
}

func callTool(id, name, args string) *ai.Response {
	return &ai.Response{
		ToolCalls:    []ai.ToolCall{{ID: id, Name: name, Arguments: args}},
		FinishReason: ai.FinishToolCalls,
	}
}

func TestAsk(t *testing.T) {
	p := &scriptedProvider{responses: []*ai.Response{stop("There once was a gopher...")}}
	a := New(client.NewWithProvider(p))

	out, err := a.Ask(context.Background(), "Write a limerick about Go.")
	require.NoError(t, err)
	assert.Equal(t, "There once was a gopher...", out)

	require.Len(t, p.calls, 1)
	assert.Equal(t, ai.SystemMessage(HelpfulPrompt), p.calls[0][0])
	assert.Nil(t, p.opts[0].ResponseSchema)
	assert.Empty(t, p.opts[0].Tools)
}

func TestExtractEvent(t *testing.T) {
	p := &scriptedProvider{responses: []*ai.Response{
		stop(`{"name":"Office days","date":"Tuesday, Thursday","participants":["Deril"]}`),
	}}
	a := New(client.NewWithProvider(p))

	event, err := a.ExtractEvent(context.Background(),
		"Deril generally goes to office on Tuesday and Thursday and work from home on other days")
	require.NoError(t, err)
	assert.Equal(t, CalendarEvent{Name: "Office days", Date: "Tuesday, Thursday", Participants: []string{"Deril"}}, event)

	require.NotNil(t, p.opts[0].ResponseSchema)
	assert.Equal(t, "calendar_event", p.opts[0].ResponseSchema.Name)
	assert.True(t, p.opts[0].ResponseSchema.Strict)
}

func TestExtractEventSchemaViolation(t *testing.T) {
	p := &scriptedProvider{responses: []*ai.Response{stop(`{"name":"Office days"}`)}}
	a := New(client.NewWithProvider(p))

	_, err := a.ExtractEvent(context.Background(), "text")
	var schemaErr *ai.SchemaValidationError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "calendar_event", schemaErr.Schema)
}

func TestWeather(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "48.8566", r.URL.Query().Get("latitude"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"current":{"temperature_2m":7.3,"wind_speed_10m":12.1},"hourly":{}}`))
	}))
	defer srv.Close()

	p := &scriptedProvider{responses: []*ai.Response{
		callTool("call_paris", tool.WeatherToolName, `{"latitude":48.8566,"longitude":2.3522}`),
		stop(`{"temperature":7.3,"response":"It's 7.3°C in Paris."}`),
	}}
	a := New(client.NewWithProvider(p), WithWeatherOptions(tool.WithBaseURL(srv.URL)))

	out, err := a.Weather(context.Background(), "What's the weather like in Paris today?")
	require.NoError(t, err)
	assert.Equal(t, 7.3, out.Temperature)

	require.Len(t, p.calls, 2)
	require.Len(t, p.opts[0].Tools, 1)
	assert.Equal(t, tool.WeatherToolName, p.opts[0].Tools[0].Name)
	assert.True(t, p.opts[0].Tools[0].Strict)

	toolMsg := p.calls[1][3]
	assert.Equal(t, ai.RoleTool, toolMsg.Role)
	assert.Equal(t, "call_paris", toolMsg.ToolCallID)
	assert.JSONEq(t, `{"temperature_2m":7.3,"wind_speed_10m":12.1}`, toolMsg.Content)
}

func TestWeatherToolFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := &scriptedProvider{responses: []*ai.Response{
		callTool("call_1", tool.WeatherToolName, `{"latitude":1,"longitude":2}`),
	}}
	a := New(client.NewWithProvider(p), WithWeatherOptions(tool.WithBaseURL(srv.URL)))

	_, err := a.Weather(context.Background(), "weather?")
	var execErr *tool.ErrToolExecution
	require.ErrorAs(t, err, &execErr)
	assert.Len(t, p.calls, 1)
}

func TestAskKnowledgeBase(t *testing.T) {
	p := &scriptedProvider{responses: []*ai.Response{
		callTool("call_kb", tool.KnowledgeBaseToolName, `{"question":"What is the return policy?"}`),
		stop(`{"answer":"Thirty days, receipt in hand!","source":1}`),
	}}
	a := New(client.NewWithProvider(p))

	out, err := a.AskKnowledgeBase(context.Background(), "What is the return policy?")
	require.NoError(t, err)
	assert.Equal(t, KBResponse{Answer: "Thirty days, receipt in hand!", Source: 1}, out)

	toolMsg := p.calls[1][3]
	assert.Equal(t, "call_kb", toolMsg.ToolCallID)
	assert.Contains(t, toolMsg.Content, "within 30 days of purchase")
	assert.Contains(t, toolMsg.Content, "ship to over 50 countries")
	assert.Contains(t, toolMsg.Content, "Apple Pay")
}

func TestAskKnowledgeBaseCustomCorpus(t *testing.T) {
	kb := &tool.KnowledgeBase{Records: []tool.Record{{ID: 9, Question: "Hours?", Answer: "9 to 5"}}}
	p := &scriptedProvider{responses: []*ai.Response{
		callTool("call_kb", tool.KnowledgeBaseToolName, `{"question":"Hours?"}`),
		stop(`{"answer":"9 to 5","source":9}`),
	}}
	a := New(client.NewWithProvider(p), WithKnowledgeBase(kb))

	out, err := a.AskKnowledgeBase(context.Background(), "Hours?")
	require.NoError(t, err)
	assert.Equal(t, 9, out.Source)
	assert.JSONEq(t, `{"records":[{"id":9,"question":"Hours?","answer":"9 to 5"}]}`, p.calls[1][3].Content)
}

func TestToolLoopBound(t *testing.T) {
	p := &scriptedProvider{responses: []*ai.Response{
		callTool("a", tool.KnowledgeBaseToolName, `{"question":"q"}`),
		callTool("b", tool.KnowledgeBaseToolName, `{"question":"q"}`),
		callTool("c", tool.KnowledgeBaseToolName, `{"question":"q"}`),
	}}
	a := New(client.NewWithProvider(p), WithMaxToolIterations(2))

	_, err := a.AskKnowledgeBase(context.Background(), "q")
	require.Error(t, err)
	assert.Len(t, p.calls, 2)
}

func TestTools(t *testing.T) {
	a := New(client.NewWithProvider(&scriptedProvider{}))

	assert.Equal(t, []string{tool.WeatherToolName, tool.KnowledgeBaseToolName}, a.Tools().Names())
	assert.Equal(t, []string{tool.KnowledgeBaseToolName}, a.Tools(tool.KnowledgeBaseToolName).Names())
	assert.Zero(t, a.Tools("unknown").Len())
}
