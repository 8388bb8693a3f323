package calendar

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/spetersoncode/flowgate"
	"github.com/spetersoncode/flowgate/client"
	"github.com/spetersoncode/flowgate/tool"
)

func TestValidateTool(t *testing.T) {
	p := &stubProvider{replies: map[string]*ai.Response{
		promptCalendar: reply(`{"is_calendar_request":true,"confidence_score":0.92}`),
		promptSecurity: reply(`{"is_safe":true,"risk_flags":[]}`),
	}}
	registry := tool.NewRegistry().Add(NewValidateTool(NewValidator(client.NewWithProvider(p))))

	res, err := registry.Execute(context.Background(), ai.ToolCall{
		ID:        "call_1",
		Name:      ValidateToolName,
		Arguments: `{"request":"Schedule a team meeting tomorrow at 2pm"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, "call_1", res.ToolCallID)

	var got Validation
	require.NoError(t, json.Unmarshal([]byte(res.Content), &got))
	assert.True(t, got.Valid)
	assert.Equal(t, 0.92, got.Calendar.ConfidenceScore)
	assert.Equal(t, []string{"Schedule a team meeting tomorrow at 2pm"}, p.users[:1])
}

func TestProcessTool(t *testing.T) {
	p := &stubProvider{replies: map[string]*ai.Response{
		promptExtract: reply(`{"description":"Lunch","is_calendar_event":false,"confidence_score":0.2}`),
	}}
	registry := tool.NewRegistry().Add(NewProcessTool(NewProcessor(client.NewWithProvider(p))))

	res, err := registry.Execute(context.Background(), ai.ToolCall{
		ID:        "call_2",
		Name:      ProcessToolName,
		Arguments: `{"request":"What did we have for lunch?"}`,
	})
	require.NoError(t, err)

	var got Result
	require.NoError(t, json.Unmarshal([]byte(res.Content), &got))
	assert.Equal(t, StatusNotCalendarEvent, got.Status)
	assert.Equal(t, NotCalendarEventMessage, got.Message)
}

func TestToolRejectsBadArguments(t *testing.T) {
	registry := tool.NewRegistry().Add(NewValidateTool(NewValidator(client.NewWithProvider(&stubProvider{}))))

	_, err := registry.Execute(context.Background(), ai.ToolCall{Name: ValidateToolName, Arguments: `not json`})
	var execErr *tool.ErrToolExecution
	assert.ErrorAs(t, err, &execErr)
}
