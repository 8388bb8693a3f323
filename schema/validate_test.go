package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventSchema() *Schema {
	return MustDefine("event_details", "Structured event details", Object().
		StrictMode().
		Field("name", String().Desc("Event name").MinLength(1).Required()).
		Field("date", String().Required()).
		Field("duration_minutes", Int().Min(1).Required()).
		Field("participants", Array(String()).Required()).
		Field("calendar_link", String().Nullable().Required()))
}

func violationPaths(t *testing.T, err error) []string {
	t.Helper()
	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	paths := make([]string, len(errs))
	for i, e := range errs {
		paths[i] = e.Path
	}
	return paths
}

func TestValidate(t *testing.T) {
	s := eventSchema()

	tests := []struct {
		name      string
		payload   string
		wantPaths []string
	}{
		{
			name:    "valid",
			payload: `{"name":"Standup","date":"2025-01-02T14:00:00","duration_minutes":30,"participants":["Alice","Bob"],"calendar_link":null}`,
		},
		{
			name:      "missing required",
			payload:   `{"name":"Standup","duration_minutes":30,"participants":[],"calendar_link":null}`,
			wantPaths: []string{"$.date"},
		},
		{
			name:      "wrong type",
			payload:   `{"name":"Standup","date":"x","duration_minutes":"thirty","participants":[],"calendar_link":null}`,
			wantPaths: []string{"$.duration_minutes"},
		},
		{
			name:      "fractional integer",
			payload:   `{"name":"Standup","date":"x","duration_minutes":1.5,"participants":[],"calendar_link":null}`,
			wantPaths: []string{"$.duration_minutes"},
		},
		{
			name:    "integral float accepted",
			payload: `{"name":"Standup","date":"x","duration_minutes":30.0,"participants":[],"calendar_link":null}`,
		},
		{
			name:      "list elements validated",
			payload:   `{"name":"Standup","date":"x","duration_minutes":30,"participants":["Alice",7,"Bob",false],"calendar_link":null}`,
			wantPaths: []string{"$.participants[1]", "$.participants[3]"},
		},
		{
			name:      "unknown field rejected when closed",
			payload:   `{"name":"Standup","date":"x","duration_minutes":30,"participants":[],"calendar_link":null,"zoom":"y","agenda":"z"}`,
			wantPaths: []string{"$.agenda", "$.zoom"},
		},
		{
			name:      "fraction beyond float precision",
			payload:   `{"name":"Standup","date":"x","duration_minutes":9007199254740993.5,"participants":[],"calendar_link":null}`,
			wantPaths: []string{"$.duration_minutes"},
		},
		{
			name:    "integer beyond float precision",
			payload: `{"name":"Standup","date":"x","duration_minutes":9007199254740993,"participants":[],"calendar_link":null}`,
		},
		{
			name:      "null for non-nullable",
			payload:   `{"name":null,"date":"x","duration_minutes":30,"participants":[],"calendar_link":null}`,
			wantPaths: []string{"$.name"},
		},
		{
			name:      "constraint violations",
			payload:   `{"name":"","date":"x","duration_minutes":0,"participants":[],"calendar_link":null}`,
			wantPaths: []string{"$.duration_minutes", "$.name"},
		},
		{
			name:      "not an object",
			payload:   `["Standup"]`,
			wantPaths: []string{"$"},
		},
		{
			name:      "invalid JSON",
			payload:   `{"name":`,
			wantPaths: []string{"$"},
		},
		{
			name:      "trailing data",
			payload:   `{} {}`,
			wantPaths: []string{"$"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Validate([]byte(tt.payload))
			if tt.wantPaths == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantPaths, violationPaths(t, err))
		})
	}
}

func TestValidateOpenObjectAllowsUnknownFields(t *testing.T) {
	s := MustDefine("open", "", Object().Field("a", String().Required()))

	assert.NoError(t, s.Validate([]byte(`{"a":"x","b":1}`)))
	assert.False(t, s.Closed())
}

func TestValidateNestedObject(t *testing.T) {
	s := MustDefine("nested", "", Object().
		Field("owner", Object().
			StrictMode().
			Field("name", String().Required()).
			Field("tags", Array(Object().
				Field("key", String().Required())).
				UniqueItems()).
			Required()))

	err := s.Validate([]byte(`{"owner":{"tags":[{"key":"a"},{"key":"a"},{}],"extra":1}}`))

	assert.Equal(t, []string{
		"$.owner.extra",
		"$.owner.name",
		"$.owner.tags",
		"$.owner.tags[2].key",
	}, violationPaths(t, err))
}

func TestValidateEnumsAndBounds(t *testing.T) {
	s := MustDefine("enums", "", Object().
		Field("unit", String().Enum("celsius", "fahrenheit")).
		Field("level", Int().Enum(1, 2, 3)).
		Field("ratio", Number().ExclusiveMin(0).ExclusiveMax(1)).
		Field("code", String().Pattern(`^[A-Z]{3}$`)))

	assert.NoError(t, s.Validate([]byte(`{"unit":"celsius","level":2,"ratio":0.5,"code":"ABC"}`)))

	err := s.Validate([]byte(`{"unit":"kelvin","level":4,"ratio":1,"code":"abcd"}`))
	assert.Equal(t, []string{"$.code", "$.level", "$.ratio", "$.unit"}, violationPaths(t, err))
}

func TestValidationErrorsMessage(t *testing.T) {
	err := eventSchema().Validate([]byte(`{"name":"Standup"}`))
	require.Error(t, err)

	assert.Contains(t, err.Error(), "$.date: required field is missing")
	assert.Contains(t, err.Error(), "; ")
}

func TestValidateOrdersIndexesNumerically(t *testing.T) {
	s := MustDefine("many", "", Object().Field("xs", Array(Int())))

	err := s.Validate([]byte(`{"xs":[1,2,"a",4,5,6,7,8,9,10,"b"]}`))
	assert.Equal(t, []string{"$.xs[2]", "$.xs[10]"}, violationPaths(t, err))
}

func TestDefineCompilesOnce(t *testing.T) {
	s := eventSchema()
	require.NotNil(t, s.compiled)

	payload := []byte(`{"name":"Standup","date":"x","duration_minutes":30,"participants":[],"calendar_link":null}`)
	for range 3 {
		assert.NoError(t, s.Validate(payload))
	}
}
