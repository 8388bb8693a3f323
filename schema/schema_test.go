package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilders(t *testing.T) {
	tests := []struct {
		name    string
		builder Builder
		want    string
		wantErr error
	}{
		{
			name:    "basic string",
			builder: String(),
			want:    `{"type":"string"}`,
		},
		{
			name:    "string with constraints",
			builder: String().Desc("A name").MinLength(1).MaxLength(50).Pattern(`^[a-z]+$`),
			want:    `{"type":"string","description":"A name","minLength":1,"maxLength":50,"pattern":"^[a-z]+$"}`,
		},
		{
			name:    "string enum",
			builder: String().Enum("a", "b"),
			want:    `{"type":"string","enum":["a","b"]}`,
		},
		{
			name:    "nullable string",
			builder: String().Nullable(),
			want:    `{"type":["string","null"]}`,
		},
		{
			name:    "nullable enum includes null",
			builder: String().Enum("x").Nullable(),
			want:    `{"type":["string","null"],"enum":["x",null]}`,
		},
		{
			name:    "int bounds",
			builder: Integer().Min(1).Max(100).Default(7),
			want:    `{"type":"integer","default":7,"minimum":1,"maximum":100}`,
		},
		{
			name:    "number exclusive bounds",
			builder: Number().ExclusiveMin(0).ExclusiveMax(1),
			want:    `{"type":"number","exclusiveMinimum":0,"exclusiveMaximum":1}`,
		},
		{
			name:    "bool default",
			builder: Boolean().Default(true),
			want:    `{"type":"boolean","default":true}`,
		},
		{
			name:    "array of strings",
			builder: Array(String()).MinItems(1).MaxItems(3).UniqueItems(),
			want:    `{"type":"array","items":{"type":"string"},"minItems":1,"maxItems":3,"uniqueItems":true}`,
		},
		{
			name: "object keeps field order",
			builder: Object().
				Field("zeta", String().Required()).
				Field("alpha", Int()).
				Field("mid", Bool().Required()).
				StrictMode(),
			want: `{"type":"object","properties":{"zeta":{"type":"string"},"alpha":{"type":"integer"},"mid":{"type":"boolean"}},"required":["zeta","mid"],"additionalProperties":false}`,
		},
		{
			name:    "empty object",
			builder: Object(),
			want:    `{"type":"object","properties":{}}`,
		},
		{
			name:    "string min > max",
			builder: String().MinLength(10).MaxLength(1),
			wantErr: ErrInvalidRange,
		},
		{
			name:    "bad pattern",
			builder: String().Pattern("[unclosed"),
			wantErr: ErrInvalidPattern,
		},
		{
			name:    "int min > max",
			builder: Int().Min(100).Max(10),
			wantErr: ErrInvalidRange,
		},
		{
			name:    "number exclusive bounds inverted",
			builder: Number().ExclusiveMin(1).ExclusiveMax(1),
			wantErr: ErrInvalidRange,
		},
		{
			name:    "array without items",
			builder: Array(nil),
			wantErr: ErrNilItems,
		},
		{
			name:    "array with invalid items",
			builder: Array(Int().Min(5).Max(1)),
			wantErr: ErrInvalidRange,
		},
		{
			name:    "array items min > max",
			builder: Array(String()).MinItems(3).MaxItems(1),
			wantErr: ErrInvalidRange,
		},
		{
			name:    "invalid nested field",
			builder: Object().Field("n", Int().Min(2).Max(1)),
			wantErr: ErrInvalidRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.builder.Build()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				var defErr *DefinitionError
				assert.ErrorAs(t, err, &defErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
			assert.True(t, json.Valid(got))
		})
	}
}

func TestDefinitionErrorNamesField(t *testing.T) {
	_, err := Object().Field("count", Int().Min(10).Max(5)).Build()

	var defErr *DefinitionError
	require.ErrorAs(t, err, &defErr)
	assert.Equal(t, "count", defErr.Field)
	assert.Contains(t, err.Error(), `field "count"`)
}

func TestMustBuild(t *testing.T) {
	assert.NotPanics(t, func() { _ = String().MustBuild() })
	assert.Panics(t, func() { _ = String().MinLength(100).MaxLength(10).MustBuild() })
}

func TestFieldRejectsNonBuilder(t *testing.T) {
	assert.Panics(t, func() { Object().Field("bad", 42) })
}

func TestFieldRedefinitionKeepsPosition(t *testing.T) {
	got := Object().
		Field("a", String().Required()).
		Field("b", Int()).
		Field("a", Bool().Required()).
		MustBuild()

	assert.Equal(t,
		`{"type":"object","properties":{"a":{"type":"boolean"},"b":{"type":"integer"}},"required":["a"]}`,
		string(got))
}

func TestNestedSchema(t *testing.T) {
	got := Object().
		Desc("Weather forecast request").
		Field("location", String().Desc("City name").MinLength(1).Required()).
		Field("coordinates", Object().
			Field("lat", Number().Min(-90).Max(90).Required()).
			Field("lon", Number().Min(-180).Max(180).Required()).
			StrictMode()).
		Field("tags", Array(String()).MaxItems(5)).
		StrictMode().
		MustBuild()

	var result map[string]any
	require.NoError(t, json.Unmarshal(got, &result))

	assert.Equal(t, "object", result["type"])
	assert.Equal(t, false, result["additionalProperties"])
	assert.Equal(t, []any{"location"}, result["required"])

	props := result["properties"].(map[string]any)
	assert.Len(t, props, 3)
	coords := props["coordinates"].(map[string]any)
	assert.Equal(t, []any{"lat", "lon"}, coords["required"])
	assert.Equal(t, false, coords["additionalProperties"])
}
