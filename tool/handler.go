package tool

import (
	"context"
	"encoding/json"

	ai "github.com/spetersoncode/flowgate"
)

// Handler executes a tool call and returns a JSON-serializable result.
// Strings, []byte and json.RawMessage are passed to the model as-is;
// anything else is encoded with encoding/json.
type Handler func(ctx context.Context, call ai.ToolCall) (any, error)

// TypedHandler executes a tool call with arguments decoded into T.
type TypedHandler[T, R any] func(ctx context.Context, args T) (R, error)

// serialize turns a handler result into tool message content.
func serialize(v any) (string, error) {
	switch r := v.(type) {
	case string:
		return r, nil
	case json.RawMessage:
		return string(r), nil
	case []byte:
		return string(r), nil
	case nil:
		return "null", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeArgs unmarshals call arguments into T. An empty argument string
// is treated as an empty object.
func decodeArgs[T any](call ai.ToolCall) (T, error) {
	var args T
	raw := call.Arguments
	if raw == "" {
		raw = "{}"
	}
	err := json.Unmarshal([]byte(raw), &args)
	return args, err
}
