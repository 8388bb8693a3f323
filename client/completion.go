package client

import (
	"context"
	"encoding/json"
	"errors"

	ai "github.com/spetersoncode/flowgate"
)

// Kind tags the single shape a completion took.
type Kind string

const (
	KindText       Kind = "text"
	KindStructured Kind = "structured"
	KindToolCalls  Kind = "tool_calls"
	KindRejected   Kind = "rejected"
)

// Completion is the classified result of one provider call.
type Completion struct {
	Kind Kind

	// Text holds the reply for KindText.
	Text string

	// Payload holds the validated JSON for KindStructured.
	Payload json.RawMessage

	// ToolCalls holds the requested invocations for KindToolCalls.
	ToolCalls []ai.ToolCall

	// Rejection explains a KindRejected result.
	Rejection *ai.Error

	FinishReason ai.FinishReason
	Usage        ai.Usage

	// Message is the assistant turn to append to the conversation.
	// It is empty for rejections.
	Message ai.Message
}

// Rejected reports whether the provider declined the request.
func (c *Completion) Rejected() bool {
	return c.Kind == KindRejected
}

// Complete sends messages and classifies the reply.
//
// It returns ai.ErrEmptyInput for an empty conversation. A provider
// rejection, whether signalled by an error or a finish reason, is returned
// as a KindRejected completion with a nil error. With a response schema in
// opts, a payload that fails validation returns *ai.SchemaValidationError.
func (c *Client) Complete(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*Completion, error) {
	if len(messages) == 0 {
		return nil, ai.ErrEmptyInput
	}

	opts = append(append([]ai.Option{}, c.defaults...), opts...)
	options := ai.ApplyOptions(opts...)

	resp, err := c.chat(ctx, messages, opts)
	if err != nil {
		var rejected *ai.Error
		if ai.IsRejected(err) && errors.As(err, &rejected) {
			return &Completion{Kind: KindRejected, Rejection: rejected, FinishReason: ai.FinishRejected}, nil
		}
		return nil, err
	}

	comp := &Completion{FinishReason: resp.FinishReason, Usage: resp.Usage}
	switch {
	case resp.FinishReason == ai.FinishRejected:
		reason := resp.Refusal
		if reason == "" {
			reason = "provider declined the request"
		}
		comp.Kind = KindRejected
		comp.Rejection = ai.NewRejectedError(reason, 0, nil)

	case len(resp.ToolCalls) > 0:
		comp.Kind = KindToolCalls
		comp.ToolCalls = resp.ToolCalls
		comp.Message = ai.AssistantMessage(resp.Content, resp.ToolCalls...)

	case options.ResponseSchema != nil:
		payload, err := validatePayload(options.ResponseSchema, resp.Content)
		if err != nil {
			return nil, err
		}
		comp.Kind = KindStructured
		comp.Payload = payload
		comp.Message = ai.AssistantMessage(resp.Content)

	default:
		comp.Kind = KindText
		comp.Text = resp.Content
		comp.Message = ai.AssistantMessage(resp.Content)
	}
	return comp, nil
}

func validatePayload(rs *ai.ResponseSchema, content string) (json.RawMessage, error) {
	payload := []byte(content)
	var err error
	switch {
	case rs.Validator != nil:
		err = rs.Validator.Validate(payload)
	case !json.Valid(payload):
		err = errors.New("payload is not valid JSON")
	}
	if err != nil {
		return nil, &ai.SchemaValidationError{Schema: rs.Name, Payload: content, Err: err}
	}
	return json.RawMessage(payload), nil
}
