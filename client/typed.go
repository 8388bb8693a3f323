package client

import (
	"context"
	"fmt"

	ai "github.com/spetersoncode/flowgate"
	"github.com/spetersoncode/flowgate/schema"
)

// ErrUnexpectedKind is returned by CompleteAs when the model answered with
// something other than a structured payload.
type ErrUnexpectedKind struct {
	Want, Got Kind
}

func (e *ErrUnexpectedKind) Error() string {
	return fmt.Sprintf("client: expected %s completion, got %s", e.Want, e.Got)
}

// CompleteAs requests output conforming to s and decodes it into T.
//
// The completion is always returned when the call reached the provider, so
// callers can inspect rejections:
//
//	details, comp, err := client.CompleteAs[EventDetails](ctx, c, detailsSchema, msgs)
//	if comp != nil && comp.Rejected() {
//	    // fail closed
//	}
func CompleteAs[T any](ctx context.Context, c *Client, s *schema.Schema, messages []ai.Message, opts ...ai.Option) (T, *Completion, error) {
	var zero T

	opts = append([]ai.Option{ai.WithResponseSchema(s.ResponseSchema())}, opts...)
	comp, err := c.Complete(ctx, messages, opts...)
	if err != nil {
		return zero, nil, err
	}
	if comp.Kind != KindStructured {
		return zero, comp, &ErrUnexpectedKind{Want: KindStructured, Got: comp.Kind}
	}

	out, err := schema.Decode[T](s, comp.Payload)
	if err != nil {
		return zero, comp, err
	}
	return out, comp, nil
}
