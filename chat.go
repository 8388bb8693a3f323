package flowgate

import "context"

// ChatProvider defines the interface for AI chat providers.
type ChatProvider interface {
	// Chat sends a conversation and returns a complete response.
	// Implementations report policy refusals either as a Response with
	// FinishRejected or as an *Error in the ErrorRejected category.
	Chat(ctx context.Context, messages []Message, opts ...Option) (*Response, error)
}
