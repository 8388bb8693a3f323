// Package client is the completion adapter between workflows and chat
// providers.
//
// [Client.Complete] sends one request and classifies the reply as exactly
// one [Kind]:
//
//   - [KindText]: free text.
//   - [KindStructured]: a payload that passed the request's response schema.
//   - [KindToolCalls]: the model wants tools run before it continues.
//   - [KindRejected]: the provider declined on policy or safety grounds.
//
// A rejection is a result, not an error, so callers can substitute a
// fail-closed default. Transport failures and schema violations are errors
// and stay distinguishable:
//
//	comp, err := c.Complete(ctx, msgs, ai.WithResponseSchema(s.ResponseSchema()))
//	switch {
//	case ai.IsTransient(err):
//	    // retry at the caller's discretion
//	case errors.As(err, &schemaErr):
//	    // payload did not match
//	case comp.Kind == client.KindRejected:
//	    // fail closed
//	}
//
// # Providers
//
// [New] builds the provider named in [Config]: Azure OpenAI, OpenAI,
// Anthropic, Google (Gemini API) or Vertex AI. [NewWithProvider] wraps any
// ai.ChatProvider, which is how tests inject stubs.
//
// # Retry
//
// Complete makes exactly one attempt unless a retry policy is installed
// with [WithRetry]. Only transient errors are retried; rejections and
// schema violations never are.
package client
