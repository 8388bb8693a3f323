// Package anthropic adapts the Anthropic Messages API to [flowgate.ChatProvider].
//
// System messages are lifted into the request's system prompt, and tool
// results are sent back as tool_result blocks keyed by the originating
// tool_use ID, so several results for one turn travel in a single user
// message.
//
// # Structured Output
//
// Anthropic has no native response format. When a request carries a
// ResponseSchema, the client declares a synthetic tool whose input schema
// is the response schema and forces the model to call it; the tool input
// becomes the response content.
//
// # Rejections
//
// A stop_reason of "refusal" is reported as [flowgate.FinishRejected].
//
// # Basic Usage
//
//	client := anthropic.New(os.Getenv("ANTHROPIC_API_KEY"),
//	    anthropic.WithModel("claude-sonnet-4-5"))
//
//	resp, err := client.Chat(ctx, []flowgate.Message{
//	    flowgate.UserMessage("Explain quantum computing briefly."),
//	})
package anthropic
