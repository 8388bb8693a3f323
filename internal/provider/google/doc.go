// Package google adapts Gemini models to [flowgate.ChatProvider] through the
// Google GenAI SDK, on either the Gemini API or Vertex AI.
//
// System messages become the request's system instruction. Gemini matches
// function responses by function name rather than call ID, so the client
// resolves each tool result's call ID back to the name recorded on the
// assistant turn that issued it.
//
// Prompts blocked by safety filters, and candidates that finish for a
// safety reason, are reported as [flowgate.FinishRejected].
package google
