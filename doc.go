// Package flowgate provides the shared vocabulary for composing calls to an
// LLM completion service into typed, gated workflows.
//
// The root package defines the provider-neutral data model: [Message],
// [Tool], [ToolCall], [Response], request [Options] and the categorized
// [Error] taxonomy. Concrete providers implement [ChatProvider]; callers
// normally reach them through the client package, which adds result-kind
// tagging and schema validation on top of the raw provider response.
//
// The packages built on top of it:
//
//   - schema: declare structured output shapes and validate payloads
//   - tool: register tools and dispatch tool calls
//   - client: the completion contract (text, structured, tool calls, rejected)
//   - workflow: steps, gates, chains and parallel fan-out
//   - retry, event: backoff for transient failures and run events
//   - calendar, augment: ready-made workflows built from the above
//   - mcp: serve a tool registry over MCP, or use remote MCP tools
//   - config, model: settings loading and model price lookup for the CLI
//
// # Basic Usage
//
//	c, err := client.New(ctx, client.Config{
//	    Provider:   ai.ProviderAzure,
//	    APIKey:     os.Getenv("AZURE_OPENAI_API_KEY"),
//	    Endpoint:   os.Getenv("AZURE_OPENAI_ENDPOINT"),
//	    APIVersion: os.Getenv("AZURE_OPENAI_API_VERSION"),
//	    Model:      os.Getenv("AZURE_DEPLOYMENT_NAME"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := c.Complete(ctx, []ai.Message{
//	    ai.SystemMessage("You're a helpful assistant."),
//	    ai.UserMessage("Write a limerick about Go."),
//	})
//
// # Error Handling
//
// Provider failures are reported as [*Error] values carrying an
// [ErrorCategory]. Use [IsTransient] to decide whether a retry makes sense and
// [IsRejected] to detect policy or safety refusals:
//
//	if ai.IsTransient(err) {
//	    // network trouble or rate limiting
//	}
package flowgate
