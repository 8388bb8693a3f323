// Package tool registers the functions a model may call and dispatches the
// calls it makes.
//
// A Registry maps tool names to handlers. Handlers return any
// JSON-serializable value; the registry encodes it into the tool message
// content sent back to the model, keyed by the originating call ID.
//
// # Typed Tools
//
// Func reflects a strict parameter schema from an argument struct using
// jsonschema tags:
//
//	type WeatherArgs struct {
//	    Latitude  float64 `json:"latitude" jsonschema:"description=Latitude of the location"`
//	    Longitude float64 `json:"longitude" jsonschema:"description=Longitude of the location"`
//	}
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func("get_weather", "Get current temperature",
//	        func(ctx context.Context, args WeatherArgs) (Conditions, error) {
//	            return lookup(ctx, args.Latitude, args.Longitude)
//	        }),
//	)
//
// # Failures
//
// Execute never hides a failure inside the result content. An unknown tool
// is an *ErrToolNotFound and a failing handler is an *ErrToolExecution; the
// caller decides whether that ends the conversation.
//
// # Built-in Tools
//
//   - NewWeatherTool: get_weather backed by the Open-Meteo forecast API
//   - NewKnowledgeBaseTool: search_kb returning a whole question/answer corpus
package tool
