package flowgate

// Options contains configuration for a chat request.
type Options struct {
	// Model overrides the provider's default model (or Azure deployment).
	Model       string
	MaxTokens   int
	Temperature *float64

	// Tools declares the functions the model may call.
	Tools      []Tool
	ToolChoice ToolChoice

	// ResponseSchema constrains the output to a structured payload.
	ResponseSchema *ResponseSchema
}

// Option is a functional option for configuring chat requests.
type Option func(*Options)

// WithModel sets the model to use for the request.
func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// WithTemperature sets the sampling temperature (0.0 to 2.0).
func WithTemperature(t float64) Option {
	return func(o *Options) {
		o.Temperature = &t
	}
}

// WithTools declares tools the model may request.
func WithTools(tools ...Tool) Option {
	return func(o *Options) {
		o.Tools = append(o.Tools, tools...)
	}
}

// WithToolChoice controls whether the model may, must or must not call tools.
func WithToolChoice(choice ToolChoice) Option {
	return func(o *Options) {
		o.ToolChoice = choice
	}
}

// WithResponseSchema requests structured output conforming to the schema.
func WithResponseSchema(schema *ResponseSchema) Option {
	return func(o *Options) {
		o.ResponseSchema = schema
	}
}

// ApplyOptions applies functional options to an Options struct.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
