// Package openai adapts the OpenAI chat completions API, including Azure
// OpenAI deployments, to ai.ChatProvider.
package openai

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"

	ai "github.com/spetersoncode/flowgate"
)

// DefaultModel is used when neither the client nor the request names a model.
const DefaultModel = "gpt-4o"

// Client wraps the OpenAI SDK to implement ai.ChatProvider.
type Client struct {
	client *openai.Client
	model  string
}

type clientConfig struct {
	model      string
	endpoint   string
	apiVersion string
	baseURL    string
	extra      []option.RequestOption
}

// ClientOption configures the OpenAI client.
type ClientOption func(*clientConfig)

// WithModel sets the default model for requests. On Azure this is the
// deployment name.
func WithModel(model string) ClientOption {
	return func(c *clientConfig) {
		c.model = model
	}
}

// WithAzure routes requests to an Azure OpenAI resource.
func WithAzure(endpoint, apiVersion string) ClientOption {
	return func(c *clientConfig) {
		c.endpoint = endpoint
		c.apiVersion = apiVersion
	}
}

// WithBaseURL points the client at an OpenAI-compatible server.
func WithBaseURL(url string) ClientOption {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithRequestOptions appends raw SDK request options.
func WithRequestOptions(opts ...option.RequestOption) ClientOption {
	return func(c *clientConfig) {
		c.extra = append(c.extra, opts...)
	}
}

// New creates a client with the given API key.
//
// The SDK's own retries are turned off: retry policy belongs to the caller.
func New(apiKey string, opts ...ClientOption) *Client {
	cfg := clientConfig{model: DefaultModel}
	for _, opt := range opts {
		opt(&cfg)
	}

	reqOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if cfg.endpoint != "" {
		reqOpts = append(reqOpts,
			azure.WithEndpoint(cfg.endpoint, cfg.apiVersion),
			azure.WithAPIKey(apiKey),
		)
	} else {
		reqOpts = append(reqOpts, option.WithAPIKey(apiKey))
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	reqOpts = append(reqOpts, cfg.extra...)

	client := openai.NewClient(reqOpts...)
	return &Client{client: &client, model: cfg.model}
}

// Chat sends a conversation and returns a complete response.
func (c *Client) Chat(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	options := ai.ApplyOptions(opts...)
	model := c.model
	if options.Model != "" {
		model = options.Model
	}

	params := openai.ChatCompletionNewParams{
		Model:    model,
		Messages: convertMessages(messages),
	}
	if options.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(options.MaxTokens))
	}
	if options.Temperature != nil {
		params.Temperature = openai.Float(*options.Temperature)
	}
	if len(options.Tools) > 0 {
		params.Tools = convertTools(options.Tools)
		if options.ToolChoice != "" {
			params.ToolChoice = convertToolChoice(options.ToolChoice)
		}
	}
	if options.ResponseSchema != nil {
		format, err := buildSchemaFormat(options.ResponseSchema)
		if err != nil {
			return nil, err
		}
		params.ResponseFormat = format
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, ai.NewPermanentError("openai: response has no choices", 0, errors.New("empty choices"))
	}

	choice := resp.Choices[0]
	out := &ai.Response{
		Content:      choice.Message.Content,
		FinishReason: convertFinishReason(string(choice.FinishReason)),
		Usage: ai.Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
		ToolCalls: extractToolCalls(choice.Message),
		Refusal:   choice.Message.Refusal,
	}
	if out.Refusal != "" {
		out.FinishReason = ai.FinishRejected
	}
	return out, nil
}

// convertFinishReason maps OpenAI finish reasons onto ai.FinishReason.
// "content_filter" means the output was withheld by the safety system.
func convertFinishReason(reason string) ai.FinishReason {
	switch reason {
	case "tool_calls", "function_call":
		return ai.FinishToolCalls
	case "length":
		return ai.FinishLength
	case "content_filter":
		return ai.FinishRejected
	default:
		return ai.FinishStop
	}
}

var _ ai.ChatProvider = (*Client)(nil)
