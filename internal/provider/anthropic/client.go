package anthropic

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	ai "github.com/spetersoncode/flowgate"
)

const (
	// DefaultModel is used when neither the client nor the request names a model.
	DefaultModel = "claude-sonnet-4-5"

	// defaultMaxTokens is sent when the request sets no limit; the API requires one.
	defaultMaxTokens = 4096
)

// Client wraps the Anthropic SDK to implement ai.ChatProvider.
type Client struct {
	client *anthropic.Client
	model  string
}

type clientConfig struct {
	model   string
	baseURL string
	extra   []option.RequestOption
}

// ClientOption configures the Anthropic client.
type ClientOption func(*clientConfig)

// WithModel sets the default model for requests.
func WithModel(model string) ClientOption {
	return func(c *clientConfig) {
		c.model = model
	}
}

// WithBaseURL points the client at a different API host.
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

// New creates a new Anthropic client with the given API key.
// SDK retries are disabled; callers opt into retry explicitly.
func New(apiKey string, opts ...ClientOption) *Client {
	cfg := clientConfig{model: DefaultModel}
	for _, opt := range opts {
		opt(&cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	reqOpts = append(reqOpts, cfg.extra...)

	client := anthropic.NewClient(reqOpts...)
	return &Client{client: &client, model: cfg.model}
}

// Chat sends a conversation and returns a complete response.
func (c *Client) Chat(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	options := ai.ApplyOptions(opts...)
	model := c.model
	if options.Model != "" {
		model = options.Model
	}

	maxTokens := int64(defaultMaxTokens)
	if options.MaxTokens > 0 {
		maxTokens = int64(options.MaxTokens)
	}

	msgs, system := convertMessages(messages)
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages:  msgs,
	}
	if len(system) > 0 {
		params.System = system
	}
	if options.Temperature != nil {
		params.Temperature = anthropic.Float(*options.Temperature)
	}

	structured := options.ResponseSchema != nil
	switch {
	case structured:
		jsonTool, choice, err := buildResponseTool(options.ResponseSchema)
		if err != nil {
			return nil, err
		}
		params.Tools = append(convertTools(options.Tools), jsonTool)
		params.ToolChoice = choice
		if len(options.Tools) > 0 {
			// Leave room for caller tools; the response tool still ends the turn.
			params.ToolChoice = anthropic.ToolChoiceUnionParam{OfAny: &anthropic.ToolChoiceAnyParam{}}
		}
	case len(options.Tools) > 0:
		params.Tools = convertTools(options.Tools)
		if options.ToolChoice != "" {
			params.ToolChoice = convertToolChoice(options.ToolChoice)
		}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, wrapError(err)
	}

	var text strings.Builder
	var toolCalls []ai.ToolCall
	content := ""
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			if structured && block.Name == responseToolName {
				content = string(block.Input)
				continue
			}
			toolCalls = append(toolCalls, ai.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: string(block.Input),
			})
		}
	}
	if content == "" {
		content = text.String()
	}

	out := &ai.Response{
		Content:      content,
		FinishReason: convertStopReason(string(resp.StopReason)),
		Usage: ai.Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
		ToolCalls: toolCalls,
	}
	if out.FinishReason == ai.FinishRejected {
		out.Refusal = text.String()
	}
	// A forced response tool ends the turn with stop_reason tool_use even
	// though no caller tool was requested.
	if out.FinishReason == ai.FinishToolCalls && len(toolCalls) == 0 {
		out.FinishReason = ai.FinishStop
	}
	return out, nil
}

// convertStopReason maps Anthropic stop reasons onto ai.FinishReason.
func convertStopReason(reason string) ai.FinishReason {
	switch reason {
	case "tool_use":
		return ai.FinishToolCalls
	case "max_tokens":
		return ai.FinishLength
	case "refusal":
		return ai.FinishRejected
	default:
		return ai.FinishStop
	}
}

var _ ai.ChatProvider = (*Client)(nil)
