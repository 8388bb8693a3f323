package google

import (
	"context"
	"strings"

	"google.golang.org/genai"

	ai "github.com/spetersoncode/flowgate"
)

// DefaultModel is used when neither the client nor the request names a model.
const DefaultModel = "gemini-2.5-flash"

// Client wraps the Google GenAI SDK to implement ai.ChatProvider.
type Client struct {
	client *genai.Client
	model  string
}

type clientConfig struct {
	model    string
	baseURL  string
	vertex   bool
	project  string
	location string
}

// ClientOption configures the Google client.
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

// WithVertex selects the Vertex AI backend. Credentials come from
// Application Default Credentials and the API key is ignored.
func WithVertex(project, location string) ClientOption {
	return func(c *clientConfig) {
		c.vertex = true
		c.project = project
		c.location = location
	}
}

// New creates a new Google GenAI client with the given API key.
func New(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	cfg := clientConfig{model: DefaultModel}
	for _, opt := range opts {
		opt(&cfg)
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.vertex {
		cc = &genai.ClientConfig{
			Backend:  genai.BackendVertexAI,
			Project:  cfg.project,
			Location: cfg.location,
		}
	}
	if cfg.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	return &Client{client: client, model: cfg.model}, nil
}

// Chat sends a conversation and returns a complete response.
func (c *Client) Chat(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	options := ai.ApplyOptions(opts...)
	model := c.model
	if options.Model != "" {
		model = options.Model
	}

	contents, system := convertMessages(messages)
	config := &genai.GenerateContentConfig{SystemInstruction: system}
	if options.MaxTokens > 0 {
		config.MaxOutputTokens = int32(options.MaxTokens)
	}
	if options.Temperature != nil {
		temp := float32(*options.Temperature)
		config.Temperature = &temp
	}
	if len(options.Tools) > 0 {
		config.Tools = convertTools(options.Tools)
		if options.ToolChoice != "" {
			config.ToolConfig = convertToolChoice(options.ToolChoice)
		}
	}
	if rs := options.ResponseSchema; rs != nil {
		schema, err := convertJSONSchema(rs.Schema)
		if err != nil {
			return nil, ai.NewUserInputError("google: invalid response schema "+rs.Name, 0, err)
		}
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = schema
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, wrapError(err)
	}

	out := &ai.Response{FinishReason: ai.FinishStop}
	if resp.UsageMetadata != nil {
		out.Usage = ai.Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}

	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		out.FinishReason = ai.FinishRejected
		out.Refusal = "prompt blocked: " + string(fb.BlockReason)
		if fb.BlockReasonMessage != "" {
			out.Refusal += ": " + fb.BlockReasonMessage
		}
		return out, nil
	}
	if len(resp.Candidates) == 0 {
		return out, nil
	}

	candidate := resp.Candidates[0]
	if candidate.Content != nil {
		var text strings.Builder
		for _, part := range candidate.Content.Parts {
			if part.Text != "" && !part.Thought {
				text.WriteString(part.Text)
			}
		}
		out.Content = text.String()
		out.ToolCalls = extractToolCalls(candidate.Content.Parts)
	}

	out.FinishReason = convertFinishReason(candidate.FinishReason)
	switch {
	case out.FinishReason == ai.FinishRejected:
		out.Refusal = "candidate blocked: " + string(candidate.FinishReason)
	case len(out.ToolCalls) > 0:
		// Gemini reports STOP even when the turn ends in function calls.
		out.FinishReason = ai.FinishToolCalls
	}
	return out, nil
}

// convertFinishReason maps Gemini finish reasons onto ai.FinishReason.
func convertFinishReason(reason genai.FinishReason) ai.FinishReason {
	switch reason {
	case genai.FinishReasonMaxTokens:
		return ai.FinishLength
	case genai.FinishReasonSafety,
		genai.FinishReasonRecitation,
		genai.FinishReasonBlocklist,
		genai.FinishReasonProhibitedContent,
		genai.FinishReasonSPII,
		genai.FinishReasonImageSafety:
		return ai.FinishRejected
	default:
		return ai.FinishStop
	}
}

var _ ai.ChatProvider = (*Client)(nil)
