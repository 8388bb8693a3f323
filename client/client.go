package client

import (
	"context"
	"fmt"
	"time"

	ai "github.com/spetersoncode/flowgate"
	"github.com/spetersoncode/flowgate/internal/provider/anthropic"
	"github.com/spetersoncode/flowgate/internal/provider/google"
	"github.com/spetersoncode/flowgate/internal/provider/openai"
	"github.com/spetersoncode/flowgate/retry"
)

// Config selects and authenticates a provider.
type Config struct {
	Provider ai.Provider
	APIKey   string
	// Model is the default model; on Azure it names the deployment.
	Model string

	// Endpoint and APIVersion address an Azure OpenAI resource.
	Endpoint   string
	APIVersion string

	// VertexProject and VertexLocation address a Vertex AI project.
	VertexProject  string
	VertexLocation string

	// BaseURL overrides the provider's API host.
	BaseURL string
}

// ErrMissingCredentials is returned when a provider is selected without
// the settings it needs to authenticate.
type ErrMissingCredentials struct {
	Provider ai.Provider
	Setting  string
}

func (e *ErrMissingCredentials) Error() string {
	return fmt.Sprintf("client: %s provider requires %s", e.Provider, e.Setting)
}

// ErrUnsupportedProvider is returned for a provider name with no adapter.
type ErrUnsupportedProvider struct {
	Provider ai.Provider
}

func (e *ErrUnsupportedProvider) Error() string {
	return fmt.Sprintf("client: unsupported provider %q", e.Provider)
}

// Option configures a Client.
type Option func(*Client)

// WithRetry retries transient provider failures according to cfg.
func WithRetry(cfg retry.Config) Option {
	return func(c *Client) {
		c.retry = cfg
	}
}

// WithDefaultOptions sets request options applied before per-call options.
func WithDefaultOptions(opts ...ai.Option) Option {
	return func(c *Client) {
		c.defaults = append(c.defaults, opts...)
	}
}

// WithEvents sends request events to ch. Sends never block.
func WithEvents(ch chan<- Event) Option {
	return func(c *Client) {
		c.events = ch
	}
}

// Client wraps a chat provider with result classification and optional retry.
// It is safe for concurrent use if the provider is.
type Client struct {
	provider ai.ChatProvider
	name     ai.Provider
	retry    retry.Config
	defaults []ai.Option
	events   chan<- Event
}

// New builds the provider described by cfg.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	p, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c := NewWithProvider(p, opts...)
	c.name = cfg.Provider
	return c, nil
}

// NewWithProvider wraps an existing provider.
func NewWithProvider(p ai.ChatProvider, opts ...Option) *Client {
	c := &Client{provider: p, retry: retry.Disabled()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the wrapped provider.
func (c *Client) Provider() ai.ChatProvider {
	return c.provider
}

func newProvider(ctx context.Context, cfg Config) (ai.ChatProvider, error) {
	switch cfg.Provider {
	case ai.ProviderAzure:
		if cfg.APIKey == "" {
			return nil, &ErrMissingCredentials{Provider: cfg.Provider, Setting: "an API key"}
		}
		if cfg.Endpoint == "" {
			return nil, &ErrMissingCredentials{Provider: cfg.Provider, Setting: "an endpoint"}
		}
		if cfg.Model == "" {
			return nil, &ErrMissingCredentials{Provider: cfg.Provider, Setting: "a deployment name"}
		}
		return openai.New(cfg.APIKey,
			openai.WithAzure(cfg.Endpoint, cfg.APIVersion),
			openai.WithModel(cfg.Model),
		), nil

	case ai.ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, &ErrMissingCredentials{Provider: cfg.Provider, Setting: "an API key"}
		}
		opts := []openai.ClientOption{}
		if cfg.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(cfg.APIKey, opts...), nil

	case ai.ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, &ErrMissingCredentials{Provider: cfg.Provider, Setting: "an API key"}
		}
		opts := []anthropic.ClientOption{}
		if cfg.Model != "" {
			opts = append(opts, anthropic.WithModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		return anthropic.New(cfg.APIKey, opts...), nil

	case ai.ProviderGoogle, ai.ProviderVertex:
		opts := []google.ClientOption{}
		if cfg.Provider == ai.ProviderVertex {
			if cfg.VertexProject == "" || cfg.VertexLocation == "" {
				return nil, &ErrMissingCredentials{Provider: cfg.Provider, Setting: "a project and location"}
			}
			opts = append(opts, google.WithVertex(cfg.VertexProject, cfg.VertexLocation))
		} else if cfg.APIKey == "" {
			return nil, &ErrMissingCredentials{Provider: cfg.Provider, Setting: "an API key"}
		}
		if cfg.Model != "" {
			opts = append(opts, google.WithModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, google.WithBaseURL(cfg.BaseURL))
		}
		p, err := google.New(ctx, cfg.APIKey, opts...)
		if err != nil {
			return nil, fmt.Errorf("client: initialize %s provider: %w", cfg.Provider, err)
		}
		return p, nil

	default:
		return nil, &ErrUnsupportedProvider{Provider: cfg.Provider}
	}
}

// chat calls the provider once, or under the retry policy when one is set.
func (c *Client) chat(ctx context.Context, messages []ai.Message, opts []ai.Option) (*ai.Response, error) {
	start := time.Now()
	emit(c.events, Event{Type: EventRequestStart, Provider: c.name})

	var retryEvents chan retry.Event
	done := make(chan struct{})
	if c.events != nil && c.retry.Enabled() {
		retryEvents = make(chan retry.Event, 10)
		go func() {
			defer close(done)
			c.forwardRetryEvents(retryEvents)
		}()
	} else {
		close(done)
	}

	resp, err := retry.DoWithEvents(ctx, c.retry, retryEvents, func() (*ai.Response, error) {
		return c.provider.Chat(ctx, messages, opts...)
	})
	if retryEvents != nil {
		close(retryEvents)
	}
	<-done

	if err != nil {
		emit(c.events, Event{Type: EventRequestError, Provider: c.name, Duration: time.Since(start), Error: err})
		return nil, err
	}
	emit(c.events, Event{Type: EventRequestComplete, Provider: c.name, Duration: time.Since(start), Usage: &resp.Usage})
	return resp, nil
}

// forwardRetryEvents relays retry events as EventRetry until the channel closes.
func (c *Client) forwardRetryEvents(retryEvents <-chan retry.Event) {
	for re := range retryEvents {
		emit(c.events, Event{Type: EventRetry, Provider: c.name, RetryEvent: &re})
	}
}
