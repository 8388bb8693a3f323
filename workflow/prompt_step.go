package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	ai "github.com/spetersoncode/flowgate"
	"github.com/spetersoncode/flowgate/client"
	"github.com/spetersoncode/flowgate/event"
	"github.com/spetersoncode/flowgate/schema"
	"github.com/spetersoncode/flowgate/tool"
)

// DefaultMaxToolIterations bounds the completion calls a prompt step makes
// while the model keeps requesting tools.
const DefaultMaxToolIterations = 10

// PromptFunc builds the conversation for a step from its input.
type PromptFunc[In any] func(in In) []ai.Message

// PromptStep makes completion calls until the model produces a final
// answer, executing any tools it requests along the way.
//
// With an output schema the answer is validated and decoded into Out.
// Without one, Out must be string, or the text is decoded as JSON.
type PromptStep[In, Out any] struct {
	name          string
	client        *client.Client
	prompt        PromptFunc[In]
	schema        *schema.Schema
	tools         *tool.Registry
	maxIterations int
	parallelTools bool
	chatOpts      []ai.Option
}

// PromptOption configures a PromptStep.
type PromptOption func(*promptConfig)

type promptConfig struct {
	schema        *schema.Schema
	tools         *tool.Registry
	maxIterations int
	parallelTools bool
	chatOpts      []ai.Option
}

// WithSchema requests structured output conforming to s.
func WithSchema(s *schema.Schema) PromptOption {
	return func(c *promptConfig) {
		c.schema = s
	}
}

// WithTools declares every tool in the registry and executes the ones the
// model requests.
func WithTools(r *tool.Registry) PromptOption {
	return func(c *promptConfig) {
		c.tools = r
	}
}

// WithMaxIterations sets the bound on completion calls per run.
func WithMaxIterations(n int) PromptOption {
	return func(c *promptConfig) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

// WithSequentialTools executes the tool calls of one turn one at a time.
func WithSequentialTools() PromptOption {
	return func(c *promptConfig) {
		c.parallelTools = false
	}
}

// WithChatOptions passes options to every completion call.
func WithChatOptions(opts ...ai.Option) PromptOption {
	return func(c *promptConfig) {
		c.chatOpts = append(c.chatOpts, opts...)
	}
}

// NewPromptStep creates a model-backed step.
func NewPromptStep[In, Out any](name string, c *client.Client, prompt PromptFunc[In], opts ...PromptOption) *PromptStep[In, Out] {
	cfg := promptConfig{maxIterations: DefaultMaxToolIterations, parallelTools: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &PromptStep[In, Out]{
		name:          name,
		client:        c,
		prompt:        prompt,
		schema:        cfg.schema,
		tools:         cfg.tools,
		maxIterations: cfg.maxIterations,
		parallelTools: cfg.parallelTools,
		chatOpts:      cfg.chatOpts,
	}
}

// Name returns the step name.
func (p *PromptStep[In, Out]) Name() string { return p.name }

// Run executes the tool loop and returns the decoded answer.
//
// Every failure is returned as *StepError. A provider rejection wraps the
// categorized rejection so ai.IsRejected reports it.
func (p *PromptStep[In, Out]) Run(ctx context.Context, in In) (Out, error) {
	var zero Out
	ctx, run := ensureRun(ctx, ApplyOptions())

	msgs := p.prompt(in)
	if len(msgs) == 0 {
		return zero, p.fail(ErrEmptyPrompt)
	}
	run.Append(msgs...)
	conversation := append([]ai.Message(nil), msgs...)

	opts := p.requestOptions()
	for i := range p.maxIterations {
		comp, err := p.client.Complete(ctx, conversation, opts...)
		if err != nil {
			return zero, p.fail(err)
		}
		run.AddUsage(comp.Usage)

		switch comp.Kind {
		case client.KindRejected:
			run.Logger().Warn("provider rejected step", "step", p.name, "reason", comp.Rejection.Msg)
			return zero, p.fail(comp.Rejection)

		case client.KindToolCalls:
			if i == p.maxIterations-1 {
				// No completion call is left to consume the results.
				run.Logger().Warn("tool loop bound reached", "step", p.name, "pending_calls", len(comp.ToolCalls))
				return zero, p.fail(&ToolLoopExceededError{StepName: p.name, MaxIterations: p.maxIterations})
			}
			results, err := p.executeTools(ctx, run, comp.ToolCalls)
			if err != nil {
				return zero, p.fail(err)
			}
			// Each call is answered before the next completion call.
			conversation = append(conversation, comp.Message)
			conversation = append(conversation, ai.NewToolResultMessages(results...)...)
			run.Append(comp.Message)
			run.Append(ai.NewToolResultMessages(results...)...)

		case client.KindStructured:
			run.Append(comp.Message)
			run.SetResult(p.name, comp.Payload)
			out, err := schema.Decode[Out](p.schema, comp.Payload)
			if err != nil {
				return zero, p.fail(err)
			}
			return out, nil

		default:
			run.Append(comp.Message)
			out, err := decodeText[Out](comp.Text)
			if err != nil {
				return zero, p.fail(err)
			}
			return out, nil
		}
	}

	return zero, p.fail(&ToolLoopExceededError{StepName: p.name, MaxIterations: p.maxIterations})
}

func (p *PromptStep[In, Out]) requestOptions() []ai.Option {
	opts := append([]ai.Option(nil), p.chatOpts...)
	if p.schema != nil {
		opts = append(opts, ai.WithResponseSchema(p.schema.ResponseSchema()))
	}
	if p.tools != nil && p.tools.Len() > 0 {
		opts = append(opts, ai.WithTools(p.tools.Tools()...))
	}
	return opts
}

func (p *PromptStep[In, Out]) executeTools(ctx context.Context, run *Run, calls []ai.ToolCall) ([]ai.ToolResult, error) {
	if p.tools == nil {
		return nil, &tool.ErrToolNotFound{Name: calls[0].Name}
	}
	for i := range calls {
		run.emit(event.Event{Type: event.ToolCallStart, StepName: p.name, ToolCall: &calls[i]})
		run.Logger().Info("tool call", "step", p.name, "tool", calls[i].Name, "call_id", calls[i].ID)
	}

	results, err := p.tools.ExecuteAll(ctx, calls, p.parallelTools)
	if err != nil {
		return nil, err
	}
	for i := range results {
		run.emit(event.Event{Type: event.ToolCallResult, StepName: p.name, ToolCall: &calls[i], ToolResult: &results[i]})
	}
	return results, nil
}

func (p *PromptStep[In, Out]) fail(err error) error {
	return &StepError{StepName: p.name, Err: err}
}

// decodeText converts a free-text answer into Out.
func decodeText[Out any](text string) (Out, error) {
	var out Out
	if s, ok := any(&out).(*string); ok {
		*s = text
		return out, nil
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return out, &ai.SchemaValidationError{
			Payload: text,
			Err:     fmt.Errorf("decode text answer into %T: %w", out, err),
		}
	}
	return out, nil
}
