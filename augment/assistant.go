// Package augment provides single-purpose assistants built on the
// workflow engine: a plain completion, structured extraction, a weather
// answer backed by a live tool and a knowledge-base answer.
package augment

import (
	"context"
	"fmt"
	"log/slog"

	ai "github.com/spetersoncode/flowgate"
	"github.com/spetersoncode/flowgate/client"
	"github.com/spetersoncode/flowgate/schema"
	"github.com/spetersoncode/flowgate/tool"
	"github.com/spetersoncode/flowgate/workflow"
)

// System prompts used by the assistant.
const (
	HelpfulPrompt       = "You're a helpful assistant."
	ExtractPrompt       = "Extract the event information."
	WeatherPrompt       = "You are a helpful weather assistant."
	KnowledgeBasePrompt = "You are a helpful assistant that answers questions from the knowledge base about our e-commerce store."
)

// CalendarEvent is a minimal extracted event.
type CalendarEvent struct {
	Name         string   `json:"name"`
	Date         string   `json:"date"`
	Participants []string `json:"participants"`
}

// WeatherResponse is the final answer of Weather.
type WeatherResponse struct {
	Temperature float64 `json:"temperature"`
	Response    string  `json:"response"`
}

// KBResponse is the final answer of AskKnowledgeBase.
type KBResponse struct {
	Answer string `json:"answer"`
	Source int    `json:"source"`
}

var (
	calendarEventSchema = schema.MustDefine("calendar_event", "A calendar event",
		schema.Object().
			Field("name", schema.String().Required()).
			Field("date", schema.String().Required()).
			Field("participants", schema.Array(schema.String()).Required()).
			StrictMode())

	weatherResponseSchema = schema.MustDefine("weather_response", "Answer to a weather question",
		schema.Object().
			Field("temperature", schema.Number().Desc("The current temperature in celsius for the given location.").Required()).
			Field("response", schema.String().Desc("A natural language response to the user's question.").Required()).
			StrictMode())

	kbResponseSchema = schema.MustDefine("kb_response", "Answer from the knowledge base",
		schema.Object().
			Field("answer", schema.String().Desc("The answer to the user's question and make it more creative and funny.").Required()).
			Field("source", schema.Int().Desc("The record id of the answer.").Required()).
			StrictMode())
)

// Option configures an Assistant.
type Option func(*Assistant)

// WithKnowledgeBase replaces the built-in store policy corpus.
func WithKnowledgeBase(kb *tool.KnowledgeBase) Option {
	return func(a *Assistant) {
		if kb != nil {
			a.kb = kb
		}
	}
}

// WithWeatherOptions configures the HTTP client of the weather tool.
func WithWeatherOptions(opts ...tool.HTTPToolOption) Option {
	return func(a *Assistant) {
		a.weatherOpts = append(a.weatherOpts, opts...)
	}
}

// WithMaxToolIterations bounds the tool loop of Weather and AskKnowledgeBase.
func WithMaxToolIterations(n int) Option {
	return func(a *Assistant) {
		a.maxIterations = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Assistant) {
		if l != nil {
			a.logger = l
		}
	}
}

// Assistant answers one question per call.
type Assistant struct {
	kb            *tool.KnowledgeBase
	weatherOpts   []tool.HTTPToolOption
	maxIterations int
	logger        *slog.Logger

	ask      workflow.Step[string, string]
	extract  workflow.Step[string, CalendarEvent]
	weather  workflow.Step[string, WeatherResponse]
	kbAnswer workflow.Step[string, KBResponse]
}

// New creates an Assistant.
func New(c *client.Client, opts ...Option) *Assistant {
	a := &Assistant{
		kb:            tool.DefaultKnowledgeBase(),
		maxIterations: workflow.DefaultMaxToolIterations,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.ask = workflow.NewPromptStep[string, string]("ask", c, prompt(HelpfulPrompt))
	a.extract = workflow.NewPromptStep[string, CalendarEvent]("extract_event", c, prompt(ExtractPrompt),
		workflow.WithSchema(calendarEventSchema))
	a.weather = workflow.NewPromptStep[string, WeatherResponse]("weather", c, prompt(WeatherPrompt),
		workflow.WithSchema(weatherResponseSchema),
		workflow.WithTools(a.Tools(tool.WeatherToolName)),
		workflow.WithMaxIterations(a.maxIterations))
	a.kbAnswer = workflow.NewPromptStep[string, KBResponse]("knowledge_base", c, prompt(KnowledgeBasePrompt),
		workflow.WithSchema(kbResponseSchema),
		workflow.WithTools(a.Tools(tool.KnowledgeBaseToolName)),
		workflow.WithMaxIterations(a.maxIterations))
	return a
}

func prompt(system string) workflow.PromptFunc[string] {
	return func(question string) []ai.Message {
		return []ai.Message{ai.SystemMessage(system), ai.UserMessage(question)}
	}
}

// Tools returns a registry with the named tools, or every assistant tool
// when no names are given.
func (a *Assistant) Tools(names ...string) *tool.Registry {
	all := map[string]func() tool.Registration{
		tool.WeatherToolName:       func() tool.Registration { return tool.NewWeatherTool(a.weatherOpts...) },
		tool.KnowledgeBaseToolName: func() tool.Registration { return tool.NewKnowledgeBaseTool(a.kb) },
	}
	if len(names) == 0 {
		names = []string{tool.WeatherToolName, tool.KnowledgeBaseToolName}
	}

	r := tool.NewRegistry()
	for _, name := range names {
		if build, ok := all[name]; ok {
			r.Add(build())
		}
	}
	return r
}

// Ask answers a question with a plain completion.
func (a *Assistant) Ask(ctx context.Context, question string) (string, error) {
	return run(ctx, a, a.ask, question)
}

// ExtractEvent extracts a calendar event from text.
func (a *Assistant) ExtractEvent(ctx context.Context, text string) (CalendarEvent, error) {
	return run(ctx, a, a.extract, text)
}

// Weather answers a weather question, looking up current conditions with
// the get_weather tool.
func (a *Assistant) Weather(ctx context.Context, question string) (WeatherResponse, error) {
	return run(ctx, a, a.weather, question)
}

// AskKnowledgeBase answers a store question from the knowledge base.
func (a *Assistant) AskKnowledgeBase(ctx context.Context, question string) (KBResponse, error) {
	return run(ctx, a, a.kbAnswer, question)
}

func run[Out any](ctx context.Context, a *Assistant, step workflow.Step[string, Out], input string) (Out, error) {
	r := workflow.NewRun(workflow.WithLogger(a.logger))
	out, err := step.Run(workflow.WithRun(ctx, r), input)
	if err != nil {
		var zero Out
		return zero, fmt.Errorf("augment: %s: %w", step.Name(), err)
	}
	a.logger.Debug("assistant answered", "step", step.Name(), "run_id", r.ID(), "messages", len(r.Messages()), "usage", r.Usage())
	return out, nil
}
