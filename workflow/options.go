package workflow

import (
	"log/slog"
	"time"

	"github.com/spetersoncode/flowgate/event"
)

// DefaultStepTimeout bounds each step unless overridden.
const DefaultStepTimeout = 2 * time.Minute

// Options contains configuration for chain and parallel execution.
type Options struct {
	// Timeout sets a deadline for the entire run. For parallel blocks it
	// bounds the join: branches still running are failed closed.
	Timeout time.Duration

	// StepTimeout bounds each step or branch (0 = no per-step limit).
	StepTimeout time.Duration

	// MaxConcurrency limits parallel branch execution (0 = unlimited).
	MaxConcurrency int

	// CancelOnError cancels the remaining parallel branches as soon as
	// one fails.
	CancelOnError bool

	// Logger receives step, gate and join records.
	Logger *slog.Logger

	// Events receives workflow events. Sends never block.
	Events chan<- event.Event
}

// Option is a functional option for workflow configuration.
type Option func(*Options)

// WithTimeout sets the overall run timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithStepTimeout sets the timeout for each step.
func WithStepTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.StepTimeout = d
	}
}

// WithMaxConcurrency limits parallel branch execution.
// A value of 0 means unlimited concurrency.
func WithMaxConcurrency(n int) Option {
	return func(o *Options) {
		o.MaxConcurrency = n
	}
}

// WithCancelOnError cancels sibling branches after the first failure.
func WithCancelOnError(enabled bool) Option {
	return func(o *Options) {
		o.CancelOnError = enabled
	}
}

// WithLogger sets the logger. A nil logger keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithEvents sets the event channel.
func WithEvents(ch chan<- event.Event) Option {
	return func(o *Options) {
		o.Events = ch
	}
}

// ApplyOptions applies functional options with defaults.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{
		StepTimeout: DefaultStepTimeout,
		Logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
