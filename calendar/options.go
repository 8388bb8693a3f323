package calendar

import (
	"log/slog"
	"time"

	"github.com/spetersoncode/flowgate/workflow"
)

const (
	// DefaultThreshold is the confidence a request must exceed.
	DefaultThreshold = 0.7

	// DefaultSignature signs confirmation messages.
	DefaultSignature = "Susie"
)

type config struct {
	threshold float64
	signature string
	now       func() time.Time
	logger    *slog.Logger
	workflow  []workflow.Option
}

// Option configures a Processor or Validator.
type Option func(*config)

// WithThreshold sets the confidence threshold. The value is fixed when the
// Processor or Validator is built.
func WithThreshold(t float64) Option {
	return func(c *config) {
		c.threshold = t
	}
}

// WithSignature sets the name confirmations are signed with.
func WithSignature(name string) Option {
	return func(c *config) {
		if name != "" {
			c.signature = name
		}
	}
}

// WithClock sets the source of the current date used in prompts.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithWorkflowOptions passes options to every chain or parallel run.
func WithWorkflowOptions(opts ...workflow.Option) Option {
	return func(c *config) {
		c.workflow = append(c.workflow, opts...)
	}
}

func applyOptions(opts []Option) config {
	c := config{
		threshold: DefaultThreshold,
		signature: DefaultSignature,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c config) runOptions() []workflow.Option {
	return append([]workflow.Option{workflow.WithLogger(c.logger)}, c.workflow...)
}

// dateContext anchors relative dates in prompts.
func dateContext(now time.Time) string {
	return "Today is " + now.Format("Monday, January 02, 2006") + "."
}
