package workflow

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	ai "github.com/spetersoncode/flowgate"
	"github.com/spetersoncode/flowgate/event"
)

// Run is the transcript of one workflow invocation: an append-only message
// log, the most recent structured result and the tokens spent.
//
// Each chain invocation creates one Run and each parallel branch gets its
// own, so no Run is ever shared between concurrent branches.
type Run struct {
	id     string
	logger *slog.Logger
	events chan<- event.Event

	mu       sync.Mutex
	messages []ai.Message
	lastStep string
	last     json.RawMessage
	usage    ai.Usage
}

// NewRun creates an empty run with a fresh ID.
func NewRun(opts ...Option) *Run {
	return newRun(ApplyOptions(opts...))
}

func newRun(options *Options) *Run {
	id := uuid.NewString()
	return &Run{
		id:     id,
		logger: options.Logger.With("run_id", id),
		events: options.Events,
	}
}

// ID returns the run identifier.
func (r *Run) ID() string { return r.id }

// Logger returns the run's logger, tagged with the run ID.
func (r *Run) Logger() *slog.Logger { return r.logger }

// Append adds messages to the transcript, assigning IDs where missing.
func (r *Run) Append(msgs ...ai.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		if m.ID == "" {
			m.ID = ai.GenerateMessageID()
		}
		r.messages = append(r.messages, m)
	}
}

// Messages returns a copy of the transcript.
func (r *Run) Messages() []ai.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.messages)
}

// SetResult records the latest structured payload and the step that made it.
func (r *Run) SetResult(step string, payload json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastStep = step
	r.last = slices.Clone(payload)
}

// LastResult returns the latest structured payload, if any.
func (r *Run) LastResult() (step string, payload json.RawMessage, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastStep, slices.Clone(r.last), r.last != nil
}

// AddUsage accumulates token usage.
func (r *Run) AddUsage(u ai.Usage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usage = r.usage.Add(u)
}

// Usage returns the tokens spent so far.
func (r *Run) Usage() ai.Usage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.usage
}

func (r *Run) emit(e event.Event) {
	e.RunID = r.id
	event.Emit(r.events, e)
}

// runKey is the context key for the active run.
type runKey struct{}

// WithRun attaches a run to the context.
func WithRun(ctx context.Context, r *Run) context.Context {
	return context.WithValue(ctx, runKey{}, r)
}

// RunFromContext returns the active run, or nil.
func RunFromContext(ctx context.Context) *Run {
	if r, ok := ctx.Value(runKey{}).(*Run); ok {
		return r
	}
	return nil
}

// ensureRun returns the context's run, attaching a new one if there is none.
func ensureRun(ctx context.Context, options *Options) (context.Context, *Run) {
	if r := RunFromContext(ctx); r != nil {
		return ctx, r
	}
	r := newRun(options)
	return WithRun(ctx, r), r
}
