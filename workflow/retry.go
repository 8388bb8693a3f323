package workflow

import (
	"context"

	"github.com/spetersoncode/flowgate/event"
	"github.com/spetersoncode/flowgate/retry"
)

// RetryStep wraps a step with a retry policy.
type RetryStep[In, Out any] struct {
	step   Step[In, Out]
	config retry.Config
}

// Retry wraps step so transient failures are attempted again with
// exponential backoff. Rejections and schema failures are never retried.
//
//	step := workflow.Retry(extract, retry.DefaultConfig())
func Retry[In, Out any](step Step[In, Out], cfg retry.Config) *RetryStep[In, Out] {
	return &RetryStep[In, Out]{step: step, config: cfg}
}

// Name returns the wrapped step's name.
func (r *RetryStep[In, Out]) Name() string { return r.step.Name() }

// Run executes the wrapped step under the retry policy.
func (r *RetryStep[In, Out]) Run(ctx context.Context, in In) (Out, error) {
	ctx, run := ensureRun(ctx, ApplyOptions())

	attempt := 0
	var lastErr error
	out, err := retry.Do(ctx, r.config, func() (Out, error) {
		attempt++
		if attempt > 1 {
			run.Logger().Warn("retrying step", "step", r.Name(), "attempt", attempt, "error", lastErr)
			run.emit(event.Event{Type: event.StepRetry, StepName: r.Name(), Attempt: attempt, Error: lastErr})
		}
		out, err := r.step.Run(ctx, in)
		lastErr = err
		return out, err
	})
	return out, err
}
