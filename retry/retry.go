package retry

import (
	"context"
	"time"

	ai "github.com/spetersoncode/flowgate"
)

// Do calls fn until it succeeds, returns a non-retryable error, or the
// attempts run out. Backoff waits end early when ctx is cancelled.
func Do[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	return DoWithEvents(ctx, cfg, nil, fn)
}

// DoWithEvents is like Do but reports progress on events.
// Events are sent non-blocking; if the channel is full they are dropped.
// A nil channel disables reporting.
func DoWithEvents[T any](ctx context.Context, cfg Config, events chan<- Event, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	attempts := cfg.attempts()

	for attempt := 1; attempt <= attempts; attempt++ {
		emit(events, Event{Type: EventAttemptStart, Attempt: attempt, MaxAttempts: attempts})

		result, err := fn()
		if err == nil {
			emit(events, Event{Type: EventSuccess, Attempt: attempt, MaxAttempts: attempts})
			return result, nil
		}

		lastErr = err
		retryable := cfg.retryable(err)
		emit(events, Event{
			Type:        EventAttemptFailed,
			Attempt:     attempt,
			MaxAttempts: attempts,
			Error:       err,
			Retryable:   retryable,
		})
		if !retryable {
			return zero, err
		}
		if attempt == attempts {
			break
		}

		delay := effectiveDelay(cfg.Delay(attempt-1), err)
		emit(events, Event{Type: EventRetrying, Attempt: attempt, MaxAttempts: attempts, Delay: delay})

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	emit(events, Event{Type: EventExhausted, Attempt: attempts, MaxAttempts: attempts, Error: lastErr})
	return zero, lastErr
}

// effectiveDelay honors the server's Retry-After when it asks for longer.
func effectiveDelay(configured time.Duration, err error) time.Duration {
	if server := ai.RetryAfterOf(err); server > configured {
		return server
	}
	return configured
}
