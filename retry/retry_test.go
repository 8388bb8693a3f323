package retry

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/spetersoncode/flowgate"
)

// mockTransientError simulates a transient network error.
type mockTransientError struct {
	msg string
}

func (e *mockTransientError) Error() string   { return e.msg }
func (e *mockTransientError) Timeout() bool   { return true }
func (e *mockTransientError) Temporary() bool { return true }

var _ net.Error = (*mockTransientError)(nil)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDoSuccess(t *testing.T) {
	calls := 0
	result, err := Do(context.Background(), DefaultConfig(), func() (string, error) {
		calls++
		return "success", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "success", result)
	assert.Equal(t, 1, calls)
}

func TestDoRetryOnTransientError(t *testing.T) {
	calls := 0
	result, err := Do(context.Background(), fastConfig(3), func() (string, error) {
		calls++
		if calls < 3 {
			return "", &mockTransientError{msg: "timeout"}
		}
		return "success", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "success", result)
	assert.Equal(t, 3, calls)
}

func TestDoNoRetryOnPermanentError(t *testing.T) {
	calls := 0
	permanent := errors.New("permanent error")

	_, err := Do(context.Background(), fastConfig(5), func() (string, error) {
		calls++
		return "", permanent
	})

	assert.Equal(t, permanent, err)
	assert.Equal(t, 1, calls)
}

func TestDoNeverRetriesRejection(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastConfig(5), func() (int, error) {
		calls++
		return 0, ai.NewRejectedError("content filtered", 400, nil)
	})

	assert.True(t, ai.IsRejected(err))
	assert.Equal(t, 1, calls)
}

func TestDoExhaustsRetries(t *testing.T) {
	calls := 0
	transient := &mockTransientError{msg: "timeout"}

	_, err := Do(context.Background(), fastConfig(3), func() (string, error) {
		calls++
		return "", transient
	})

	assert.Equal(t, transient, err)
	assert.Equal(t, 3, calls)
}

func TestDoCustomRetryable(t *testing.T) {
	sentinel := errors.New("try again")
	cfg := fastConfig(4)
	cfg.Retryable = func(err error) bool { return errors.Is(err, sentinel) }

	calls := 0
	_, err := Do(context.Background(), cfg, func() (string, error) {
		calls++
		return "", sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 4, calls)
}

func TestDoRespectsContextCancellation(t *testing.T) {
	cfg := Config{MaxAttempts: 10, InitialDelay: time.Second, MaxDelay: time.Second, Multiplier: 1.0}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	calls := 0
	_, err := Do(ctx, cfg, func() (string, error) {
		calls++
		return "", &mockTransientError{msg: "timeout"}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDoWithDisabledRetry(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), Disabled(), func() (string, error) {
		calls++
		return "", &mockTransientError{msg: "timeout"}
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoZeroConfigMakesOneAttempt(t *testing.T) {
	calls := 0
	_, _ = Do(context.Background(), Config{}, func() (string, error) {
		calls++
		return "", &mockTransientError{msg: "timeout"}
	})

	assert.Equal(t, 1, calls)
}

func TestDoHonorsRetryAfterFromError(t *testing.T) {
	cfg := Config{MaxAttempts: 2, InitialDelay: 10 * time.Millisecond, MaxDelay: 100 * time.Millisecond, Multiplier: 2.0}
	retryErr := ai.NewTransientErrorWithRetry("rate limited", 429, 50*time.Millisecond, nil)

	var callTimes []time.Time
	_, err := Do(context.Background(), cfg, func() (string, error) {
		callTimes = append(callTimes, time.Now())
		if len(callTimes) < 2 {
			return "", retryErr
		}
		return "success", nil
	})

	require.NoError(t, err)
	require.Len(t, callTimes, 2)
	assert.GreaterOrEqual(t, callTimes[1].Sub(callTimes[0]), 45*time.Millisecond)
}

func TestEffectiveDelay(t *testing.T) {
	tests := []struct {
		name       string
		configured time.Duration
		retryAfter time.Duration
		want       time.Duration
	}{
		{"retry-after larger", 100 * time.Millisecond, 500 * time.Millisecond, 500 * time.Millisecond},
		{"configured larger", 500 * time.Millisecond, 100 * time.Millisecond, 500 * time.Millisecond},
		{"no retry-after", 100 * time.Millisecond, 0, 100 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ai.NewTransientErrorWithRetry("test", 429, tt.retryAfter, nil)
			assert.Equal(t, tt.want, effectiveDelay(tt.configured, err))
		})
	}

	assert.Equal(t, time.Second, effectiveDelay(time.Second, errors.New("plain")))
}

func TestDoWithEvents(t *testing.T) {
	events := make(chan Event, 20)
	calls := 0

	result, err := DoWithEvents(context.Background(), fastConfig(3), events, func() (string, error) {
		calls++
		if calls < 2 {
			return "", &mockTransientError{msg: "timeout"}
		}
		return "ok", nil
	})
	close(events)

	require.NoError(t, err)
	assert.Equal(t, "ok", result)

	var types []EventType
	for e := range events {
		assert.False(t, e.Timestamp.IsZero())
		types = append(types, e.Type)
	}
	assert.Equal(t, []EventType{
		EventAttemptStart, EventAttemptFailed, EventRetrying,
		EventAttemptStart, EventSuccess,
	}, types)
}

func TestDoWithEventsExhausted(t *testing.T) {
	events := make(chan Event, 20)

	_, err := DoWithEvents(context.Background(), fastConfig(2), events, func() (string, error) {
		return "", &mockTransientError{msg: "timeout"}
	})
	close(events)
	require.Error(t, err)

	var last Event
	for e := range events {
		last = e
	}
	assert.Equal(t, EventExhausted, last.Type)
	assert.Equal(t, 2, last.Attempt)
	assert.Error(t, last.Error)
}

func TestDoWithEventsDoesNotBlockOnFullChannel(t *testing.T) {
	events := make(chan Event)

	result, err := DoWithEvents(context.Background(), fastConfig(1), events, func() (int, error) {
		return 7, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 7, result)
}
