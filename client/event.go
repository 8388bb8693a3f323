package client

import (
	"time"

	ai "github.com/spetersoncode/flowgate"
	"github.com/spetersoncode/flowgate/retry"
)

// EventType identifies the kind of event occurring during a request.
type EventType string

const (
	// EventRequestStart fires before a provider request begins.
	EventRequestStart EventType = "request_start"

	// EventRequestComplete fires after a provider request succeeds.
	EventRequestComplete EventType = "request_complete"

	// EventRequestError fires when a provider request fails.
	EventRequestError EventType = "request_error"

	// EventRetry fires for each retry event (forwarded from the retry package).
	EventRetry EventType = "retry"
)

// Event represents an observable occurrence during client operations.
type Event struct {
	Type EventType

	// Provider is the configured provider, empty for wrapped providers.
	Provider ai.Provider

	// Duration is the elapsed time for finished requests.
	Duration time.Duration

	// Usage is set on EventRequestComplete.
	Usage *ai.Usage

	// Error is set on EventRequestError.
	Error error

	// RetryEvent is set on EventRetry.
	RetryEvent *retry.Event

	Timestamp time.Time
}

// emit sends an event with timestamp to the channel without blocking.
func emit(ch chan<- Event, event Event) {
	if ch == nil {
		return
	}
	event.Timestamp = time.Now()
	select {
	case ch <- event:
	default:
		// Channel full - don't block
	}
}
