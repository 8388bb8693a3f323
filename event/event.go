// Package event defines the observability events emitted while a workflow
// runs. Events are delivered on a caller-supplied channel and never block
// the workflow: when the channel is full the event is dropped.
package event

import (
	"time"

	ai "github.com/spetersoncode/flowgate"
)

// Type identifies the kind of event.
type Type string

// Run lifecycle events
const (
	// RunStart fires when a chain or parallel run begins.
	RunStart Type = "run_start"

	// RunEnd fires when a run reaches a terminal state, including a gate halt.
	RunEnd Type = "run_end"

	// RunError fires when a run fails.
	RunError Type = "run_error"
)

// Step lifecycle events
const (
	// StepStart fires when a step begins.
	StepStart Type = "step_start"

	// StepEnd fires when a step produces its output.
	StepEnd Type = "step_end"

	// StepRetry fires before a failed step is attempted again.
	StepRetry Type = "step_retry"
)

// Gate events
const (
	// GatePassed fires when a gate lets the run continue.
	GatePassed Type = "gate_passed"

	// GateHalted fires when a gate stops the run.
	GateHalted Type = "gate_halted"
)

// Tool call events
const (
	// ToolCallStart fires before a requested tool executes.
	ToolCallStart Type = "tool_call_start"

	// ToolCallResult fires with the serialized tool result.
	ToolCallResult Type = "tool_call_result"
)

// Parallel events
const (
	// ParallelStart fires when branches are launched.
	ParallelStart Type = "parallel_start"

	// ParallelEnd fires after the join and aggregate decision.
	ParallelEnd Type = "parallel_end"

	// BranchDefaulted fires when a failed branch is replaced by its
	// fail-closed default.
	BranchDefaulted Type = "branch_defaulted"
)

// Event represents an observable occurrence during a workflow run.
type Event struct {
	// Type identifies the kind of event.
	Type Type

	// RunID identifies the run that emitted the event.
	RunID string

	// StepName names the step, gate, branch or orchestrator involved.
	StepName string

	// ToolCall is set for tool events.
	ToolCall *ai.ToolCall

	// ToolResult is set for ToolCallResult events.
	ToolResult *ai.ToolResult

	// Usage is set on StepEnd and RunEnd when tokens were spent.
	Usage *ai.Usage

	// Attempt is the 1-indexed attempt for StepRetry events.
	Attempt int

	// Error is set for RunError, BranchDefaulted and StepRetry events.
	Error error

	// Message carries a gate reason or other human-readable context.
	Message string

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// Emit sends an event with timestamp to the channel (non-blocking).
// A nil channel discards the event.
func Emit(ch chan<- Event, e Event) {
	if ch == nil {
		return
	}
	e.Timestamp = time.Now()
	select {
	case ch <- e:
	default:
		// Channel full - don't block
	}
}

// NewChannel creates a buffered event channel with standard capacity.
func NewChannel() chan Event {
	return make(chan Event, 100)
}
