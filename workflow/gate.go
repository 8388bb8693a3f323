package workflow

import "fmt"

// GateResult is the decision of a gate.
type GateResult struct {
	Passed bool
	Reason string
}

// Pass returns a passing result.
func Pass(reason string) GateResult {
	return GateResult{Passed: true, Reason: reason}
}

// Halt returns a halting result.
func Halt(reason string) GateResult {
	return GateResult{Reason: reason}
}

// GateFunc decides whether a value lets the run continue. It must be pure:
// no model calls and no side effects.
type GateFunc[T any] func(v T) GateResult

// Gate is a named predicate evaluated on a step's output.
type Gate[T any] struct {
	name string
	fn   GateFunc[T]
}

// NewGate creates a gate.
func NewGate[T any](name string, fn GateFunc[T]) Gate[T] {
	return Gate[T]{name: name, fn: fn}
}

// Name returns the gate name.
func (g Gate[T]) Name() string { return g.name }

// Evaluate applies the gate to v.
func (g Gate[T]) Evaluate(v T) GateResult {
	return g.fn(v)
}

// Threshold creates a gate that passes iff flag(v) is true and score(v) is
// strictly greater than threshold. The threshold is fixed here, at
// definition time.
//
//	gate := workflow.Threshold("calendar_event",
//	    func(e EventExtraction) bool { return e.IsCalendarEvent },
//	    func(e EventExtraction) float64 { return e.ConfidenceScore },
//	    0.7)
func Threshold[T any](name string, flag func(T) bool, score func(T) float64, threshold float64) Gate[T] {
	return NewGate(name, func(v T) GateResult {
		s := score(v)
		switch {
		case !flag(v):
			return Halt(fmt.Sprintf("%s: condition not met (score %.2f)", name, s))
		case s <= threshold:
			return Halt(fmt.Sprintf("%s: score %.2f does not exceed threshold %.2f", name, s, threshold))
		default:
			return Pass(fmt.Sprintf("%s: score %.2f exceeds threshold %.2f", name, s, threshold))
		}
	})
}
