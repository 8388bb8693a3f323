package workflow

import (
	"context"
)

// Step is a single unit of work: a function from typed input to typed
// output. Steps are stateless and may be reused across runs.
type Step[In, Out any] interface {
	// Name returns a unique identifier for the step.
	Name() string

	// Run executes the step.
	Run(ctx context.Context, in In) (Out, error)
}

// StepFunc is a function signature for simple step implementations.
type StepFunc[In, Out any] func(ctx context.Context, in In) (Out, error)

// FuncStep wraps a function as a Step.
type FuncStep[In, Out any] struct {
	name string
	fn   StepFunc[In, Out]
}

// NewFuncStep creates a step from a function.
func NewFuncStep[In, Out any](name string, fn StepFunc[In, Out]) *FuncStep[In, Out] {
	return &FuncStep[In, Out]{name: name, fn: fn}
}

// Name returns the step name.
func (f *FuncStep[In, Out]) Name() string { return f.name }

// Run executes the function.
func (f *FuncStep[In, Out]) Run(ctx context.Context, in In) (Out, error) {
	return f.fn(ctx, in)
}

// Map creates a step that transforms its input without calling a model.
// Chains use it to reshape one step's output into the next step's input.
//
//	chain := workflow.Then(workflow.NewChain(extract),
//	    workflow.Map("description", func(e Extraction) string { return e.Description }))
func Map[In, Out any](name string, fn func(In) Out) *FuncStep[In, Out] {
	return NewFuncStep(name, func(_ context.Context, in In) (Out, error) {
		return fn(in), nil
	})
}
