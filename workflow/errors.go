package workflow

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

var (
	// ErrNoBranches is returned when a parallel block has nothing to run.
	ErrNoBranches = errors.New("workflow: parallel block has no branches")

	// ErrDuplicateBranch is returned when two branches of a parallel block
	// share a name. Results are keyed by branch name.
	ErrDuplicateBranch = errors.New("workflow: duplicate branch name")

	// ErrBranchIncomplete marks a branch that had not finished when the
	// join deadline passed.
	ErrBranchIncomplete = errors.New("workflow: branch did not complete before the deadline")

	// ErrEmptyPrompt is returned when a prompt step builds no messages.
	ErrEmptyPrompt = errors.New("workflow: prompt produced no messages")
)

// StepError wraps errors from step execution.
type StepError struct {
	StepName string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("workflow: step %q failed: %v", e.StepName, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// ToolLoopExceededError is returned when a step keeps requesting tools
// past its iteration bound.
type ToolLoopExceededError struct {
	StepName      string
	MaxIterations int
}

func (e *ToolLoopExceededError) Error() string {
	return fmt.Sprintf("workflow: step %q exceeded %d tool iterations", e.StepName, e.MaxIterations)
}

// ParallelError collects the failures of branches that had no fail-closed
// default.
type ParallelError struct {
	Errors map[string]error
}

func (e *ParallelError) Error() string {
	if len(e.Errors) == 0 {
		return "workflow: parallel execution failed"
	}
	names := e.branches()
	if len(names) == 1 {
		return fmt.Sprintf("workflow: parallel branch %q failed: %v", names[0], e.Errors[names[0]])
	}
	return fmt.Sprintf("workflow: parallel execution failed with %d errors in branches: %s",
		len(names), strings.Join(names, ", "))
}

// Unwrap exposes every branch error to errors.Is and errors.As.
func (e *ParallelError) Unwrap() []error {
	return lo.Map(e.branches(), func(name string, _ int) error { return e.Errors[name] })
}

func (e *ParallelError) branches() []string {
	names := lo.Keys(e.Errors)
	slices.Sort(names)
	return names
}
