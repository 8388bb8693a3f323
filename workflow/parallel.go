package workflow

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	ai "github.com/spetersoncode/flowgate"
	"github.com/spetersoncode/flowgate/event"
)

// Branch is one independent step of a parallel block.
type Branch[In any] struct {
	name       string
	run        func(ctx context.Context, in In) (any, error)
	failClosed func(error) any
}

// NewBranch wraps a step as a parallel branch.
//
// failClosed produces the restrictive value used in place of the branch's
// output when it fails, is rejected by the provider or misses the join
// deadline. With a nil failClosed a failure fails the whole block.
func NewBranch[In, Out any](step Step[In, Out], failClosed func(err error) Out) Branch[In] {
	b := Branch[In]{
		name: step.Name(),
		run: func(ctx context.Context, in In) (any, error) {
			return step.Run(ctx, in)
		},
	}
	if failClosed != nil {
		b.failClosed = func(err error) any { return failClosed(err) }
	}
	return b
}

// Name returns the branch name.
func (b Branch[In]) Name() string { return b.name }

// Results holds the output of every branch after the join. It is read-only
// once the aggregate runs.
type Results struct {
	values    map[string]any
	defaulted map[string]error
}

func newResults() *Results {
	return &Results{values: make(map[string]any), defaulted: make(map[string]error)}
}

// ResultOf returns the typed output of the named branch. The value is the
// fail-closed default when the branch was defaulted.
func ResultOf[T any](r *Results, name string) (T, bool) {
	v, ok := r.values[name].(T)
	return v, ok
}

// Defaulted reports whether the branch output is its fail-closed default.
func (r *Results) Defaulted(name string) bool {
	_, ok := r.defaulted[name]
	return ok
}

// Cause returns the error that made a branch fall back to its default.
func (r *Results) Cause(name string) error {
	return r.defaulted[name]
}

// DefaultedNames returns the defaulted branches, sorted.
func (r *Results) DefaultedNames() []string {
	names := lo.Keys(r.defaulted)
	slices.Sort(names)
	return names
}

// Names returns every branch name, sorted.
func (r *Results) Names() []string {
	names := lo.Keys(r.values)
	slices.Sort(names)
	return names
}

// Require builds an aggregate gate over one branch's output. A missing or
// mistyped result halts.
func Require[T any](name, branch string, fn func(T) GateResult) Gate[*Results] {
	return NewGate(name, func(r *Results) GateResult {
		v, ok := ResultOf[T](r, branch)
		if !ok {
			return Halt(fmt.Sprintf("%s: no result from branch %q", name, branch))
		}
		return fn(v)
	})
}

// AllOf combines aggregate gates with AND. Reasons are sorted before they
// are joined, so the decision and its reason do not depend on gate or
// branch order.
func AllOf(name string, gates ...Gate[*Results]) Gate[*Results] {
	return NewGate(name, func(r *Results) GateResult {
		var passed, failed []string
		for _, g := range gates {
			res := g.Evaluate(r)
			if res.Passed {
				passed = append(passed, res.Reason)
			} else {
				failed = append(failed, res.Reason)
			}
		}
		if len(failed) > 0 {
			return Halt(joinReasons(failed))
		}
		return Pass(joinReasons(passed))
	})
}

func joinReasons(reasons []string) string {
	reasons = lo.Compact(reasons)
	slices.Sort(reasons)
	return strings.Join(reasons, "; ")
}

// ParallelOutcome is the result of a parallel block.
type ParallelOutcome struct {
	RunID   string
	Results *Results

	// Gate is the aggregate decision.
	Gate   GateResult
	Passed bool

	Usage    ai.Usage
	Duration time.Duration
}

// Parallel runs independent branches concurrently over the same input and
// combines their outputs with an aggregate gate.
//
//	validator := workflow.NewParallel("validate", workflow.AllOf("request", isCalendar, isSafe),
//	    workflow.NewBranch(calendarCheck, func(error) CalendarValidation { return CalendarValidation{} }),
//	    workflow.NewBranch(securityCheck, func(error) SecurityCheck { return SecurityCheck{} }),
//	)
type Parallel[In any] struct {
	name      string
	aggregate Gate[*Results]
	branches  []Branch[In]
}

// NewParallel creates a parallel block.
func NewParallel[In any](name string, aggregate Gate[*Results], branches ...Branch[In]) *Parallel[In] {
	return &Parallel[In]{name: name, aggregate: aggregate, branches: branches}
}

// Name returns the parallel block name.
func (p *Parallel[In]) Name() string { return p.name }

type branchResult struct {
	index int
	name  string
	value any
	err   error
	usage ai.Usage
}

// Run launches every branch, waits for all of them or the timeout and
// applies the aggregate gate.
//
// Each branch gets its own Run. A branch that fails, or has not finished
// when Options.Timeout elapses, is replaced by its fail-closed default.
// If a failing branch has no default, Run returns *ParallelError.
func (p *Parallel[In]) Run(ctx context.Context, in In, opts ...Option) (*ParallelOutcome, error) {
	if len(p.branches) == 0 {
		return nil, ErrNoBranches
	}
	if err := p.checkNames(); err != nil {
		return nil, err
	}
	options := ApplyOptions(opts...)
	start := time.Now()

	_, parent := ensureRun(ctx, options)
	log := parent.Logger().With("parallel", p.name)

	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}
	branchCtx, cancelBranches := context.WithCancel(ctx)
	defer cancelBranches()

	parent.emit(event.Event{Type: event.ParallelStart, StepName: p.name})
	log.Info("parallel branches started", "branches", len(p.branches))

	var sem chan struct{}
	if options.MaxConcurrency > 0 {
		sem = make(chan struct{}, options.MaxConcurrency)
	}

	// Buffered so branches finishing after the join never block.
	done := make(chan branchResult, len(p.branches))
	var once sync.Once
	for i, b := range p.branches {
		go func(i int, b Branch[In]) {
			res := p.runBranch(branchCtx, b, in, sem, options)
			res.index = i
			if res.err != nil && options.CancelOnError {
				once.Do(cancelBranches)
			}
			done <- res
		}(i, b)
	}

	collected := make([]*branchResult, len(p.branches))
	completed := 0
join:
	for completed < len(p.branches) {
		select {
		case res := <-done:
			collected[res.index] = &res
			completed++
		case <-ctx.Done():
			break join
		}
	}

	results := newResults()
	failures := make(map[string]error)
	var usage ai.Usage
	for i, b := range p.branches {
		res := branchResult{name: b.name}
		if collected[i] != nil {
			res = *collected[i]
		} else {
			res.err = fmt.Errorf("%w: %w", ErrBranchIncomplete, ctx.Err())
		}
		usage = usage.Add(res.usage)

		if res.err == nil {
			results.values[b.name] = res.value
			continue
		}
		if b.failClosed == nil {
			failures[b.name] = res.err
			continue
		}
		results.values[b.name] = b.failClosed(res.err)
		results.defaulted[b.name] = res.err
		log.Warn("branch failed closed", "branch", b.name, "error", res.err, "rejected", ai.IsRejected(res.err))
		parent.emit(event.Event{Type: event.BranchDefaulted, StepName: b.name, Error: res.err})
	}
	parent.AddUsage(usage)

	if len(failures) > 0 {
		err := &ParallelError{Errors: failures}
		log.Error("parallel block failed", "error", err)
		parent.emit(event.Event{Type: event.RunError, StepName: p.name, Error: err})
		return nil, err
	}

	decision := p.aggregate.Evaluate(results)
	outcome := &ParallelOutcome{
		RunID:    parent.ID(),
		Results:  results,
		Gate:     decision,
		Passed:   decision.Passed,
		Usage:    usage,
		Duration: time.Since(start),
	}

	log.Info("parallel branches joined",
		"completed", completed,
		"defaulted", results.DefaultedNames(),
		"duration", outcome.Duration,
	)
	if decision.Passed {
		log.Info("gate passed", "gate", p.aggregate.Name(), "reason", decision.Reason)
		parent.emit(event.Event{Type: event.GatePassed, StepName: p.aggregate.Name(), Message: decision.Reason})
	} else {
		log.Warn("gate halted", "gate", p.aggregate.Name(), "reason", decision.Reason)
		parent.emit(event.Event{Type: event.GateHalted, StepName: p.aggregate.Name(), Message: decision.Reason})
	}
	parent.emit(event.Event{Type: event.ParallelEnd, StepName: p.name, Usage: &outcome.Usage, Message: decision.Reason})
	return outcome, nil
}

// checkNames rejects blocks whose branches share a name.
func (p *Parallel[In]) checkNames() error {
	seen := make(map[string]struct{}, len(p.branches))
	for _, b := range p.branches {
		if _, dup := seen[b.name]; dup {
			return fmt.Errorf("%w: %q in parallel block %q", ErrDuplicateBranch, b.name, p.name)
		}
		seen[b.name] = struct{}{}
	}
	return nil
}

func (p *Parallel[In]) runBranch(ctx context.Context, b Branch[In], in In, sem chan struct{}, options *Options) (res branchResult) {
	res.name = b.name
	defer func() {
		if r := recover(); r != nil {
			res.err = fmt.Errorf("workflow: branch %q panicked: %v", b.name, r)
		}
	}()

	if sem != nil {
		select {
		case sem <- struct{}{}:
			defer func() { <-sem }()
		case <-ctx.Done():
			res.err = ctx.Err()
			return res
		}
	}

	if options.StepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.StepTimeout)
		defer cancel()
	}

	run := newRun(options)
	ctx = WithRun(ctx, run)
	run.emit(event.Event{Type: event.StepStart, StepName: b.name})

	res.value, res.err = b.run(ctx, in)
	res.usage = run.Usage()
	if res.err == nil {
		run.emit(event.Event{Type: event.StepEnd, StepName: b.name, Usage: &res.usage})
	} else if errors.Is(res.err, context.Canceled) && options.CancelOnError {
		run.Logger().Info("branch cancelled", "branch", b.name)
	}
	return res
}
