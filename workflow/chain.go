package workflow

import (
	"context"
	"errors"
	"time"

	ai "github.com/spetersoncode/flowgate"
	"github.com/spetersoncode/flowgate/event"
)

// Status is the terminal state of a chain run.
type Status string

const (
	// StatusDone means every step ran and every gate passed.
	StatusDone Status = "done"

	// StatusHalted means a gate failed, or the provider rejected a step.
	// Halting is a designed outcome, not an error.
	StatusHalted Status = "halted"

	// StatusFailed means a step returned an error.
	StatusFailed Status = "failed"
)

// Outcome is the result of running a chain.
type Outcome[Out any] struct {
	RunID  string
	Status Status

	// Output is set when Status is StatusDone.
	Output Out

	// HaltedAt names the gate or step that stopped the run.
	HaltedAt string

	// Reason is the gate reason or the rejection message for a halted run.
	Reason string

	// Rejected reports that the halt came from a provider rejection.
	Rejected bool

	// Err is set when Status is StatusFailed.
	Err error

	// Steps lists the steps that ran, in order.
	Steps []string

	Usage ai.Usage
}

// Done reports whether the chain produced its final output.
func (o *Outcome[Out]) Done() bool { return o.Status == StatusDone }

// Halted reports whether the chain stopped early without error.
func (o *Outcome[Out]) Halted() bool { return o.Status == StatusHalted }

// link is one type-erased step of a chain with the gates that follow it.
type link struct {
	name  string
	run   func(ctx context.Context, in any) (any, error)
	gates []gateLink
}

type gateLink struct {
	name string
	eval func(v any) GateResult
}

// Chain sequences steps, threading each output into the next step and
// evaluating gates between them.
//
// Build chains with NewChain and Then; attach gates with Gate:
//
//	chain := workflow.Then(
//	    workflow.NewChain(extract).Gate(isEvent),
//	    details,
//	)
//	outcome, err := chain.Run(ctx, text)
type Chain[In, Out any] struct {
	name  string
	links []link
}

// NewChain starts a chain with its first step.
func NewChain[In, Out any](name string, first Step[In, Out]) *Chain[In, Out] {
	return &Chain[In, Out]{name: name, links: []link{erase(first)}}
}

// Then appends a step whose input is the chain's current output.
func Then[In, Mid, Out any](c *Chain[In, Mid], next Step[Mid, Out]) *Chain[In, Out] {
	links := append(append([]link(nil), c.links...), erase(next))
	return &Chain[In, Out]{name: c.name, links: links}
}

// Gate attaches a gate to the chain's current last step.
func (c *Chain[In, Out]) Gate(g Gate[Out]) *Chain[In, Out] {
	links := append([]link(nil), c.links...)
	last := &links[len(links)-1]
	last.gates = append(append([]gateLink(nil), last.gates...), gateLink{
		name: g.Name(),
		eval: func(v any) GateResult {
			out, _ := v.(Out)
			return g.Evaluate(out)
		},
	})
	return &Chain[In, Out]{name: c.name, links: links}
}

// Name returns the chain name.
func (c *Chain[In, Out]) Name() string { return c.name }

func erase[In, Out any](s Step[In, Out]) link {
	return link{
		name: s.Name(),
		run: func(ctx context.Context, in any) (any, error) {
			typed, _ := in.(In)
			return s.Run(ctx, typed)
		},
	}
}

// Run executes the chain.
//
// A failing gate or a provider rejection halts the run: the outcome has
// StatusHalted and no later step is invoked. A step error yields an outcome
// with StatusFailed, and the same error is returned.
func (c *Chain[In, Out]) Run(ctx context.Context, in In, opts ...Option) (*Outcome[Out], error) {
	options := ApplyOptions(opts...)
	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	ctx, run := ensureRun(ctx, options)
	log := run.Logger().With("chain", c.name)
	outcome := &Outcome[Out]{RunID: run.ID()}
	finish := func(status Status) *Outcome[Out] {
		outcome.Status = status
		outcome.Usage = run.Usage()
		return outcome
	}

	run.emit(event.Event{Type: event.RunStart, StepName: c.name})

	var current any = in
	for _, l := range c.links {
		out, err := c.runLink(ctx, run, l, current, options)
		outcome.Steps = append(outcome.Steps, l.name)

		if err != nil {
			var rejection *ai.Error
			if ai.IsRejected(err) && errors.As(err, &rejection) {
				log.Warn("chain halted by provider rejection", "step", l.name, "reason", rejection.Msg)
				outcome.HaltedAt = l.name
				outcome.Reason = rejection.Msg
				outcome.Rejected = true
				run.emit(event.Event{Type: event.RunEnd, StepName: c.name, Message: outcome.Reason})
				return finish(StatusHalted), nil
			}

			log.Error("chain step failed", "step", l.name, "error", err)
			outcome.Err = err
			run.emit(event.Event{Type: event.RunError, StepName: l.name, Error: err})
			return finish(StatusFailed), err
		}
		current = out

		for _, g := range l.gates {
			result := g.eval(current)
			if !result.Passed {
				log.Warn("gate halted chain", "gate", g.name, "reason", result.Reason)
				run.emit(event.Event{Type: event.GateHalted, StepName: g.name, Message: result.Reason})
				outcome.HaltedAt = g.name
				outcome.Reason = result.Reason
				run.emit(event.Event{Type: event.RunEnd, StepName: c.name, Message: result.Reason})
				return finish(StatusHalted), nil
			}
			log.Info("gate passed", "gate", g.name, "reason", result.Reason)
			run.emit(event.Event{Type: event.GatePassed, StepName: g.name, Message: result.Reason})
		}
	}

	outcome.Output, _ = current.(Out)
	finish(StatusDone)
	run.emit(event.Event{Type: event.RunEnd, StepName: c.name, Usage: &outcome.Usage})
	return outcome, nil
}

func (c *Chain[In, Out]) runLink(ctx context.Context, run *Run, l link, in any, options *Options) (any, error) {
	if options.StepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.StepTimeout)
		defer cancel()
	}

	start := time.Now()
	run.Logger().Info("step started", "chain", c.name, "step", l.name)
	run.emit(event.Event{Type: event.StepStart, StepName: l.name})

	out, err := l.run(ctx, in)
	if err != nil {
		return nil, err
	}

	run.Logger().Info("step completed", "chain", c.name, "step", l.name, "duration", time.Since(start))
	run.emit(event.Event{Type: event.StepEnd, StepName: l.name})
	return out, nil
}
