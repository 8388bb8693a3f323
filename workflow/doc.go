// Package workflow composes completion calls into typed, gated and
// optionally parallel pipelines.
//
// The package provides four building blocks:
//   - Step: a function from typed input to typed output. PromptStep backs a
//     step with completion calls and runs the tool loop.
//   - Gate: a pure predicate on a step's output that lets the run continue
//     or halts it with a reason.
//   - Chain: sequential steps with gates between them.
//   - Parallel: independent branches over the same input, joined and
//     combined by an aggregate gate.
//
// # Chains
//
// A chain threads each step's output into the next step. Types are checked
// at compile time through Then:
//
//	extract := workflow.NewPromptStep[string, Extraction]("extract", c, extractPrompt,
//	    workflow.WithSchema(extractionSchema))
//	details := workflow.NewPromptStep[string, Details]("details", c, detailsPrompt,
//	    workflow.WithSchema(detailsSchema))
//
//	chain := workflow.Then(
//	    workflow.Then(
//	        workflow.NewChain("calendar", extract).Gate(isEvent),
//	        workflow.Map("description", func(e Extraction) string { return e.Description }),
//	    ),
//	    details,
//	)
//
//	outcome, err := chain.Run(ctx, input)
//	if outcome.Halted() {
//	    fmt.Println(outcome.Reason)
//	}
//
// A failing gate halts the chain: no later step runs and the outcome
// carries the gate reason. A provider rejection halts the same way, with
// Outcome.Rejected set. A halt is not an error.
//
// # Parallel blocks
//
// Each branch declares a fail-closed default. A branch that fails, is
// rejected or misses the join deadline contributes its default instead of
// its output, so the aggregate can only get more restrictive:
//
//	p := workflow.NewParallel("validate", workflow.AllOf("request", isCalendar, isSafe),
//	    workflow.NewBranch(calendarCheck, func(error) CalendarValidation { return CalendarValidation{} }),
//	    workflow.NewBranch(securityCheck, func(error) SecurityCheck { return SecurityCheck{} }),
//	)
//	outcome, err := p.Run(ctx, input, workflow.WithTimeout(30*time.Second))
//
// # Runs
//
// Every chain or parallel invocation owns a Run: an append-only message
// transcript, the last structured result and the tokens spent. Parallel
// branches each get their own Run, so branches share no mutable state.
//
// # Retry
//
// Nothing retries implicitly. Wrap a step with Retry to attempt transient
// failures again:
//
//	step := workflow.Retry(extract, retry.DefaultConfig())
package workflow
