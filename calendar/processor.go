package calendar

import (
	"context"
	"encoding/json"
	"fmt"

	ai "github.com/spetersoncode/flowgate"
	"github.com/spetersoncode/flowgate/client"
	"github.com/spetersoncode/flowgate/schema"
	"github.com/spetersoncode/flowgate/workflow"
)

// NotCalendarEventMessage is the terminal value of a request that fails the
// calendar gate.
const NotCalendarEventMessage = "This doesn't appear to be a calendar event request."

// Status is the outcome of processing a request.
type Status string

const (
	StatusConfirmed        Status = "confirmed"
	StatusNotCalendarEvent Status = "not_calendar_event"
	StatusRejected         Status = "rejected"
)

// Result is the outcome of Processor.Process.
type Result struct {
	Status Status `json:"status"`

	// Message is the confirmation text, NotCalendarEventMessage, or the
	// provider's rejection reason.
	Message string `json:"message"`

	// Reason is the gate reason for a halted request.
	Reason string `json:"reason,omitempty"`

	// Extraction is set when the gate halted the request.
	Extraction *EventExtraction `json:"extraction,omitempty"`

	Details      *EventDetails      `json:"details,omitempty"`
	Confirmation *EventConfirmation `json:"confirmation,omitempty"`

	RunID string   `json:"run_id"`
	Usage ai.Usage `json:"usage"`
}

// Processed pairs the parsed event with its confirmation.
type Processed struct {
	Details      EventDetails
	Confirmation EventConfirmation
}

// Processor handles calendar requests with a gated prompt chain:
//
//	extract -> gate(calendar_event) -> details -> confirm
type Processor struct {
	chain *workflow.Chain[string, Processed]
	cfg   config
}

// NewProcessor builds the chain. The confidence threshold and signature are
// fixed here.
func NewProcessor(c *client.Client, opts ...Option) *Processor {
	cfg := applyOptions(opts)

	extract := workflow.NewPromptStep[string, EventExtraction]("extract", c,
		func(input string) []ai.Message {
			return []ai.Message{
				ai.SystemMessage(dateContext(cfg.now()) + " Analyze if the text describes a calendar event."),
				ai.UserMessage(input),
			}
		},
		workflow.WithSchema(ExtractionSchema))

	details := workflow.NewPromptStep[string, EventDetails]("details", c,
		func(description string) []ai.Message {
			return []ai.Message{
				ai.SystemMessage(dateContext(cfg.now()) + " Extract detailed event information. " +
					"When dates reference 'next Tuesday' or similar relative dates, use this current date as reference."),
				ai.UserMessage(description),
			}
		},
		workflow.WithSchema(DetailsSchema))

	confirm := workflow.NewPromptStep[EventDetails, EventConfirmation]("confirm", c,
		func(d EventDetails) []ai.Message {
			payload, _ := json.Marshal(d)
			return []ai.Message{
				ai.SystemMessage("Generate a natural confirmation message for the event. Sign off with your name; " + cfg.signature),
				ai.UserMessage(string(payload)),
			}
		},
		workflow.WithSchema(ConfirmationSchema))

	isEvent := workflow.Threshold("calendar_event",
		func(e EventExtraction) bool { return e.IsCalendarEvent },
		func(e EventExtraction) float64 { return e.ConfidenceScore },
		cfg.threshold)

	chain := workflow.Then(
		workflow.Then(
			workflow.Then(
				workflow.NewChain("calendar_request", extract).Gate(isEvent),
				workflow.Map("description", func(e EventExtraction) string { return e.Description }),
			),
			details,
		),
		withConfirmation(confirm),
	)

	return &Processor{chain: chain, cfg: cfg}
}

// withConfirmation keeps the parsed details next to the confirmation.
func withConfirmation(confirm workflow.Step[EventDetails, EventConfirmation]) workflow.Step[EventDetails, Processed] {
	return workflow.NewFuncStep(confirm.Name(), func(ctx context.Context, d EventDetails) (Processed, error) {
		c, err := confirm.Run(ctx, d)
		if err != nil {
			return Processed{}, err
		}
		return Processed{Details: d, Confirmation: c}, nil
	})
}

// Process runs the chain on input.
//
// A request that is not confidently a calendar event returns
// StatusNotCalendarEvent, and a provider rejection returns StatusRejected.
// Neither is an error. Other step failures return the error.
func (p *Processor) Process(ctx context.Context, input string) (*Result, error) {
	log := p.cfg.logger
	log.Info("processing calendar request")

	run := workflow.NewRun(p.cfg.runOptions()...)
	outcome, err := p.chain.Run(workflow.WithRun(ctx, run), input, p.cfg.runOptions()...)
	if err != nil {
		return nil, fmt.Errorf("calendar: process request: %w", err)
	}

	result := &Result{RunID: outcome.RunID, Usage: outcome.Usage}
	switch {
	case outcome.Done():
		result.Status = StatusConfirmed
		result.Details = &outcome.Output.Details
		result.Confirmation = &outcome.Output.Confirmation
		result.Message = outcome.Output.Confirmation.ConfirmationMessage
		log.Info("calendar request processing completed",
			"event", result.Details.Name,
			"date", result.Details.Date,
			"duration_minutes", result.Details.DurationMinutes,
		)

	case outcome.Rejected:
		result.Status = StatusRejected
		result.Message = outcome.Reason
		result.Reason = outcome.Reason
		log.Warn("calendar request rejected by provider", "step", outcome.HaltedAt, "reason", outcome.Reason)

	default:
		result.Status = StatusNotCalendarEvent
		result.Message = NotCalendarEventMessage
		result.Reason = outcome.Reason
		result.Extraction = lastExtraction(run)
		log.Warn("gate check failed", "reason", outcome.Reason)
	}
	return result, nil
}

// lastExtraction recovers the extract step's output from the transcript.
func lastExtraction(run *workflow.Run) *EventExtraction {
	step, payload, ok := run.LastResult()
	if !ok || step != "extract" {
		return nil
	}
	e, err := schema.Decode[EventExtraction](ExtractionSchema, payload)
	if err != nil {
		return nil
	}
	return &e
}
