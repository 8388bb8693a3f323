package calendar

import (
	"context"

	"github.com/spetersoncode/flowgate/tool"
)

// Tool names used when the calendar workflows are exposed as tools.
const (
	ValidateToolName = "validate_request"
	ProcessToolName  = "process_event"
)

// RequestArgs are the arguments of the calendar tools.
type RequestArgs struct {
	Request string `json:"request" jsonschema:"description=The user's natural language request"`
}

// NewValidateTool exposes v as a tool returning the Validation as JSON.
func NewValidateTool(v *Validator) tool.Registration {
	return tool.Func(ValidateToolName,
		"Check that a request is a safe calendar event request before acting on it.",
		func(ctx context.Context, args RequestArgs) (*Validation, error) {
			return v.ValidateRequest(ctx, args.Request)
		})
}

// NewProcessTool exposes p as a tool returning the Result as JSON.
func NewProcessTool(p *Processor) tool.Registration {
	return tool.Func(ProcessToolName,
		"Turn a natural language calendar request into event details and a confirmation.",
		func(ctx context.Context, args RequestArgs) (*Result, error) {
			return p.Process(ctx, args.Request)
		})
}
