package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	ai "github.com/spetersoncode/flowgate"
	"github.com/spetersoncode/flowgate/augment"
	"github.com/spetersoncode/flowgate/calendar"
	"github.com/spetersoncode/flowgate/mcp"
	"github.com/spetersoncode/flowgate/model"
	"github.com/spetersoncode/flowgate/tool"
	"github.com/spetersoncode/flowgate/workflow"
)

// version is reported to MCP clients.
const version = "0.1.0"

func askCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a question with a plain completion",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asst, err := a.assistant(cmd)
			if err != nil {
				return err
			}
			answer, err := asst.Ask(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), answer)
			return err
		},
	}
}

func extractCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "extract [text]",
		Short: "Extract a calendar event as structured output",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asst, err := a.assistant(cmd)
			if err != nil {
				return err
			}
			ev, err := asst.ExtractEvent(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), ev)
		},
	}
}

func weatherCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "weather [question]",
		Short: "Answer a weather question using the get_weather tool",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asst, err := a.assistant(cmd)
			if err != nil {
				return err
			}
			resp, err := asst.Weather(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func kbCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "kb [question]",
		Short: "Answer from the knowledge base using the search_kb tool",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asst, err := a.assistant(cmd)
			if err != nil {
				return err
			}
			resp, err := asst.AskKnowledgeBase(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func processCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "process [request]",
		Short: "Run the calendar chain: extract, gate, details, confirm",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			p := calendar.NewProcessor(c, a.calendarOptions()...)
			res, err := p.Process(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			a.logUsage(res.RunID, res.Usage)
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func validateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [request]",
		Short: "Run the calendar and security checks in parallel",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			v := calendar.NewValidator(c, a.calendarOptions()...)
			res, err := v.ValidateRequest(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			a.logUsage(res.RunID, res.Usage)
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func mcpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve get_weather, search_kb and validate_request over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			kb, err := a.knowledgeBase()
			if err != nil {
				return err
			}
			registry := tool.NewRegistry().Add(
				tool.NewWeatherTool(),
				tool.NewKnowledgeBaseTool(kb),
				calendar.NewValidateTool(calendar.NewValidator(c, a.calendarOptions()...)),
			)
			return mcp.ServeStdio(registry, mcp.WithName("flowgate"), mcp.WithVersion(version))
		},
	}
}

func (a *app) assistant(cmd *cobra.Command) (*augment.Assistant, error) {
	c, err := a.client(cmd.Context())
	if err != nil {
		return nil, err
	}
	kb, err := a.knowledgeBase()
	if err != nil {
		return nil, err
	}
	return augment.New(c,
		augment.WithKnowledgeBase(kb),
		augment.WithMaxToolIterations(a.cfg.MaxToolIterations),
	), nil
}

func (a *app) knowledgeBase() (*tool.KnowledgeBase, error) {
	if a.cfg.KnowledgeBasePath == "" {
		return tool.DefaultKnowledgeBase(), nil
	}
	return tool.LoadKnowledgeBase(a.cfg.KnowledgeBasePath)
}

func (a *app) calendarOptions() []calendar.Option {
	return []calendar.Option{
		calendar.WithThreshold(a.cfg.ConfidenceThreshold),
		calendar.WithSignature(a.cfg.Signature),
		calendar.WithWorkflowOptions(a.workflowOptions()...),
	}
}

func (a *app) workflowOptions() []workflow.Option {
	return []workflow.Option{
		workflow.WithStepTimeout(a.cfg.StepTimeout),
		workflow.WithTimeout(a.cfg.Timeout),
	}
}

// logUsage records a run's token usage, with a cost estimate when the
// model's price is known.
func (a *app) logUsage(runID string, usage ai.Usage) {
	attrs := []any{"run_id", runID, "input_tokens", usage.InputTokens, "output_tokens", usage.OutputTokens}

	provider, _ := ai.ParseProvider(a.cfg.Provider)
	m, ok := model.Lookup(a.cfg.ClientConfig().Model)
	if !ok && a.cfg.ClientConfig().Model == "" {
		m, ok = model.Default(provider)
	}
	if ok {
		attrs = append(attrs, "model", m.ID, "cost_usd", fmt.Sprintf("%.6f", m.Cost(usage)))
	}
	slog.Info("usage", attrs...)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
