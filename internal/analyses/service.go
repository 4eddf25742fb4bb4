package analyses

import (
	"context"
	"encoding/json"
	"fmt"

	"secretary-backend/internal/ledger"
	"secretary-backend/internal/llm"
	"secretary-backend/internal/prompt"
	"secretary-backend/internal/shared/telemetry"
	"secretary-backend/internal/tasks"
)

// Meta is the non-schema invocation metadata attached to a successful
// result. It lives beside the result, never inside it, so downstream
// renderers and the sheet publisher see pure task data.
type Meta struct {
	Model        string `json:"model"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	TotalTokens  int    `json:"total_tokens"`
}

// Outcome is the analysis response: either a task-shaped result with meta,
// or an {error} object with no meta.
type Outcome struct {
	Result json.RawMessage `json:"result"`
	Meta   *Meta           `json:"meta,omitempty"`
}

// Service runs the model fallback chain. Candidates are tried strictly in
// order, one attempt each, and the first success wins.
type Service struct {
	Invoker llm.Invoker
	Models  []string
	Ledger  *ledger.Service
}

// NewService constructs an analysis service.
func NewService(invoker llm.Invoker, models []string, usage *ledger.Service) *Service {
	return &Service{Invoker: invoker, Models: models, Ledger: usage}
}

// Analyze folds the assembled request over the candidate list. On success
// the winning model's usage is recorded before the result is returned; when
// every candidate fails the outcome carries an error object embedding the
// last failure.
func (s *Service) Analyze(ctx context.Context, req prompt.Request) Outcome {
	if len(s.Models) == 0 {
		return errorOutcome("no candidate models configured")
	}

	lastErr := ""
	for _, model := range s.Models {
		raw, usage, err := s.Invoker.Attempt(ctx, model, req)
		if err != nil {
			lastErr = err.Error()
			telemetry.Error("analysis.attempt_failed", map[string]any{
				"model": model,
				"task":  string(req.Task),
				"error": lastErr,
			})
			continue
		}

		if s.Ledger != nil {
			if err := s.Ledger.Record(ctx, model, usage.InputTokens, usage.OutputTokens); err != nil {
				telemetry.Error("ledger.record_failed", map[string]any{
					"model": model,
					"error": err.Error(),
				})
			}
		}

		telemetry.Info("analysis.complete", map[string]any{
			"model":        model,
			"task":         string(req.Task),
			"total_tokens": usage.TotalTokens,
		})
		return Outcome{
			Result: raw,
			Meta: &Meta{
				Model:        model,
				InputTokens:  usage.InputTokens,
				OutputTokens: usage.OutputTokens,
				TotalTokens:  usage.TotalTokens,
			},
		}
	}

	return errorOutcome(fmt.Sprintf("all models failed; last error: %s", lastErr))
}

func errorOutcome(msg string) Outcome {
	raw, err := json.Marshal(tasks.ErrorResult{Error: msg})
	if err != nil {
		raw = json.RawMessage(`{"error":"analysis failed"}`)
	}
	return Outcome{Result: raw}
}
