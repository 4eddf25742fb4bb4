package analyses

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"secretary-backend/internal/ledger"
	"secretary-backend/internal/llm"
	"secretary-backend/internal/prompt"
	"secretary-backend/internal/tasks"
)

type scriptedInvoker struct {
	calls    []string
	failures int
	usage    llm.TokenUsage
}

func (s *scriptedInvoker) Attempt(ctx context.Context, model string, req prompt.Request) (json.RawMessage, llm.TokenUsage, error) {
	s.calls = append(s.calls, model)
	if len(s.calls) <= s.failures {
		return nil, llm.TokenUsage{}, errors.New("overloaded: " + model)
	}
	return json.RawMessage(`{"time":"10:00"}`), s.usage, nil
}

func testLedger(t *testing.T) *ledger.Service {
	t.Helper()
	return ledger.NewService(ledger.NewFileStore(filepath.Join(t.TempDir(), "usage.json")))
}

func TestAnalyzeFallsThroughToLaterModel(t *testing.T) {
	inv := &scriptedInvoker{
		failures: 2,
		usage:    llm.TokenUsage{InputTokens: 100, OutputTokens: 20, TotalTokens: 120},
	}
	usage := testLedger(t)
	svc := NewService(inv, []string{"first", "second", "third"}, usage)

	out := svc.Analyze(context.Background(), prompt.Request{Task: tasks.TypeMemo})

	if len(inv.calls) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(inv.calls))
	}
	if out.Meta == nil || out.Meta.Model != "third" {
		t.Fatalf("expected third model to win, got %+v", out.Meta)
	}
	if out.Meta.TotalTokens != 120 {
		t.Fatalf("unexpected token meta: %+v", out.Meta)
	}
	if msg, failed := tasks.ErrorMessage(out.Result); failed {
		t.Fatalf("unexpected error result: %s", msg)
	}

	l, err := usage.Today(context.Background())
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if l.Stats["third"].Count != 1 || l.Stats["third"].TotalTokens != 120 {
		t.Fatalf("winning model not recorded: %+v", l.Stats)
	}
	if len(l.Stats) != 1 {
		t.Fatalf("failed attempts must not be recorded: %+v", l.Stats)
	}
}

func TestAnalyzeExhaustionReturnsErrorResult(t *testing.T) {
	inv := &scriptedInvoker{failures: 2}
	svc := NewService(inv, []string{"first", "second"}, testLedger(t))

	out := svc.Analyze(context.Background(), prompt.Request{Task: tasks.TypeMemo})

	if len(inv.calls) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(inv.calls))
	}
	if out.Meta != nil {
		t.Fatalf("failed outcome must not carry meta: %+v", out.Meta)
	}
	msg, failed := tasks.ErrorMessage(out.Result)
	if !failed {
		t.Fatalf("expected error result, got %s", out.Result)
	}
	if !strings.Contains(msg, "overloaded: second") {
		t.Fatalf("error should embed the last failure, got %q", msg)
	}
}

func TestAnalyzeWithNoModelsConfigured(t *testing.T) {
	inv := &scriptedInvoker{}
	svc := NewService(inv, nil, testLedger(t))

	out := svc.Analyze(context.Background(), prompt.Request{Task: tasks.TypeMemo})
	if len(inv.calls) != 0 {
		t.Fatalf("expected no attempts, got %d", len(inv.calls))
	}
	if _, failed := tasks.ErrorMessage(out.Result); !failed {
		t.Fatal("expected error result")
	}
}

func TestAnalyzeSurvivesLedgerFailure(t *testing.T) {
	inv := &scriptedInvoker{usage: llm.TokenUsage{TotalTokens: 10}}
	// Point the store at a directory that cannot be written.
	usage := ledger.NewService(ledger.NewFileStore(filepath.Join(t.TempDir(), "missing", "deep", "usage.json")))
	svc := NewService(inv, []string{"only"}, usage)

	out := svc.Analyze(context.Background(), prompt.Request{Task: tasks.TypeMemo})
	if out.Meta == nil || out.Meta.Model != "only" {
		t.Fatalf("ledger failure must not fail the analysis: %+v", out.Meta)
	}
}
