package ledger

import (
	"context"
	"time"

	"secretary-backend/internal/shared/telemetry"
)

// ModelStats accumulates one model's calls for the current day.
type ModelStats struct {
	Count       int `json:"count"`
	TotalTokens int `json:"total_tokens"`
}

// Ledger is the day-scoped usage snapshot persisted between requests.
type Ledger struct {
	Date  string                `json:"date"`
	Stats map[string]ModelStats `json:"stats"`
}

// Store persists the ledger wholesale. Implementations decide the
// concurrency policy (file lock, transaction).
type Store interface {
	Load(ctx context.Context) (Ledger, error)
	Save(ctx context.Context, l Ledger) error
}

// Service applies the day-rollover and accumulation rules on top of a Store.
type Service struct {
	store Store
	// Now is injectable for rollover tests; defaults to time.Now.
	Now func() time.Time
}

// NewService constructs a ledger service over the given store.
func NewService(store Store) *Service {
	return &Service{store: store, Now: time.Now}
}

func (s *Service) today() string {
	return s.Now().Format("2006-01-02")
}

// Today returns the current day's ledger. A stale or unreadable stored
// ledger counts as no usage yet today.
func (s *Service) Today(ctx context.Context) (Ledger, error) {
	if err := ctx.Err(); err != nil {
		return Ledger{}, err
	}
	today := s.today()
	fresh := Ledger{Date: today, Stats: map[string]ModelStats{}}

	stored, err := s.store.Load(ctx)
	if err != nil {
		telemetry.Error("ledger.load_failed", map[string]any{"error": err.Error()})
		return fresh, nil
	}
	if stored.Date != today || stored.Stats == nil {
		return fresh, nil
	}
	return stored, nil
}

// Record increments the given model's count and token total for today and
// persists the full ledger back.
func (s *Service) Record(ctx context.Context, model string, inputTokens, outputTokens int) error {
	current, err := s.Today(ctx)
	if err != nil {
		return err
	}
	stats := current.Stats[model]
	stats.Count++
	stats.TotalTokens += inputTokens + outputTokens
	current.Stats[model] = stats
	return s.store.Save(ctx, current)
}
