package ledger

import (
	"context"
	"database/sql"
)

type pgStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed ledger store. One row per
// (day, model); Save replaces everything outside the saved day so the
// table mirrors the file store's wholesale-overwrite behavior.
func NewPGStore(db *sql.DB) Store {
	return &pgStore{DB: db}
}

func (s *pgStore) Load(ctx context.Context) (Ledger, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT day, model, invocations, total_tokens
FROM usage_ledger
WHERE day = (SELECT MAX(day) FROM usage_ledger)`)
	if err != nil {
		return Ledger{}, err
	}
	defer rows.Close()

	l := Ledger{Stats: map[string]ModelStats{}}
	for rows.Next() {
		var day, model string
		var count, tokens int
		if err := rows.Scan(&day, &model, &count, &tokens); err != nil {
			return Ledger{}, err
		}
		l.Date = day
		l.Stats[model] = ModelStats{Count: count, TotalTokens: tokens}
	}
	if err := rows.Err(); err != nil {
		return Ledger{}, err
	}
	return l, nil
}

func (s *pgStore) Save(ctx context.Context, l Ledger) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM usage_ledger WHERE day <> $1`, l.Date); err != nil {
		return err
	}
	for model, stats := range l.Stats {
		if _, err = tx.ExecContext(ctx, `
INSERT INTO usage_ledger (day, model, invocations, total_tokens)
VALUES ($1, $2, $3, $4)
ON CONFLICT (day, model)
DO UPDATE SET invocations = EXCLUDED.invocations, total_tokens = EXCLUDED.total_tokens`,
			l.Date, model, stats.Count, stats.TotalTokens); err != nil {
			return err
		}
	}
	err = tx.Commit()
	return err
}

var _ Store = (*pgStore)(nil)
