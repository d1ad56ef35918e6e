package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"newsfax-factcheck/internal/domain"
	"newsfax-factcheck/internal/domain/model"
	"newsfax-factcheck/internal/domain/ports/repository"
)

var _ repository.FactCheckRepository = (*factCheckRepo)(nil)

type factCheckRepo struct {
	pool *pgxpool.Pool
}

func NewFactCheckRepo(pool *pgxpool.Pool) *factCheckRepo {
	return &factCheckRepo{pool: pool}
}

// EnsureSchema creates the fact_checks table when it does not exist yet.
// The service owns this single table, so startup DDL beats a migration tool.
func (r *factCheckRepo) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS fact_checks (
  url        text PRIMARY KEY,
  facts      jsonb,
  status     text NOT NULL,
  created_at timestamptz NOT NULL DEFAULT now(),
  updated_at timestamptz NOT NULL DEFAULT now()
);`
	_, err := execSQL(ctx, r.pool, nil, q)
	return err
}

func (r *factCheckRepo) Find(ctx context.Context, tx repository.Tx, url string) (*model.FactCheck, error) {
	const q = `
SELECT url, facts, status, created_at, updated_at
FROM fact_checks
WHERE url = $1;`

	row, err := pickRow(ctx, r.pool, tx, q, url)
	if err != nil {
		return nil, err
	}

	var (
		fc        model.FactCheck
		factsJSON []byte
		statusStr string
	)
	err = row.Scan(&fc.URL, &factsJSON, &statusStr, &fc.CreatedAt, &fc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	fc.Status = model.FactCheckStatus(statusStr)

	// facts stays nil while pending; done rows always carry a JSON array,
	// possibly empty.
	if factsJSON != nil {
		facts := []model.CheckedFact{}
		if err := json.Unmarshal(factsJSON, &facts); err != nil {
			return nil, fmt.Errorf("decode facts for %s: %w", url, err)
		}
		fc.Facts = facts
	}
	return &fc, nil
}

// MarkPending claims the URL. ON CONFLICT DO NOTHING makes the
// absent->pending transition atomic under racing submitters and keeps
// finished rows untouched: done never regresses to pending.
func (r *factCheckRepo) MarkPending(ctx context.Context, tx repository.Tx, url string) (bool, error) {
	const q = `
INSERT INTO fact_checks (url, facts, status, created_at, updated_at)
VALUES ($1, NULL, $2, $3, $3)
ON CONFLICT (url) DO NOTHING;`

	tag, err := execSQL(ctx, r.pool, tx, q, url, model.FactCheckStatusPending, time.Now())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *factCheckRepo) SaveResults(ctx context.Context, tx repository.Tx, url string, facts []model.CheckedFact) error {
	if facts == nil {
		facts = []model.CheckedFact{}
	}
	factsJSON, err := json.Marshal(facts)
	if err != nil {
		return fmt.Errorf("encode facts for %s: %w", url, err)
	}

	const q = `
UPDATE fact_checks
SET facts = $2, status = $3, updated_at = $4
WHERE url = $1;`

	tag, err := execSQL(ctx, r.pool, tx, q, url, factsJSON, model.FactCheckStatusDone, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Results for a URL that was never claimed: invariant violation.
		return domain.ErrNoRecord
	}
	return nil
}
