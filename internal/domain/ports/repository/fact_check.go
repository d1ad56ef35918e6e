package repository

import (
	"context"

	"newsfax-factcheck/internal/domain/model"
)

type FactCheckRepository interface {
	// Find returns the record for url, or domain.ErrNotFound when the URL
	// has never been submitted.
	Find(ctx context.Context, tx Tx, url string) (*model.FactCheck, error)

	// MarkPending atomically claims the URL by inserting a pending record.
	// It reports false when a record already exists (pending or done); a
	// finished record is never overwritten.
	MarkPending(ctx context.Context, tx Tx, url string) (claimed bool, err error)

	// SaveResults flips the record to done with the given findings. Calling
	// it for a URL with no record is an internal consistency fault and
	// returns domain.ErrNoRecord.
	SaveResults(ctx context.Context, tx Tx, url string, facts []model.CheckedFact) error
}
