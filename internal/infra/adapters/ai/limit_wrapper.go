package ai

import (
	"context"

	"newsfax-factcheck/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.ChatCompleter = (*limitedCompleter)(nil)

type limitedCompleter struct {
	inner adapter.ChatCompleter
	sem   chan struct{}
}

// NewLimitedCompleter caps concurrent LLM calls across all pipeline runs.
func NewLimitedCompleter(inner adapter.ChatCompleter, maxConcurrent int) adapter.ChatCompleter {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedCompleter{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedCompleter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-l.sem }()
	return l.inner.Chat(ctx, model, messages)
}
