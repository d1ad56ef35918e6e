package adapter

import (
	"context"

	"newsfax-factcheck/internal/domain/model"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompleter is the minimal LLM surface the analyzer builds on: one
// prompt in, one completion out.
type ChatCompleter interface {
	Chat(ctx context.Context, model string, messages []Message) (string, error)
}

// ClaimAnalyzer extracts factual claims from page content and verifies
// each one. Returning an empty slice is valid ("nothing worth checking").
// The analyzer holds no per-call state between invocations; it is
// constructed once and shared.
type ClaimAnalyzer interface {
	Analyze(ctx context.Context, content string) ([]model.CheckedFact, error)
}
