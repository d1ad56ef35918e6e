package ai

import (
	"context"
	"time"

	"newsfax-factcheck/internal/domain/model"
	"newsfax-factcheck/internal/domain/ports/adapter"
)

var _ adapter.ClaimAnalyzer = (*NoopAnalyzer)(nil)

// NoopAnalyzer implements adapter.ClaimAnalyzer for local/dev testing.
// It returns canned findings instead of calling a real model.
type NoopAnalyzer struct{}

func NewNoopAnalyzer() *NoopAnalyzer {
	return &NoopAnalyzer{}
}

func (a *NoopAnalyzer) Analyze(ctx context.Context, content string) ([]model.CheckedFact, error) {
	// Simulate slight processing time and respect ctx
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return cannedFacts(), nil
}

func cannedFacts() []model.CheckedFact {
	return []model.CheckedFact{
		{
			Text:         "climate change",
			Truthfulness: model.VerdictTrue,
			Summary:      "Climate change is a well-established scientific fact supported by overwhelming evidence from multiple independent research institutions worldwide.",
			Sources: []model.Source{
				model.NewSource("https://www.nasa.gov/climate"),
				model.NewSource("https://www.noaa.gov/climate"),
				model.NewSource("https://www.ipcc.ch/"),
			},
		},
		{
			Text:         "artificial intelligence",
			Truthfulness: model.VerdictSomewhatTrue,
			Summary:      "While AI technology is rapidly advancing, claims about its capabilities are often exaggerated or lack proper context about current limitations.",
			Sources: []model.Source{
				model.NewSource("https://www.nature.com/"),
				model.NewSource("https://www.sciencemag.org/"),
			},
		},
		{
			Text:         "vaccines cause autism",
			Truthfulness: model.VerdictFalse,
			Summary:      "This claim has been thoroughly debunked by numerous large-scale studies. No credible scientific evidence supports any link between vaccines and autism.",
			Sources: []model.Source{
				model.NewSource("https://www.cdc.gov/"),
				model.NewSource("https://www.who.int/"),
				model.NewSource("https://www.nejm.org/"),
			},
		},
	}
}
