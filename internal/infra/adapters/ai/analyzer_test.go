package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"newsfax-factcheck/internal/domain/model"
	"newsfax-factcheck/internal/domain/ports/adapter"
)

// scriptedCompleter answers the extraction prompt first, then hands out
// verification replies in order.
type scriptedCompleter struct {
	extractReply  string
	extractErr    error
	verifyReplies []string
	verifyErrs    []error
	verifyCalls   int
}

func (s *scriptedCompleter) Chat(_ context.Context, _ string, msgs []adapter.Message) (string, error) {
	if len(msgs) == 0 {
		return "", errors.New("no messages")
	}
	if strings.Contains(msgs[0].Content, "Factual quotes:") {
		return s.extractReply, s.extractErr
	}
	i := s.verifyCalls
	s.verifyCalls++
	var err error
	if i < len(s.verifyErrs) {
		err = s.verifyErrs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(s.verifyReplies) {
		return s.verifyReplies[i], nil
	}
	return "", errors.New("unexpected verify call")
}

func newTestAnalyzer(c adapter.ChatCompleter, maxClaims int) *ClaimAnalyzer {
	log := zerolog.Nop()
	return &ClaimAnalyzer{
		completer: c,
		provider:  "test",
		model:     "test-model",
		maxClaims: maxClaims,
		log:       &log,
	}
}

func TestAnalyze_VerifiesEachExtractedQuote(t *testing.T) {
	c := &scriptedCompleter{
		extractReply: "\"The dam produces 22 GW.\"\n\"The lake is 600 km long.\"",
		verifyReplies: []string{
			"Status: TRUE\nSummary: Official capacity figure.\nSources: https://example.org/dam",
			"Status: FALSE\nSummary: It is about 400 km.\nSources:",
		},
	}
	a := newTestAnalyzer(c, 8)

	facts, err := a.Analyze(context.Background(), "article text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(facts) != 2 {
		t.Fatalf("want 2 facts, got %d", len(facts))
	}
	if facts[0].Text != "The dam produces 22 GW." || facts[0].Truthfulness != model.VerdictTrue {
		t.Errorf("first fact: %+v", facts[0])
	}
	if facts[1].Truthfulness != model.VerdictFalse {
		t.Errorf("second fact: %+v", facts[1])
	}
	if c.verifyCalls != 2 {
		t.Errorf("want 2 verify calls, got %d", c.verifyCalls)
	}
}

func TestAnalyze_NoQuotesFoundIsEmptyResult(t *testing.T) {
	c := &scriptedCompleter{extractReply: "No factual quotes found"}
	a := newTestAnalyzer(c, 8)

	facts, err := a.Analyze(context.Background(), "an opinion piece")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(facts) != 0 {
		t.Fatalf("want no facts, got %d", len(facts))
	}
	if c.verifyCalls != 0 {
		t.Errorf("verify must not run without quotes, got %d calls", c.verifyCalls)
	}
}

func TestAnalyze_ExtractionFailureIsFatal(t *testing.T) {
	c := &scriptedCompleter{extractErr: errors.New("rate limited")}
	a := newTestAnalyzer(c, 8)

	if _, err := a.Analyze(context.Background(), "content"); err == nil {
		t.Fatal("want error when extraction fails")
	}
}

func TestAnalyze_SkipsUnverifiableClaims(t *testing.T) {
	c := &scriptedCompleter{
		extractReply: "claim one\nclaim two\nclaim three",
		verifyReplies: []string{
			"Status: TRUE\nSummary: ok\nSources:",
			"",
			"Status: garbage reply",
		},
		verifyErrs: []error{nil, errors.New("timeout"), nil},
	}
	a := newTestAnalyzer(c, 8)

	facts, err := a.Analyze(context.Background(), "content")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(facts) != 1 {
		t.Fatalf("want the single verifiable claim, got %d", len(facts))
	}
	if facts[0].Text != "claim one" {
		t.Errorf("kept wrong claim: %q", facts[0].Text)
	}
}

func TestAnalyze_CapsClaimCount(t *testing.T) {
	c := &scriptedCompleter{
		extractReply: "one\ntwo\nthree\nfour",
		verifyReplies: []string{
			"Status: TRUE\nSummary: a\nSources:",
			"Status: TRUE\nSummary: b\nSources:",
		},
	}
	a := newTestAnalyzer(c, 2)

	facts, err := a.Analyze(context.Background(), "content")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(facts) != 2 {
		t.Fatalf("want 2 facts, got %d", len(facts))
	}
	if c.verifyCalls != 2 {
		t.Errorf("want 2 verify calls, got %d", c.verifyCalls)
	}
}
