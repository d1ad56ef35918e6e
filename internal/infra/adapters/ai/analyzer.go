package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"

	"newsfax-factcheck/internal/domain/model"
	"newsfax-factcheck/internal/domain/ports/adapter"
	"newsfax-factcheck/internal/infra/metrics"
)

var _ adapter.ClaimAnalyzer = (*ClaimAnalyzer)(nil)

// ClaimAnalyzer verifies page content in two LLM steps: one completion to
// pull out verbatim factual statements, then one completion per statement
// to classify it. It is constructed once and shared; every invocation
// works on its own locals, nothing is accumulated on the struct.
type ClaimAnalyzer struct {
	completer     adapter.ChatCompleter
	provider      string
	model         string
	maxClaims     int
	contentTokens int
	enc           *tiktoken.Tiktoken
	log           *zerolog.Logger
}

func NewClaimAnalyzer(
	completer adapter.ChatCompleter,
	provider, modelName string,
	maxClaims, contentTokens int,
	log *zerolog.Logger,
) (*ClaimAnalyzer, error) {
	enc, err := tiktoken.EncodingForModel(modelName)
	if err != nil {
		// Unknown model names fall back to the common encoding.
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("load token encoding: %w", err)
		}
	}
	if maxClaims <= 0 {
		maxClaims = 8
	}
	if contentTokens <= 0 {
		contentTokens = 6000
	}
	return &ClaimAnalyzer{
		completer:     completer,
		provider:      provider,
		model:         modelName,
		maxClaims:     maxClaims,
		contentTokens: contentTokens,
		enc:           enc,
		log:           log,
	}, nil
}

const noQuotesMarker = "No factual quotes found"

const extractPromptFmt = `Extract statements that are presented as factual verbatim. Look for:
- Quotes with certain statements
- Statements that provide concrete information
- Quotes that describe experiences, situations, conditions, numbers, people

Return ONLY these factual style quotes, one per line. Do not add explanations or commentary.
If no factual quotes exist, return only: "%s"

Content:
%s

Factual quotes:`

const verifyPromptFmt = `You are a fact-checker. Determine if the following fact is:
- TRUE: Supported by reliable sources and evidence
- SOMEWHAT TRUE: Partially correct but missing context or contains minor inaccuracies
- FALSE: Contradicted by reliable sources or no credible evidence found

Fact to verify: "%s"

Instructions:
- Provide your assessment as: TRUE, SOMEWHAT TRUE, or FALSE
- Give a brief explanation (1-2 sentences) for your decision
- List URLs of sources that support your assessment, if you know reliable ones

Format your response EXACTLY as:
Status: [TRUE/SOMEWHAT TRUE/FALSE]
Summary: [Your brief explanation]
Sources: [Comma-separated list of URLs]`

func (a *ClaimAnalyzer) Analyze(ctx context.Context, content string) ([]model.CheckedFact, error) {
	content = a.truncate(content)

	quotes, err := a.extractQuotes(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("extract quotes: %w", err)
	}
	if len(quotes) > a.maxClaims {
		quotes = quotes[:a.maxClaims]
	}

	facts := make([]model.CheckedFact, 0, len(quotes))
	for _, quote := range quotes {
		fact, err := a.verify(ctx, quote)
		if err != nil {
			// One unverifiable claim does not sink the run.
			a.log.Warn().Err(err).Str("claim", quote).Msg("claim verification skipped")
			continue
		}
		facts = append(facts, *fact)
	}
	return facts, nil
}

func (a *ClaimAnalyzer) extractQuotes(ctx context.Context, content string) ([]string, error) {
	prompt := fmt.Sprintf(extractPromptFmt, noQuotesMarker, content)

	start := time.Now()
	reply, err := a.completer.Chat(ctx, a.model, []adapter.Message{{Role: "user", Content: prompt}})
	metrics.ObserveAICall(a.provider, a.model, "extract", int(time.Since(start)/time.Millisecond), err == nil)
	if err != nil {
		return nil, err
	}

	if strings.Contains(reply, noQuotesMarker) {
		return nil, nil
	}
	var quotes []string
	for _, line := range strings.Split(reply, "\n") {
		q := cleanClaimText(line)
		if q != "" {
			quotes = append(quotes, q)
		}
	}
	return quotes, nil
}

func (a *ClaimAnalyzer) verify(ctx context.Context, claimText string) (*model.CheckedFact, error) {
	prompt := fmt.Sprintf(verifyPromptFmt, claimText)

	start := time.Now()
	reply, err := a.completer.Chat(ctx, a.model, []adapter.Message{{Role: "user", Content: prompt}})
	metrics.ObserveAICall(a.provider, a.model, "verify", int(time.Since(start)/time.Millisecond), err == nil)
	if err != nil {
		return nil, err
	}

	fact, err := ParseVerification(claimText, reply)
	if err != nil {
		metrics.IncVerdict("invalid")
		return nil, err
	}
	metrics.IncVerdict(string(fact.Truthfulness))
	return fact, nil
}

// truncate trims the content to the configured token budget. Without an
// encoding the content passes through untouched.
func (a *ClaimAnalyzer) truncate(content string) string {
	if a.enc == nil || a.contentTokens <= 0 {
		return content
	}
	tokens := a.enc.Encode(content, nil, nil)
	metrics.ObserveContentTokens(a.model, len(tokens))
	if len(tokens) <= a.contentTokens {
		return content
	}
	return a.enc.Decode(tokens[:a.contentTokens]) + "... [truncated]"
}
