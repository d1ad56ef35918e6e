package ai

import (
	"fmt"
	"strings"

	"newsfax-factcheck/internal/domain"
	"newsfax-factcheck/internal/domain/model"
)

// ParseVerification turns a "Status:/Summary:/Sources:" completion into a
// checked fact. A verdict outside the allowed set rejects the finding.
func ParseVerification(claimText, reply string) (*model.CheckedFact, error) {
	var status, summary, sources string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Status:"):
			status = strings.TrimSpace(strings.TrimPrefix(line, "Status:"))
		case strings.HasPrefix(line, "Summary:"):
			summary = strings.TrimSpace(strings.TrimPrefix(line, "Summary:"))
		case strings.HasPrefix(line, "Sources:"):
			sources = strings.TrimSpace(strings.TrimPrefix(line, "Sources:"))
		}
	}

	verdict := model.Verdict(strings.Trim(strings.ToUpper(status), "[] "))
	if !verdict.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidVerdict, status)
	}

	text := cleanClaimText(claimText)
	if text == "" {
		return nil, fmt.Errorf("%w: empty claim text", domain.ErrInvalidArgument)
	}

	return &model.CheckedFact{
		Text:         text,
		Truthfulness: verdict,
		Summary:      summary,
		Sources:      parseSources(sources, text),
	}, nil
}

// parseSources keeps at most model.MaxSources http(s) URLs and derives
// favicons; a claim with no usable citations gets the search fallback.
func parseSources(raw, claimText string) []model.Source {
	var out []model.Source
	for _, part := range strings.Split(raw, ",") {
		u := strings.TrimSpace(part)
		if !strings.HasPrefix(u, "http") {
			continue
		}
		out = append(out, model.NewSource(u))
		if len(out) == model.MaxSources {
			break
		}
	}
	if len(out) == 0 {
		out = []model.Source{model.FallbackSource(claimText)}
	}
	return out
}

// cleanClaimText strips list markers, wrapping quotes and escapes so the
// stored claim matches the article verbatim.
func cleanClaimText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "-*0123456789. ")
	if strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) && len(s) >= 2 {
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, `\"`, `"`)
	return strings.TrimSpace(s)
}
