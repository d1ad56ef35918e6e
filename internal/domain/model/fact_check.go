package model

import (
	"net/url"
	"strings"
	"time"
)

type FactCheckStatus string

const (
	FactCheckStatusPending FactCheckStatus = "pending"
	FactCheckStatusDone    FactCheckStatus = "done"
)

// Verdict is the closed set of truthfulness classifications a checked
// claim can carry. Anything else is a validation error.
type Verdict string

const (
	VerdictTrue         Verdict = "TRUE"
	VerdictFalse        Verdict = "FALSE"
	VerdictSomewhatTrue Verdict = "SOMEWHAT TRUE"
)

func (v Verdict) Valid() bool {
	switch v {
	case VerdictTrue, VerdictFalse, VerdictSomewhatTrue:
		return true
	}
	return false
}

// FactCheck is one record per submitted URL. Absence of a record is itself
// a state ("never submitted"). Facts is non-nil iff the check is done; an
// empty slice means "processed, nothing found or pipeline failed".
type FactCheck struct {
	URL       string
	Status    FactCheckStatus
	Facts     []CheckedFact
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (f *FactCheck) Done() bool { return f.Status == FactCheckStatusDone }

// CheckedFact is a single finding: a verbatim claim from the page, its
// verdict, a short rationale, and up to MaxSources supporting links.
type CheckedFact struct {
	Text         string   `json:"text"`
	Truthfulness Verdict  `json:"truthfulness"`
	Summary      string   `json:"summary"`
	Sources      []Source `json:"sources"`
}

// MaxSources caps the sources a producer attaches to one finding.
const MaxSources = 3

type Source struct {
	URL     string `json:"url"`
	Favicon string `json:"favicon"`
}

// NewSource derives the favicon location from the source host when no
// independent icon is known.
func NewSource(rawURL string) Source {
	return Source{URL: rawURL, Favicon: FaviconFor(rawURL)}
}

// FaviconFor returns https://{host}/favicon.ico for the given URL, or the
// search-engine fallback icon when the host cannot be determined.
func FaviconFor(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "https://www.google.com/favicon.ico"
	}
	return "https://" + u.Host + "/favicon.ico"
}

// FallbackSource points a finding with no usable citations at a web search
// for the claim text.
func FallbackSource(claimText string) Source {
	q := strings.ReplaceAll(strings.TrimSpace(claimText), " ", "+")
	return Source{
		URL:     "https://www.google.com/search?q=" + q,
		Favicon: "https://www.google.com/favicon.ico",
	}
}
