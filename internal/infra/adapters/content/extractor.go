package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"newsfax-factcheck/internal/domain"
	"newsfax-factcheck/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.ContentExtractor = (*HTTPExtractor)(nil)

// HTTPExtractor fetches a page over HTTP and reduces it to the visible
// text. Fetches are gated by robots.txt and a per-domain rate limit.
type HTTPExtractor struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	robots    *RobotsChecker
	limiter   *DomainLimiter
}

type Options struct {
	Timeout        time.Duration
	UserAgent      string
	MaxBytes       int64
	PerDomainRPS   float64
	PerDomainBurst int
	RespectRobots  bool
	RobotsCacheTTL time.Duration
}

func NewHTTPExtractor(opts Options) *HTTPExtractor {
	e := &HTTPExtractor{
		client: &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: opts.UserAgent,
		maxBytes:  opts.MaxBytes,
		limiter:   NewDomainLimiter(opts.PerDomainRPS, opts.PerDomainBurst),
	}
	if opts.RespectRobots {
		e.robots = NewRobotsChecker(opts.UserAgent, opts.Timeout, opts.RobotsCacheTTL)
	}
	return e
}

func (e *HTTPExtractor) Extract(ctx context.Context, rawURL string) (string, error) {
	if e.robots != nil {
		allowed, err := e.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return "", fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			return "", domain.ErrFetchDisallowed
		}
	}
	if err := e.limiter.Wait(ctx, rawURL); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	text, err := VisibleText(string(body))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyContent
	}
	return text, nil
}

// VisibleText extracts text nodes from HTML, skipping scripts/styles.
func VisibleText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(buf.String()), nil
}
