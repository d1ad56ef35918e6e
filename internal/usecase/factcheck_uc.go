// File: internal/usecase/factcheck_uc.go
package usecase

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"newsfax-factcheck/internal/domain"
	"newsfax-factcheck/internal/domain/model"
	"newsfax-factcheck/internal/domain/ports/repository"
	"newsfax-factcheck/internal/infra/logging"
)

// Compile-time check
var _ FactCheckUseCase = (*factCheckUC)(nil)

type SubmitStatus string

const (
	StatusComplete   SubmitStatus = "complete"
	StatusInProgress SubmitStatus = "in_progress"
	StatusStarted    SubmitStatus = "started"
)

// Outcome is what a submission or probe reports back to the caller.
// Facts is non-nil only for StatusComplete.
type Outcome struct {
	Status SubmitStatus
	Facts  []model.CheckedFact
}

type FactCheckUseCase interface {
	// Submit triggers a check for url, or reports the state of an earlier
	// one. A finished URL is never re-checked.
	Submit(ctx context.Context, rawURL string) (*Outcome, error)
	// Get probes the state of url without ever dispatching work. Returns
	// domain.ErrNotFound when the URL was never submitted.
	Get(ctx context.Context, rawURL string) (*Outcome, error)
}

// Runner executes the fetch-and-analyze pipeline for one claimed URL.
type Runner interface {
	Run(ctx context.Context, url string)
}

// Dispatcher hands a task to a background executor. Dispatch never fails:
// the implementation must guarantee the task eventually runs.
type Dispatcher interface {
	Dispatch(task func(ctx context.Context))
}

// ResultCache is an optional read-through cache for finished findings.
type ResultCache interface {
	Get(ctx context.Context, url string) ([]model.CheckedFact, bool)
	Set(ctx context.Context, url string, facts []model.CheckedFact)
}

type factCheckUC struct {
	repo   repository.FactCheckRepository
	cache  ResultCache // may be nil
	runner Runner
	disp   Dispatcher
	log    *zerolog.Logger

	// inFlight backs up the no-duplicate-dispatch guarantee for racing
	// submissions of the same URL inside this process, without another
	// store round-trip.
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewFactCheckUseCase(
	repo repository.FactCheckRepository,
	cache ResultCache,
	runner Runner,
	disp Dispatcher,
	log *zerolog.Logger,
) *factCheckUC {
	return &factCheckUC{
		repo:     repo,
		cache:    cache,
		runner:   runner,
		disp:     disp,
		log:      log,
		inFlight: make(map[string]struct{}),
	}
}

func (u *factCheckUC) Submit(ctx context.Context, rawURL string) (*Outcome, error) {
	defer logging.TraceDuration(u.log, "FactCheckUC.Submit")()
	pageURL, err := normalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	if out := u.fromCache(ctx, pageURL); out != nil {
		return out, nil
	}

	fc, err := u.repo.Find(ctx, nil, pageURL)
	switch {
	case err == nil:
		return u.outcomeFor(ctx, fc), nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	// Never seen. Reserve the URL locally before touching the store so two
	// racing submissions cannot both dispatch.
	if !u.reserve(pageURL) {
		return &Outcome{Status: StatusInProgress}, nil
	}

	claimed, err := u.repo.MarkPending(ctx, nil, pageURL)
	if err != nil {
		u.release(pageURL)
		return nil, err
	}
	if !claimed {
		// A row appeared between Find and MarkPending (or survives from a
		// previous process). Report its current state instead.
		u.release(pageURL)
		fc, err := u.repo.Find(ctx, nil, pageURL)
		if err != nil {
			return &Outcome{Status: StatusInProgress}, nil
		}
		return u.outcomeFor(ctx, fc), nil
	}

	u.dispatch(pageURL)
	u.log.Info().Str("page_url", pageURL).Msg("fact check dispatched")
	return &Outcome{Status: StatusStarted}, nil
}

func (u *factCheckUC) Get(ctx context.Context, rawURL string) (*Outcome, error) {
	defer logging.TraceDuration(u.log, "FactCheckUC.Get")()
	pageURL, err := normalizeURL(rawURL)
	if err != nil {
		return nil, err
	}
	if out := u.fromCache(ctx, pageURL); out != nil {
		return out, nil
	}
	fc, err := u.repo.Find(ctx, nil, pageURL)
	if err != nil {
		return nil, err
	}
	return u.outcomeFor(ctx, fc), nil
}

func (u *factCheckUC) outcomeFor(ctx context.Context, fc *model.FactCheck) *Outcome {
	if !fc.Done() {
		return &Outcome{Status: StatusInProgress}
	}
	facts := fc.Facts
	if facts == nil {
		facts = []model.CheckedFact{}
	}
	if u.cache != nil {
		u.cache.Set(ctx, fc.URL, facts)
	}
	return &Outcome{Status: StatusComplete, Facts: facts}
}

func (u *factCheckUC) fromCache(ctx context.Context, pageURL string) *Outcome {
	if u.cache == nil {
		return nil
	}
	if facts, ok := u.cache.Get(ctx, pageURL); ok {
		return &Outcome{Status: StatusComplete, Facts: facts}
	}
	return nil
}

func (u *factCheckUC) dispatch(pageURL string) {
	u.disp.Dispatch(func(ctx context.Context) {
		defer u.release(pageURL)
		u.runner.Run(ctx, pageURL)
	})
}

func (u *factCheckUC) reserve(pageURL string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, busy := u.inFlight[pageURL]; busy {
		return false
	}
	u.inFlight[pageURL] = struct{}{}
	return true
}

func (u *factCheckUC) release(pageURL string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.inFlight, pageURL)
}

func normalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", domain.ErrInvalidArgument
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", domain.ErrInvalidArgument
	}
	return raw, nil
}
