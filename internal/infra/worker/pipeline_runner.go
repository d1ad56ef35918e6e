package worker

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"newsfax-factcheck/internal/domain/model"
	"newsfax-factcheck/internal/domain/ports/adapter"
	"newsfax-factcheck/internal/domain/ports/repository"
	"newsfax-factcheck/internal/infra/logging"
	"newsfax-factcheck/internal/infra/metrics"
)

// PipelineRunner executes the two-stage check for one URL: extract page
// content, then analyze it into checked facts. Whatever happens inside the
// stages, the record always reaches a terminal state: a stage failure is
// downgraded to an empty findings list, never left pending.
type PipelineRunner struct {
	repo      repository.FactCheckRepository
	extractor adapter.ContentExtractor
	analyzer  adapter.ClaimAnalyzer
	timeout   time.Duration
	log       *zerolog.Logger
}

func NewPipelineRunner(
	repo repository.FactCheckRepository,
	extractor adapter.ContentExtractor,
	analyzer adapter.ClaimAnalyzer,
	timeout time.Duration,
	log *zerolog.Logger,
) *PipelineRunner {
	return &PipelineRunner{
		repo:      repo,
		extractor: extractor,
		analyzer:  analyzer,
		timeout:   timeout,
		log:       log,
	}
}

// Run processes one claimed URL. It is dispatched on the worker pool and
// never returns an error to the pool: the outcome lands in the store.
func (r *PipelineRunner) Run(ctx context.Context, url string) {
	runID := ulid.Make().String()
	ctx = logging.WithRunID(logging.WithPageURL(ctx, url), runID)
	log := logging.With(ctx, r.log)

	rctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	facts, err := r.check(rctx, url)
	latency := time.Since(start)

	outcome := "completed"
	if err != nil {
		outcome = "failed"
		facts = []model.CheckedFact{}
		log.Error().Err(err).Dur("duration", latency).Msg("fact check failed, saving empty results")
	} else {
		log.Info().Int("findings", len(facts)).Dur("duration", latency).Msg("fact check finished")
	}
	metrics.ObserveFactCheck(outcome, int(latency/time.Millisecond), len(facts))

	// The run may have outlived its deadline; the final write must not.
	sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer scancel()
	if err := r.repo.SaveResults(sctx, nil, url, facts); err != nil {
		// Leaves the record pending. Logged loudly; a sweep for stale
		// pending rows is the recovery path.
		log.Error().Err(err).Msg("could not persist fact check results")
	}
}

func (r *PipelineRunner) check(ctx context.Context, url string) ([]model.CheckedFact, error) {
	content, err := r.extractor.Extract(ctx, url)
	if err != nil {
		return nil, err
	}
	return r.analyzer.Analyze(ctx, content)
}
