// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"newsfax-factcheck/internal/config"
	"newsfax-factcheck/internal/domain/ports/adapter"
	aiAdapters "newsfax-factcheck/internal/infra/adapters/ai"
	"newsfax-factcheck/internal/infra/adapters/content"
	"newsfax-factcheck/internal/infra/api"
	pg "newsfax-factcheck/internal/infra/db/postgres"
	"newsfax-factcheck/internal/infra/logging"
	"newsfax-factcheck/internal/infra/metrics"
	red "newsfax-factcheck/internal/infra/redis"
	"newsfax-factcheck/internal/infra/worker"
	"newsfax-factcheck/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (canned analyzer, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()
	go pg.ReportPoolStats(ctx, pool, 15*time.Second)

	factRepo := pg.NewFactCheckRepo(pool)
	if err := factRepo.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("schema setup failed")
	}

	// ---- Redis (optional result cache) ----
	var cache usecase.ResultCache
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connect failed")
		}
		defer redisClient.Close()
		cache = red.NewResultCache(redisClient, cfg.Redis.TTL)
	} else {
		logger.Warn().Msg("redis.url not set, result cache disabled")
	}

	// ---- Collaborators ----
	extractor := content.NewHTTPExtractor(content.Options{
		Timeout:        cfg.Fetch.Timeout,
		UserAgent:      cfg.Fetch.UserAgent,
		MaxBytes:       cfg.Fetch.MaxBytes,
		PerDomainRPS:   cfg.Fetch.PerDomainRPS,
		PerDomainBurst: cfg.Fetch.PerDomainBurst,
		RespectRobots:  cfg.Fetch.RespectRobots,
		RobotsCacheTTL: cfg.Fetch.RobotsCacheTTL,
	})

	analyzer, err := buildAnalyzer(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("analyzer setup failed")
	}

	// ---- Pipeline ----
	workerPool := worker.NewPool(cfg.Pipeline.Workers, logger)
	workerPool.Start(ctx)
	defer workerPool.Stop()

	runner := worker.NewPipelineRunner(factRepo, extractor, analyzer, cfg.Pipeline.RunTimeout, logger)
	dispatcher := worker.NewPoolDispatcher(ctx, workerPool)

	factUC := usecase.NewFactCheckUseCase(factRepo, cache, runner, dispatcher, logger)

	// ---- HTTP ----
	srv := api.NewServer(factUC, logger)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.Router(cfg.Server.CORSOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
	cancel()
}

// buildAnalyzer picks the claim analyzer: noop in dev mode, Gemini when a
// Gemini key is present, the OpenAI-compatible endpoint otherwise.
func buildAnalyzer(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (adapter.ClaimAnalyzer, error) {
	if cfg.Runtime.Dev && cfg.AI.APIKey == "" && cfg.AI.GeminiKey == "" {
		logger.Info().Msg("analyzer: noop (dev mode, no API keys)")
		return aiAdapters.NewNoopAnalyzer(), nil
	}

	var (
		completer adapter.ChatCompleter
		provider  string
		err       error
	)
	if cfg.AI.GeminiKey != "" {
		completer, err = aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.Model)
		provider = "gemini"
	} else {
		completer, err = aiAdapters.NewOpenAIAdapter(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.BaseURL)
		provider = "openai"
	}
	if err != nil {
		return nil, err
	}
	logger.Info().Str("provider", provider).Str("model", cfg.AI.Model).Msg("analyzer configured")

	completer = aiAdapters.NewLimitedCompleter(completer, cfg.AI.ConcurrentLimit)
	return aiAdapters.NewClaimAnalyzer(completer, provider, cfg.AI.Model, cfg.AI.MaxClaims, cfg.AI.ContentTokens, logger)
}
