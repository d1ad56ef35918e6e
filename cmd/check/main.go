// One-shot fact check of a single URL, bypassing the server and the store.
// Useful for prompt tuning and extractor debugging:
//
//	go run ./cmd/check -config config.yaml -url https://example.com/article
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"newsfax-factcheck/internal/config"
	"newsfax-factcheck/internal/domain/ports/adapter"
	aiAdapters "newsfax-factcheck/internal/infra/adapters/ai"
	"newsfax-factcheck/internal/infra/adapters/content"
	"newsfax-factcheck/internal/infra/logging"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	rawURL := flag.String("url", "", "page URL to check")
	devMode := flag.Bool("dev", false, "developer mode (canned analyzer when no API keys)")
	flag.Parse()

	if *rawURL == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Pipeline.RunTimeout)
	defer cancel()

	extractor := content.NewHTTPExtractor(content.Options{
		Timeout:        cfg.Fetch.Timeout,
		UserAgent:      cfg.Fetch.UserAgent,
		MaxBytes:       cfg.Fetch.MaxBytes,
		PerDomainRPS:   cfg.Fetch.PerDomainRPS,
		PerDomainBurst: cfg.Fetch.PerDomainBurst,
		RespectRobots:  cfg.Fetch.RespectRobots,
		RobotsCacheTTL: cfg.Fetch.RobotsCacheTTL,
	})

	var analyzer adapter.ClaimAnalyzer
	if cfg.Runtime.Dev && cfg.AI.APIKey == "" && cfg.AI.GeminiKey == "" {
		analyzer = aiAdapters.NewNoopAnalyzer()
	} else {
		var completer adapter.ChatCompleter
		provider := "openai"
		if cfg.AI.GeminiKey != "" {
			completer, err = aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.Model)
			provider = "gemini"
		} else {
			completer, err = aiAdapters.NewOpenAIAdapter(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.BaseURL)
		}
		if err != nil {
			log.Fatalf("ai adapter: %v", err)
		}
		analyzer, err = aiAdapters.NewClaimAnalyzer(completer, provider, cfg.AI.Model, cfg.AI.MaxClaims, cfg.AI.ContentTokens, logger)
		if err != nil {
			log.Fatalf("analyzer: %v", err)
		}
	}

	start := time.Now()
	text, err := extractor.Extract(ctx, *rawURL)
	if err != nil {
		log.Fatalf("extract: %v", err)
	}
	log.Printf("extracted %d bytes of visible text in %v", len(text), time.Since(start))

	facts, err := analyzer.Analyze(ctx, text)
	if err != nil {
		log.Fatalf("analyze: %v", err)
	}
	log.Printf("verified %d claims in %v", len(facts), time.Since(start))

	out, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		log.Fatalf("encode findings: %v", err)
	}
	fmt.Println(string(out))
}
