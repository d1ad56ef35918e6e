// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port         int      `yaml:"port"`
	CORSOrigins  []string `yaml:"cors_origins"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AIConfig struct {
	APIKey          string `yaml:"api_key"`
	BaseURL         string `yaml:"base_url"` // OpenAI-compatible endpoint
	GeminiKey       string `yaml:"gemini_key"`
	GeminiURL       string `yaml:"gemini_url"`
	Model           string `yaml:"model"`
	MaxClaims       int    `yaml:"max_claims"`       // cap on verified claims per page
	ContentTokens   int    `yaml:"content_tokens"`   // token budget for page content
	ConcurrentLimit int    `yaml:"concurrent_limit"` // max concurrent LLM calls
}

type FetchConfig struct {
	Timeout         time.Duration `yaml:"timeout"`
	UserAgent       string        `yaml:"user_agent"`
	MaxBytes        int64         `yaml:"max_bytes"`
	PerDomainRPS    float64       `yaml:"per_domain_rps"`
	PerDomainBurst  int           `yaml:"per_domain_burst"`
	RespectRobots   bool          `yaml:"respect_robots"`
	RobotsCacheTTL  time.Duration `yaml:"robots_cache_ttl"`
}

type PipelineConfig struct {
	Workers    int           `yaml:"workers"`
	RunTimeout time.Duration `yaml:"run_timeout"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	AI       AIConfig       `yaml:"ai"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Pipeline PipelineConfig `yaml:"pipeline"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if !dev && cfg.AI.APIKey == "" && cfg.AI.GeminiKey == "" {
		return nil, errors.New("ai.api_key or ai.gemini_key is required outside dev mode")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gpt-4o-mini"
	}
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.AI.MaxClaims <= 0 {
		cfg.AI.MaxClaims = 8
	}
	if cfg.AI.ContentTokens <= 0 {
		cfg.AI.ContentTokens = 6000
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 8
	}
	if cfg.Fetch.Timeout <= 0 {
		cfg.Fetch.Timeout = 20 * time.Second
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = "newsfax-factcheck/1.0"
	}
	if cfg.Fetch.MaxBytes <= 0 {
		cfg.Fetch.MaxBytes = 2 << 20 // 2 MiB
	}
	if cfg.Fetch.PerDomainRPS <= 0 {
		cfg.Fetch.PerDomainRPS = 1
	}
	if cfg.Fetch.PerDomainBurst <= 0 {
		cfg.Fetch.PerDomainBurst = 3
	}
	if cfg.Fetch.RobotsCacheTTL <= 0 {
		cfg.Fetch.RobotsCacheTTL = time.Hour
	}
	if cfg.Pipeline.Workers <= 0 {
		cfg.Pipeline.Workers = 8
	}
	if cfg.Pipeline.RunTimeout <= 0 {
		cfg.Pipeline.RunTimeout = 5 * time.Minute
	}
}
