package redis

import (
	"context"
	"encoding/json"
	"time"

	"newsfax-factcheck/internal/domain/model"
	"newsfax-factcheck/internal/infra/metrics"
)

// ResultCache keeps finished findings in Redis so repeat submissions of a
// done URL skip the database. Safe because done results never change;
// pending records are never cached.
type ResultCache struct {
	cli RedisClient
	ttl time.Duration
}

func NewResultCache(cli RedisClient, ttl time.Duration) *ResultCache {
	return &ResultCache{cli: cli, ttl: ttl}
}

func key(url string) string { return "factcheck:result:" + url }

// Get returns the cached findings, or (nil, false) on a miss. Cache errors
// degrade to misses; the store remains the source of truth.
func (c *ResultCache) Get(ctx context.Context, url string) ([]model.CheckedFact, bool) {
	raw, err := c.cli.Get(ctx, key(url))
	if err != nil {
		if IsNil(err) {
			metrics.IncCacheRequest("result", "miss")
		} else {
			metrics.IncCacheRequest("result", "error")
		}
		return nil, false
	}
	facts := []model.CheckedFact{}
	if err := json.Unmarshal([]byte(raw), &facts); err != nil {
		metrics.IncCacheRequest("result", "miss")
		return nil, false
	}
	metrics.IncCacheRequest("result", "hit")
	return facts, true
}

// Set stores findings for a done URL, best effort.
func (c *ResultCache) Set(ctx context.Context, url string, facts []model.CheckedFact) {
	if facts == nil {
		facts = []model.CheckedFact{}
	}
	b, err := json.Marshal(facts)
	if err != nil {
		return
	}
	_ = c.cli.Set(ctx, key(url), string(b), c.ttl)
}
