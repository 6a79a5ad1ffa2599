package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/fba-weekly-summary/internal/config"
)

const reportCacheKeyPrefix = "spapi:sales_traffic"

// ReportCache stores parsed SP-API report payloads between runs so repeated
// window pulls do not burn report quota. Keys identify one report request
// (marketplace + date range); values are the parsed rows as JSON.
type ReportCache interface {
	Get(ctx context.Context, key string, out any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

type redisReportCache struct {
	client     *redis.Client
	defaultTTL time.Duration
}

type noopReportCache struct{}

// NewReportCache returns a redis-backed cache, or a noop when caching is
// disabled in config.
func NewReportCache(cfg config.CacheConfig) (ReportCache, error) {
	if !cfg.Enabled {
		return &noopReportCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	return &redisReportCache{client: client, defaultTTL: ttl}, nil
}

// NewNoopReportCache returns a cache that stores nothing.
func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

// Key builds the cache key for one report pull.
func Key(marketplaceID string, start, end time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s",
		reportCacheKeyPrefix,
		marketplaceID,
		start.Format("2006-01-02"),
		end.Format("2006-01-02"))
}

// TTLForWindow mirrors the refresh policy of the upstream report: ranges
// ending yesterday or later are still settling at Amazon's side and refresh
// every few hours, closed historical ranges are effectively immutable.
func TTLForWindow(end time.Time, now time.Time) time.Duration {
	yesterday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	if !end.Before(yesterday) {
		return 6 * time.Hour
	}
	return 30 * 24 * time.Hour
}

// effectiveTTL resolves the TTL a Set actually uses: callers that do not care
// pass zero and get the configured default.
func effectiveTTL(requested, fallback time.Duration) time.Duration {
	if requested > 0 {
		return requested
	}
	return fallback
}

func (c *redisReportCache) Get(ctx context.Context, key string, out any) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return false, fmt.Errorf("decode report cache entry: %w", err)
	}
	return true, nil
}

func (c *redisReportCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode report cache entry: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, effectiveTTL(ttl, c.defaultTTL)).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *noopReportCache) Get(context.Context, string, any) (bool, error) { return false, nil }

func (c *noopReportCache) Set(context.Context, string, any, time.Duration) error { return nil }
