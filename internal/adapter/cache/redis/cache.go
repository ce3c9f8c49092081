// Package redis persists the latest generated report under a single
// fixed key. The whole envelope is written in one SET so readers never
// observe a half-updated report.
package redis

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-interview-reporter/internal/domain"
)

const reportKey = "report:latest"

// ReportCache stores the CachedReport envelope in Redis.
type ReportCache struct {
	Client *redis.Client
	// TTL of zero keeps the report until the next overwrite; the
	// staleness probe, not expiry, drives regeneration.
	TTL time.Duration
}

// NewReportCache constructs a ReportCache over the given client.
func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{Client: client, TTL: ttl}
}

// Load reads the cached report. A missing key maps to ErrNotFound; an
// unreadable envelope is an error the caller treats as absent.
func (c *ReportCache) Load(ctx domain.Context) (domain.CachedReport, error) {
	ctx, span := otel.Tracer("cache.report").Start(ctx, "cache.Load")
	defer span.End()

	raw, err := c.Client.Get(ctx, reportKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.CachedReport{}, fmt.Errorf("op=cache.load: %w", domain.ErrNotFound)
	}
	if err != nil {
		return domain.CachedReport{}, fmt.Errorf("op=cache.load: %w", err)
	}
	var rep domain.CachedReport
	if err := json.Unmarshal(raw, &rep); err != nil {
		return domain.CachedReport{}, fmt.Errorf("op=cache.decode: %w", err)
	}
	return rep, nil
}

// Store replaces the cached report atomically.
func (c *ReportCache) Store(ctx domain.Context, rep domain.CachedReport) error {
	ctx, span := otel.Tracer("cache.report").Start(ctx, "cache.Store")
	defer span.End()

	raw, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("op=cache.encode: %w", err)
	}
	if err := c.Client.Set(ctx, reportKey, raw, c.TTL).Err(); err != nil {
		return fmt.Errorf("op=cache.store: %w", err)
	}
	return nil
}

// Ping reports cache reachability for the readiness probe.
func (c *ReportCache) Ping(ctx domain.Context) error {
	return c.Client.Ping(ctx).Err()
}
