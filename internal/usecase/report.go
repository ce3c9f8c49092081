// Package usecase contains the application services built on the
// domain ports.
package usecase

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/fairyhunter13/ai-interview-reporter/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-reporter/internal/domain"
	"github.com/fairyhunter13/ai-interview-reporter/internal/report"
)

// Merger is the aggregation entry point; *report.Merger satisfies it.
type Merger interface {
	Merge(ctx context.Context) ([]domain.CandidateSummary, map[domain.Source]int)
}

// ReportService owns the cached latest report. It decides between
// serving the cache, regenerating on staleness, and falling back to
// stale data when a regeneration comes back empty. Callers always get
// a well-shaped report, never an error.
type ReportService struct {
	Cache   domain.ReportCache
	Counter domain.CandidateCounter
	Merger  Merger

	// mu collapses overlapping regenerations; last writer wins on the
	// persisted cache either way.
	mu sync.Mutex
}

// NewReportService constructs a ReportService.
func NewReportService(cache domain.ReportCache, counter domain.CandidateCounter, merger Merger) *ReportService {
	return &ReportService{Cache: cache, Counter: counter, Merger: merger}
}

// GetLatestReport serves the cached report when it is fresh and
// regenerates it when forced, absent, or stale.
func (s *ReportService) GetLatestReport(ctx context.Context, forceRefresh bool) domain.CachedReport {
	cached, err := s.Cache.Load(ctx)
	haveCached := err == nil
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		// A broken cache read is treated like an absent cache.
		slog.Warn("report cache read failed", slog.Any("error", err))
	}

	switch {
	case forceRefresh:
		return s.regenerate(ctx, "force", cached, haveCached)
	case !haveCached:
		return s.regenerate(ctx, "absent", cached, false)
	case s.isStale(ctx, cached):
		return s.regenerate(ctx, "stale", cached, true)
	default:
		return cached
	}
}

// ForceRefresh regenerates the report unconditionally. Used by the
// session-completed event consumer.
func (s *ReportService) ForceRefresh(ctx context.Context) domain.CachedReport {
	cached, err := s.Cache.Load(ctx)
	return s.regenerate(ctx, "event", cached, err == nil)
}

// isStale compares the cached candidate count against the live count
// in the authoritative candidate store. A count probe failure keeps
// the cache in service.
func (s *ReportService) isStale(ctx context.Context, cached domain.CachedReport) bool {
	live, err := s.Counter.CountCandidates(ctx)
	if err != nil {
		slog.Warn("candidate count probe failed; serving cached report", slog.Any("error", err))
		return false
	}
	return live > 0 && live != len(cached.Candidates)
}

func (s *ReportService) regenerate(ctx context.Context, trigger string, cached domain.CachedReport, haveCached bool) domain.CachedReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	candidates, counts := s.Merger.Merge(ctx)

	if len(candidates) == 0 && haveCached && len(cached.Candidates) > 0 {
		// EmptyRegeneration: a transient fetch failure must not blank
		// a previously good report.
		slog.Warn("regeneration yielded zero candidates; keeping stale report",
			slog.String("trigger", trigger),
			slog.Int("stale_candidates", len(cached.Candidates)))
		observability.RecordGeneration(trigger, "empty", time.Since(start), 0)
		return cached
	}
	if candidates == nil {
		candidates = []domain.CandidateSummary{}
	}

	rep := domain.CachedReport{
		Summary:        report.Aggregate(candidates),
		Candidates:     candidates,
		GeneratedAt:    time.Now().UTC(),
		Revision:       newRevision(),
		SourceSessions: counts,
	}
	if err := s.Cache.Store(ctx, rep); err != nil {
		// The freshly computed result is still good; only the next
		// request pays for the missing cache write.
		slog.Error("report cache write failed", slog.Any("error", err))
		observability.CachePersistFailuresTotal.Inc()
	}
	observability.RecordGeneration(trigger, "ok", time.Since(start), len(candidates))
	slog.Info("report regenerated",
		slog.String("trigger", trigger),
		slog.String("revision", rep.Revision),
		slog.Int("candidates", len(candidates)),
		slog.Duration("took", time.Since(start)))
	return rep
}

var revEntropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0) //nolint:gosec // Weak random is sufficient for ULID entropy.

func newRevision() string {
	id, err := ulid.New(ulid.Timestamp(time.Now()), revEntropy)
	if err != nil {
		return time.Now().UTC().Format("20060102150405.000000000")
	}
	return id.String()
}
