package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-interview-reporter/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-reporter/internal/domain"
)

// Merger fans out to every session source, builds summaries, and
// deduplicates them into one list. A failing or timing-out source
// degrades the result instead of failing it.
type Merger struct {
	Sources       []domain.SessionSource
	Builder       *Builder
	SourceTimeout time.Duration
	MaxRetries    uint64
}

// NewMerger constructs a Merger over the given sources.
func NewMerger(b *Builder, timeout time.Duration, sources ...domain.SessionSource) *Merger {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Merger{Sources: sources, Builder: b, SourceTimeout: timeout, MaxRetries: 2}
}

// Merge fetches from all sources concurrently and returns the merged,
// deduplicated summaries sorted by overall score descending, together
// with the per-source session counts actually fetched.
func (m *Merger) Merge(ctx context.Context) ([]domain.CandidateSummary, map[domain.Source]int) {
	tracer := otel.Tracer("report.merger")
	ctx, span := tracer.Start(ctx, "merger.Merge")
	defer span.End()

	type sourceResult struct {
		name     domain.Source
		sessions []domain.RawSession
	}

	results := make([]sourceResult, len(m.Sources))
	var wg sync.WaitGroup
	for i, src := range m.Sources {
		wg.Add(1)
		go func(i int, src domain.SessionSource) {
			defer wg.Done()
			sessions, err := m.fetchOne(ctx, src)
			if err != nil {
				// Degrade: this source contributes nothing.
				slog.Error("session source failed", slog.String("source", string(src.Name())), slog.Any("error", err))
				observability.SourceFailuresTotal.WithLabelValues(string(src.Name())).Inc()
				results[i] = sourceResult{name: src.Name()}
				return
			}
			observability.SourceSessionsTotal.WithLabelValues(string(src.Name())).Add(float64(len(sessions)))
			results[i] = sourceResult{name: src.Name(), sessions: sessions}
		}(i, src)
	}
	wg.Wait()

	counts := make(map[domain.Source]int, len(results))
	byKey := make(map[string]domain.CandidateSummary)
	for _, res := range results {
		counts[res.name] = len(res.sessions)
		for _, s := range res.sessions {
			summary := m.Builder.Build(s)
			if summary == nil {
				continue
			}
			existing, seen := byKey[summary.SessionKey]
			if seen && existing.Source == domain.SourceDocument && summary.Source != domain.SourceDocument {
				// The document-store view is the more complete one.
				continue
			}
			byKey[summary.SessionKey] = *summary
		}
	}

	merged := make([]domain.CandidateSummary, 0, len(byKey))
	for _, c := range byKey {
		merged = append(merged, c)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Overall != merged[j].Overall {
			return merged[i].Overall > merged[j].Overall
		}
		return merged[i].SessionKey < merged[j].SessionKey
	})
	return merged, counts
}

// fetchOne runs one source with its own timeout and a bounded retry.
func (m *Merger) fetchOne(ctx context.Context, src domain.SessionSource) ([]domain.RawSession, error) {
	sctx, cancel := context.WithTimeout(ctx, m.SourceTimeout)
	defer cancel()

	var sessions []domain.RawSession
	op := func() error {
		var err error
		sessions, err = src.FetchSessions(sctx)
		return err
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), m.MaxRetries), sctx)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, fmt.Errorf("op=merger.fetch source=%s: %w", src.Name(), err)
	}
	return sessions, nil
}
