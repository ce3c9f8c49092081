package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-reporter/internal/domain"
)

func newTestCache(t *testing.T) (*ReportCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	return NewReportCache(rdb, 0), mr
}

func sampleReport() domain.CachedReport {
	return domain.CachedReport{
		Summary: domain.ReportSummary{TotalCandidates: 2, AverageScore: "75%", AvgDuration: "20m"},
		Candidates: []domain.CandidateSummary{
			{SessionKey: "a", Overall: 80, Status: domain.StatusShortlisted},
			{SessionKey: "b", Overall: 70, Status: domain.StatusPending},
		},
		GeneratedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Revision:       "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		SourceSessions: map[domain.Source]int{domain.SourceRelational: 2},
	}
}

func TestReportCache_RoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Store(ctx, sampleReport()))
	got, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleReport(), got)
}

func TestReportCache_MissingKeyIsNotFound(t *testing.T) {
	cache, _ := newTestCache(t)
	_, err := cache.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReportCache_CorruptEnvelope(t *testing.T) {
	cache, mr := newTestCache(t)
	mr.Set(reportKey, "{not json")

	_, err := cache.Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestReportCache_StoreOverwrites(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Store(ctx, sampleReport()))
	next := sampleReport()
	next.Revision = "01BX5ZZKBKACTAV9WEVGEMMVRZ"
	next.Candidates = next.Candidates[:1]
	require.NoError(t, cache.Store(ctx, next))

	got, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, next.Revision, got.Revision)
	assert.Len(t, got.Candidates, 1)
}

func TestReportCache_TTLApplied(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	cache := NewReportCache(rdb, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Store(ctx, sampleReport()))
	mr.FastForward(2 * time.Minute)

	_, err := cache.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReportCache_Ping(t *testing.T) {
	cache, mr := newTestCache(t)
	assert.NoError(t, cache.Ping(context.Background()))
	mr.Close()
	assert.Error(t, cache.Ping(context.Background()))
}
