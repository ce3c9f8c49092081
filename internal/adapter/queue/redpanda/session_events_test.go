package redpanda

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/ai-interview-reporter/internal/domain"
)

type fakeRefresher struct{ calls int }

func (f *fakeRefresher) ForceRefresh(_ context.Context) domain.CachedReport {
	f.calls++
	return domain.CachedReport{Revision: "rev"}
}

func TestShouldRefresh(t *testing.T) {
	assert.True(t, shouldRefresh([]byte(`{"type":"session.completed","sessionId":"s1"}`)))
	assert.False(t, shouldRefresh([]byte(`{"type":"session.started","sessionId":"s1"}`)))
	assert.False(t, shouldRefresh([]byte(`{not json`)))
	assert.False(t, shouldRefresh(nil))
}

func TestRefreshSoon(t *testing.T) {
	ref := &fakeRefresher{}
	c := &SessionEventConsumer{refresher: ref} // zero debounce in tests

	c.refreshSoon(context.Background())
	assert.Equal(t, 1, ref.calls)
}

func TestRefreshSoon_CancelledContextSkipsRefresh(t *testing.T) {
	ref := &fakeRefresher{}
	c := &SessionEventConsumer{refresher: ref, debounce: time.Minute}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.refreshSoon(ctx)
	assert.Equal(t, 0, ref.calls)
}

func TestNewSessionEventConsumer_Validation(t *testing.T) {
	_, err := NewSessionEventConsumer(nil, "g", "", nil)
	assert.Error(t, err)

	_, err = NewSessionEventConsumer([]string{"localhost:9092"}, "", "", nil)
	assert.Error(t, err)
}
