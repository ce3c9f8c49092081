// Package redpanda consumes interview lifecycle events from
// Redpanda/Kafka. A session-completed event forces a report refresh so
// dashboards pick up new candidates without waiting for the next
// staleness probe.
package redpanda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/fairyhunter13/ai-interview-reporter/internal/domain"
)

// TopicSessionEvents is the interview lifecycle topic.
const TopicSessionEvents = "interview.session.events"

// EventSessionCompleted marks a finished interview.
const EventSessionCompleted = "session.completed"

// Refresher regenerates the report; *usecase.ReportService satisfies it.
type Refresher interface {
	ForceRefresh(ctx context.Context) domain.CachedReport
}

// sessionEvent is the wire form of a lifecycle event.
type sessionEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
}

// SessionEventConsumer polls the lifecycle topic and triggers report
// refreshes on completion events.
type SessionEventConsumer struct {
	client    *kgo.Client
	refresher Refresher
	topic     string

	// debounce collapses bursts of completions into one refresh.
	debounce time.Duration
}

// NewSessionEventConsumer constructs a consumer in the given group.
func NewSessionEventConsumer(brokers []string, groupID, topic string, refresher Refresher) (*SessionEventConsumer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("op=events.consumer: no seed brokers provided")
	}
	if groupID == "" {
		return nil, fmt.Errorf("op=events.consumer: missing group ID")
	}
	if topic == "" {
		topic = TopicSessionEvents
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtEnd()),
	)
	if err != nil {
		return nil, fmt.Errorf("op=events.consumer: %w", err)
	}
	return &SessionEventConsumer{
		client:    client,
		refresher: refresher,
		topic:     topic,
		debounce:  2 * time.Second,
	}, nil
}

// Run polls until the context is cancelled. Poll errors are logged and
// retried; the consumer never takes the service down.
func (c *SessionEventConsumer) Run(ctx context.Context) error {
	slog.Info("session event consumer started", slog.String("topic", c.topic))
	for {
		fetches := c.client.PollFetches(ctx)
		if err := ctx.Err(); err != nil {
			return err
		}
		if fetches.IsClientClosed() {
			return errors.New("op=events.run: client closed")
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			slog.Warn("session event fetch error",
				slog.String("topic", topic),
				slog.Int("partition", int(partition)),
				slog.Any("error", err))
		})

		refresh := false
		fetches.EachRecord(func(rec *kgo.Record) {
			if shouldRefresh(rec.Value) {
				refresh = true
			}
		})
		if refresh {
			c.refreshSoon(ctx)
		}
	}
}

// refreshSoon waits out the debounce window so a burst of completions
// from one exam batch causes a single regeneration.
func (c *SessionEventConsumer) refreshSoon(ctx context.Context) {
	if c.debounce > 0 {
		select {
		case <-time.After(c.debounce):
		case <-ctx.Done():
			return
		}
	}
	rep := c.refresher.ForceRefresh(ctx)
	slog.Info("report refreshed from session event",
		slog.String("revision", rep.Revision),
		slog.Int("candidates", len(rep.Candidates)))
}

// shouldRefresh decodes one event record. Unknown or malformed events
// are skipped without refreshing.
func shouldRefresh(value []byte) bool {
	var ev sessionEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		slog.Warn("skipping undecodable session event", slog.Any("error", err))
		return false
	}
	if ev.Type != EventSessionCompleted {
		return false
	}
	slog.Debug("session completed", slog.String("session_id", ev.SessionID))
	return true
}

// Close releases the underlying Kafka client.
func (c *SessionEventConsumer) Close() {
	if c.client != nil {
		c.client.Close()
	}
}
