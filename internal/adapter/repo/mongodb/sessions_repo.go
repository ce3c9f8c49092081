// Package mongodb reads interview sessions out of the document store.
// Documents carry the same lifecycle fields as the relational rows plus
// a richer, already-structured QA array, either at the top level or
// under a finalReport subdocument.
package mongodb

import (
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/ai-interview-reporter/internal/domain"
	"github.com/fairyhunter13/ai-interview-reporter/internal/report"
)

// SessionStore extracts completed and abandoned sessions from a
// MongoDB collection.
type SessionStore struct{ Coll *mongo.Collection }

// NewSessionStore constructs a SessionStore over the given collection.
func NewSessionStore(coll *mongo.Collection) *SessionStore { return &SessionStore{Coll: coll} }

// Name identifies this source in merge logs and metrics.
func (s *SessionStore) Name() domain.Source { return domain.SourceDocument }

// FetchSessions loads finished session documents. Documents with no QA
// items, no start timestamp and no candidate contact info are dropped;
// a malformed document is logged and skipped, never fatal to the batch.
func (s *SessionStore) FetchSessions(ctx domain.Context) ([]domain.RawSession, error) {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.FetchDocuments")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "mongodb"),
		attribute.String("db.mongodb.collection", s.Coll.Name()),
	)

	filter := bson.M{"status": bson.M{"$in": []string{domain.SessionCompleted, domain.SessionAbandoned}}}
	cur, err := s.Coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("op=sessions.fetchdocs: %w", domain.ErrSourceUnavailable)
	}
	defer cur.Close(ctx)

	var out []domain.RawSession
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			slog.Warn("skipping undecodable session document", slog.Any("error", err))
			continue
		}
		sess, err := mapDocument(doc)
		if err != nil {
			slog.Warn("skipping malformed session document", slog.Any("error", err))
			continue
		}
		if !keepSession(sess) {
			continue
		}
		out = append(out, sess)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("op=sessions.fetchdocs cursor: %w", domain.ErrSourceUnavailable)
	}
	return out, nil
}

// keepSession drops ghost documents that never produced anything worth
// reporting: no QA, never started, and no way to identify the candidate.
func keepSession(s domain.RawSession) bool {
	if len(report.ExtractQA(s.Payload)) > 0 {
		return true
	}
	return !s.StartedAt.IsZero() || s.HasContactInfo()
}

// mapDocument converts a raw BSON document into a RawSession. The
// whole normalized document is kept as the payload so the shape
// matchers can find the QA array wherever a given writer put it.
func mapDocument(raw bson.M) (domain.RawSession, error) {
	doc, ok := normalizeValue(raw).(map[string]any)
	if !ok {
		return domain.RawSession{}, fmt.Errorf("op=sessions.mapdoc: %w", domain.ErrMalformedSession)
	}

	var s domain.RawSession
	s.SessionID = stringField(doc, "sessionId")
	if s.SessionID == "" {
		s.SessionID = stringField(doc, "_id")
	}
	s.Token = stringField(doc, "token")
	s.Status = stringField(doc, "status")
	if s.Status == "" {
		return domain.RawSession{}, fmt.Errorf("op=sessions.mapdoc id=%s: missing status: %w", s.SessionID, domain.ErrMalformedSession)
	}

	s.CreatedAt = timeField(doc, "createdAt")
	s.StartedAt = timeField(doc, "startedAt")
	s.CompletedAt = timeField(doc, "completedAt")
	if n, ok := doc["questionCount"].(float64); ok {
		s.QuestionCount = int(n)
	}

	candidate := childMap(doc, "candidate")
	s.CandidateID = firstString(candidate, doc, "id", "candidateId")
	s.Email = firstString(candidate, doc, "email", "email")
	s.FirstName = firstString(candidate, doc, "firstName", "firstName")
	s.LastName = firstString(candidate, doc, "lastName", "lastName")

	s.JobTitle = firstString(childMap(doc, "position"), doc, "jobTitle", "jobTitle")
	exam := childMap(doc, "exam")
	s.ExamName = firstString(exam, doc, "name", "examName")
	s.SubcategoryName = firstString(exam, doc, "subcategoryName", "subcategoryName")
	s.CompanyName = firstString(exam, doc, "companyName", "companyName")

	s.Payload = doc
	s.Source = domain.SourceDocument
	return s, nil
}

// normalizeValue rewrites BSON driver types into the plain JSON-style
// values the rest of the pipeline works with: bson.M to map, bson.A to
// slice, DateTime to time.Time, ObjectID to its hex form. Numeric
// types stay as the driver decoded them.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case bson.M:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeValue(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeValue(val)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeValue(val)
		}
		return out
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.ObjectID:
		return t.Hex()
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case int:
		return float64(t)
	default:
		return v
	}
}

func childMap(doc map[string]any, key string) map[string]any {
	m, _ := doc[key].(map[string]any)
	return m
}

func stringField(doc map[string]any, key string) string {
	s, _ := doc[key].(string)
	return s
}

// firstString reads nestedKey from the subdocument when present, then
// falls back to flatKey on the top-level document. Older writers used
// flat fields, newer ones nest.
func firstString(nested, doc map[string]any, nestedKey, flatKey string) string {
	if nested != nil {
		if s := stringField(nested, nestedKey); s != "" {
			return s
		}
	}
	return stringField(doc, flatKey)
}

func timeField(doc map[string]any, key string) time.Time {
	switch t := doc[key].(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
