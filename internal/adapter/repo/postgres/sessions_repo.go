// Package postgres reads interview sessions out of the relational
// store. The store joins session rows with candidate/exam/role lookup
// tables and embeds the result payload as a JSON column, sometimes
// double-encoded by older writers.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/ai-interview-reporter/internal/domain"
)

// PgxPool is a minimal subset of pgxpool used by the repos for easy testing.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// SessionRepo extracts completed and abandoned sessions from PostgreSQL.
type SessionRepo struct{ Pool PgxPool }

// NewSessionRepo constructs a SessionRepo with the given pool.
func NewSessionRepo(p PgxPool) *SessionRepo { return &SessionRepo{Pool: p} }

// Name identifies this source in merge logs and metrics.
func (r *SessionRepo) Name() domain.Source { return domain.SourceRelational }

const fetchSessionsQuery = `SELECT s.id::text, COALESCE(s.token,''), s.status,
	s.created_at, s.started_at, s.completed_at, COALESCE(s.question_count,0),
	s.results_payload,
	COALESCE(c.id::text,''), COALESCE(c.email,''), COALESCE(c.first_name,''), COALESCE(c.last_name,''),
	COALESCE(p.job_title,''), COALESCE(e.name,''), COALESCE(e.subcategory_name,''), COALESCE(e.company_name,'')
FROM interview_sessions s
LEFT JOIN candidates c ON c.id = s.candidate_id
LEFT JOIN positions p ON p.id = s.position_id
LEFT JOIN exams e ON e.id = s.exam_id
WHERE s.status = ANY($1) AND s.is_active`

// FetchSessions loads finished sessions. Sessions that were never
// started and carry no result payload are filtered out here; a
// malformed row is logged and skipped, never fatal to the batch.
func (r *SessionRepo) FetchSessions(ctx domain.Context) ([]domain.RawSession, error) {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.Fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.sql.table", "interview_sessions"),
	)

	rows, err := r.Pool.Query(ctx, fetchSessionsQuery, []string{domain.SessionCompleted, domain.SessionAbandoned})
	if err != nil {
		return nil, fmt.Errorf("op=sessions.fetch: %w", domain.ErrSourceUnavailable)
	}
	defer rows.Close()

	var out []domain.RawSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			slog.Warn("skipping malformed session row", slog.Any("error", err))
			continue
		}
		// Abandoned near-empty interviews stay in on purpose: they
		// surface as rejected instead of disappearing from reports.
		if !hasPayload(s.Payload) && s.StartedAt.IsZero() {
			continue
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=sessions.fetch rows: %w", err)
	}
	return out, nil
}

// CountCandidates returns the live distinct candidate count used by
// the cache staleness probe.
func (r *SessionRepo) CountCandidates(ctx domain.Context) (int, error) {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.CountCandidates")
	defer span.End()

	q := `SELECT COUNT(DISTINCT s.candidate_id) FROM interview_sessions s WHERE s.status = ANY($1) AND s.is_active`
	var n int
	if err := r.Pool.QueryRow(ctx, q, []string{domain.SessionCompleted, domain.SessionAbandoned}).Scan(&n); err != nil {
		return 0, fmt.Errorf("op=sessions.count: %w", err)
	}
	return n, nil
}

func scanSession(rows pgx.Rows) (domain.RawSession, error) {
	var (
		s                           domain.RawSession
		created, started, completed *time.Time
		payload                     []byte
	)
	if err := rows.Scan(
		&s.SessionID, &s.Token, &s.Status,
		&created, &started, &completed, &s.QuestionCount,
		&payload,
		&s.CandidateID, &s.Email, &s.FirstName, &s.LastName,
		&s.JobTitle, &s.ExamName, &s.SubcategoryName, &s.CompanyName,
	); err != nil {
		return domain.RawSession{}, fmt.Errorf("op=sessions.scan: %w: %w", domain.ErrMalformedSession, err)
	}
	if created != nil {
		s.CreatedAt = *created
	}
	if started != nil {
		s.StartedAt = *started
	}
	if completed != nil {
		s.CompletedAt = *completed
	}
	parsed, err := parsePayload(payload)
	if err != nil {
		return domain.RawSession{}, fmt.Errorf("op=sessions.payload session=%s: %w: %w", s.SessionID, domain.ErrMalformedSession, err)
	}
	s.Payload = parsed
	s.Source = domain.SourceRelational
	return s, nil
}

// parsePayload decodes the JSON result column, unwrapping the
// string-encoded (double-serialized) payloads older writers produced.
func parsePayload(raw []byte) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	if s, ok := v.(string); ok {
		if s == "" {
			return nil, nil
		}
		var inner any
		if err := json.Unmarshal([]byte(s), &inner); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return v, nil
}

func hasPayload(v any) bool {
	switch p := v.(type) {
	case nil:
		return false
	case map[string]any:
		return len(p) > 0
	case []any:
		return len(p) > 0
	default:
		return true
	}
}
