package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-reporter/internal/domain"
)

// rowsStub implements pgx.Rows over preloaded row values.
type rowsStub struct {
	rows [][]any
	idx  int
	err  error
}

func (r *rowsStub) Close()                                       {}
func (r *rowsStub) Err() error                                   { return r.err }
func (r *rowsStub) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *rowsStub) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *rowsStub) Next() bool                                   { r.idx++; return r.idx <= len(r.rows) }
func (r *rowsStub) Values() ([]any, error)                       { return nil, nil }
func (r *rowsStub) RawValues() [][]byte                          { return nil }
func (r *rowsStub) Conn() *pgx.Conn                              { return nil }

func (r *rowsStub) Scan(dest ...any) error {
	src := r.rows[r.idx-1]
	if len(src) != len(dest) {
		return fmt.Errorf("scan arity mismatch: %d != %d", len(src), len(dest))
	}
	for i, v := range src {
		switch d := dest[i].(type) {
		case *string:
			if v == nil {
				*d = ""
			} else {
				s, ok := v.(string)
				if !ok {
					return fmt.Errorf("col %d: want string, got %T", i, v)
				}
				*d = s
			}
		case *int:
			if v == nil {
				*d = 0
			} else {
				n, ok := v.(int)
				if !ok {
					return fmt.Errorf("col %d: want int, got %T", i, v)
				}
				*d = n
			}
		case **time.Time:
			if v == nil {
				*d = nil
			} else {
				t, ok := v.(time.Time)
				if !ok {
					return fmt.Errorf("col %d: want time, got %T", i, v)
				}
				*d = &t
			}
		case *[]byte:
			if v == nil {
				*d = nil
			} else {
				b, ok := v.([]byte)
				if !ok {
					return fmt.Errorf("col %d: want bytes, got %T", i, v)
				}
				*d = b
			}
		default:
			return fmt.Errorf("col %d: unsupported dest %T", i, dest[i])
		}
	}
	return nil
}

// rowStub implements pgx.Row for QueryRow stubs.
type rowStub struct{ scan func(dest ...any) error }

func (r rowStub) Scan(dest ...any) error { return r.scan(dest...) }

// poolStub implements PgxPool.
type poolStub struct {
	rows     pgx.Rows
	queryErr error
	row      rowStub
}

func (p *poolStub) Exec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (p *poolStub) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row { return p.row }

func (p *poolStub) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	if p.queryErr != nil {
		return nil, p.queryErr
	}
	return p.rows, nil
}

func sessionRow(id string, started any, payload []byte) []any {
	created := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	return []any{
		id, "tok-" + id, domain.SessionCompleted,
		created, started, created.Add(30 * time.Minute), 8,
		payload,
		"cand-" + id, id + "@example.com", "First", "Last",
		"Backend Engineer", "Interview", "Backend", "Acme",
	}
}

func TestFetchSessions(t *testing.T) {
	started := time.Date(2026, 2, 1, 9, 5, 0, 0, time.UTC)
	repo := NewSessionRepo(&poolStub{rows: &rowsStub{rows: [][]any{
		sessionRow("s1", started, []byte(`{"questions":[{"question":"q","answer":"a"}]}`)),
	}}})

	got, err := repo.FetchSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	s := got[0]
	assert.Equal(t, "s1", s.SessionID)
	assert.Equal(t, "cand-s1", s.CandidateID)
	assert.Equal(t, started, s.StartedAt)
	assert.Equal(t, domain.SourceRelational, s.Source)
	m, ok := s.Payload.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, m, "questions")
}

func TestFetchSessions_DoubleEncodedPayload(t *testing.T) {
	repo := NewSessionRepo(&poolStub{rows: &rowsStub{rows: [][]any{
		sessionRow("s1", nil, []byte(`"{\"questions\":[{\"question\":\"q\"}]}"`)),
	}}})

	got, err := repo.FetchSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	m, ok := got[0].Payload.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, m, "questions")
}

func TestFetchSessions_KeepsStartedSessionWithoutPayload(t *testing.T) {
	started := time.Date(2026, 2, 1, 9, 5, 0, 0, time.UTC)
	repo := NewSessionRepo(&poolStub{rows: &rowsStub{rows: [][]any{
		sessionRow("empty-but-started", started, nil),
	}}})

	got, err := repo.FetchSessions(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFetchSessions_DropsNeverStartedWithoutPayload(t *testing.T) {
	repo := NewSessionRepo(&poolStub{rows: &rowsStub{rows: [][]any{
		sessionRow("ghost", nil, nil),
		sessionRow("ghost2", nil, []byte(`{}`)),
	}}})

	got, err := repo.FetchSessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFetchSessions_MalformedRowSkippedNotFatal(t *testing.T) {
	started := time.Date(2026, 2, 1, 9, 5, 0, 0, time.UTC)
	repo := NewSessionRepo(&poolStub{rows: &rowsStub{rows: [][]any{
		sessionRow("bad", started, []byte(`{not json`)),
		sessionRow("good", started, []byte(`{"questions":[{"question":"q"}]}`)),
	}}})

	got, err := repo.FetchSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "good", got[0].SessionID)
}

func TestFetchSessions_QueryFailureIsSourceUnavailable(t *testing.T) {
	repo := NewSessionRepo(&poolStub{queryErr: errors.New("connection refused")})
	_, err := repo.FetchSessions(context.Background())
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestCountCandidates(t *testing.T) {
	repo := NewSessionRepo(&poolStub{row: rowStub{scan: func(dest ...any) error {
		n, ok := dest[0].(*int)
		if !ok {
			return errors.New("unexpected dest")
		}
		*n = 42
		return nil
	}}})

	n, err := repo.CountCandidates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestCountCandidates_Error(t *testing.T) {
	repo := NewSessionRepo(&poolStub{row: rowStub{scan: func(_ ...any) error {
		return errors.New("boom")
	}}})
	_, err := repo.CountCandidates(context.Background())
	assert.Error(t, err)
}

func TestParsePayload(t *testing.T) {
	v, err := parsePayload(nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = parsePayload([]byte(`""`))
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = parsePayload([]byte(`[1,2]`))
	require.NoError(t, err)
	assert.Len(t, v, 2)

	_, err = parsePayload([]byte(`{bad`))
	assert.Error(t, err)
}
