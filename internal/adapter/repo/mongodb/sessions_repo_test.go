package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fairyhunter13/ai-interview-reporter/internal/domain"
)

func TestMapDocument_NestedWriters(t *testing.T) {
	started := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	doc := bson.M{
		"_id":       primitive.NewObjectID(),
		"sessionId": "sess-1",
		"status":    domain.SessionCompleted,
		"startedAt": primitive.NewDateTimeFromTime(started),
		"candidate": bson.M{
			"id": "cand-1", "email": "jo@example.com",
			"firstName": "Jo", "lastName": "Doe",
		},
		"position": bson.M{"jobTitle": "Data Engineer"},
		"exam":     bson.M{"name": "Interview", "subcategoryName": "Data", "companyName": "Acme"},
		"questions": bson.A{
			bson.M{"question": "q1", "answer": "a1", "scoring": bson.M{"overallScore": int32(8)}},
		},
		"questionCount": int32(5),
	}

	s, err := mapDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", s.SessionID)
	assert.Equal(t, "cand-1", s.CandidateID)
	assert.Equal(t, "jo@example.com", s.Email)
	assert.Equal(t, "Data Engineer", s.JobTitle)
	assert.Equal(t, "Data", s.SubcategoryName)
	assert.Equal(t, started, s.StartedAt)
	assert.Equal(t, 5, s.QuestionCount)
	assert.Equal(t, domain.SourceDocument, s.Source)
	assert.True(t, keepSession(s))
}

func TestMapDocument_FlatLegacyWriters(t *testing.T) {
	doc := bson.M{
		"_id":         primitive.NewObjectID(),
		"status":      domain.SessionAbandoned,
		"candidateId": "cand-2",
		"email":       "flat@example.com",
		"firstName":   "Flat",
		"lastName":    "Writer",
		"examName":    "Interview",
		"startedAt":   "2026-03-02T10:00:00Z",
	}

	s, err := mapDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, doc["_id"].(primitive.ObjectID).Hex(), s.SessionID)
	assert.Equal(t, "cand-2", s.CandidateID)
	assert.Equal(t, "flat@example.com", s.Email)
	assert.Equal(t, "Interview", s.ExamName)
	assert.Equal(t, 2026, s.StartedAt.Year())
}

func TestMapDocument_MissingStatusIsMalformed(t *testing.T) {
	_, err := mapDocument(bson.M{"sessionId": "x"})
	assert.ErrorIs(t, err, domain.ErrMalformedSession)
}

func TestKeepSession(t *testing.T) {
	// QA items alone keep a session.
	withQA, err := mapDocument(bson.M{
		"sessionId": "a", "status": domain.SessionCompleted,
		"questions": bson.A{bson.M{"question": "q", "answer": "a"}},
	})
	require.NoError(t, err)
	assert.True(t, keepSession(withQA))

	// Contact info alone keeps a session (surfaces as rejected later).
	withEmail, err := mapDocument(bson.M{
		"sessionId": "b", "status": domain.SessionAbandoned, "email": "x@y.z",
	})
	require.NoError(t, err)
	assert.True(t, keepSession(withEmail))

	// Nothing at all drops it.
	ghost, err := mapDocument(bson.M{"sessionId": "c", "status": domain.SessionAbandoned})
	require.NoError(t, err)
	assert.False(t, keepSession(ghost))
}

func TestNormalizeValue(t *testing.T) {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	oid := primitive.NewObjectID()
	in := bson.M{
		"nested": bson.M{"when": primitive.NewDateTimeFromTime(ts)},
		"list":   bson.A{int32(1), int64(2), "three"},
		"id":     oid,
	}

	out, ok := normalizeValue(in).(map[string]any)
	require.True(t, ok)

	nested, ok := out["nested"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, ts, nested["when"])

	list, ok := out["list"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{float64(1), float64(2), "three"}, list)

	assert.Equal(t, oid.Hex(), out["id"])
}

func TestMapDocument_PayloadFeedsShapeMatchers(t *testing.T) {
	s, err := mapDocument(bson.M{
		"sessionId": "shape", "status": domain.SessionCompleted,
		"finalReport": bson.M{
			"questions": bson.A{bson.M{"question": "q", "answer": "a"}},
		},
	})
	require.NoError(t, err)
	assert.True(t, keepSession(s), "finalReport.questions must be visible through the payload")
}
