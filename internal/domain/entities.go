package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("not found")
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrMalformedSession  = errors.New("malformed session")
	ErrEmptyRegeneration = errors.New("empty regeneration")
	ErrInternal          = errors.New("internal error")
)

// Source identifies which store a session (or summary) came from.
type Source string

const (
	SourceRelational Source = "relational"
	SourceDocument   Source = "document"
)

// Session lifecycle statuses as stored by the interview service.
const (
	SessionScheduled = "scheduled"
	SessionCompleted = "completed"
	SessionAbandoned = "abandoned"
)

// RawSession is the read-only view of one interview attempt as seen
// through either store. Payload carries the decoded result document in
// whatever nesting shape it arrived in; shape matching happens later.
type RawSession struct {
	SessionID   string
	Token       string
	CandidateID string
	Email       string
	FirstName   string
	LastName    string

	JobTitle        string
	ExamName        string
	SubcategoryName string
	CompanyName     string

	CreatedAt   time.Time
	StartedAt   time.Time
	CompletedAt time.Time
	Status      string

	// QuestionCount is the explicitly configured number of questions
	// for the session; zero means not configured.
	QuestionCount int

	Payload any
	Source  Source
}

// HasContactInfo reports whether the session identifies its candidate
// well enough to surface in a report at all.
func (s RawSession) HasContactInfo() bool {
	return s.CandidateID != "" || s.Email != "" || s.FirstName != "" || s.LastName != ""
}

// ScoreCard holds every per-question numeric criterion any of the three
// scoring schemas may attach to a QA item. A zero value means the
// criterion is absent; the schemas never emit genuine zero marks.
type ScoreCard struct {
	// Generic interview schema
	AccuracyScore     float64
	IdeasScore        float64
	VoiceScore        float64
	GrammarScore      float64
	OrganizationScore float64
	StopWordsScore    float64

	// HR schema
	CommunicationClarityScore float64
	PronunciationScore        float64
	FluencyScore              float64
	VocabularyScore           float64
	ToneScore                 float64
	LanguageFlowScore         float64
	LanguageLevelScore        float64
	ConfidenceScore           float64
	FlowOfThoughtsScore       float64
	GesturesScore             float64
	ResumeScore               float64
	NativeLanguageImpactScore float64
	BodyLanguageScore         float64
	DressingScore             float64

	// Legacy schema (direct dimension marks)
	Technical     float64
	Communication float64
	Behavioral    float64

	OverallScore float64
	HRFlag       bool
}

// IsZero reports whether no criterion is present on the card.
func (c ScoreCard) IsZero() bool { return c == ScoreCard{} }

// QAItem is one question/answer pair within a session. Scoring is the
// current schema-tagged payload; Feedback is the legacy one. When both
// are present Scoring wins.
type QAItem struct {
	Question       string
	Answer         string
	IsRealQuestion bool
	Scoring        *ScoreCard
	Feedback       *ScoreCard
}

// Card returns the effective scoring payload for the item, preferring
// Scoring over legacy Feedback, or nil when the item is unscored.
func (q QAItem) Card() *ScoreCard {
	if q.Scoring != nil {
		return q.Scoring
	}
	return q.Feedback
}

// CandidateStatus is the hiring-pipeline classification of a candidate.
type CandidateStatus string

const (
	StatusShortlisted CandidateStatus = "shortlisted"
	StatusPending     CandidateStatus = "pending"
	StatusRejected    CandidateStatus = "rejected"
)

// CandidateSummary is the canonical per-candidate output unit.
// Invariants: Authenticity+Plagiarism == 100; all four scores in [0,100].
// Built once per underlying session and immutable thereafter.
type CandidateSummary struct {
	SessionKey  string `json:"sessionKey"`
	CandidateID string `json:"candidateId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`

	Status CandidateStatus `json:"status"`

	Overall       float64 `json:"overall"`
	Technical     float64 `json:"technical"`
	Communication float64 `json:"communication"`
	Behavioral    float64 `json:"behavioral"`

	Plagiarism   float64 `json:"plagiarism"`
	Authenticity float64 `json:"authenticity"`

	Duration        string    `json:"duration"`
	DurationMinutes int       `json:"durationMinutes"`
	Timestamp       time.Time `json:"timestamp"`

	Source Source `json:"source"`
}

// IdentityKey computes the dedup key for a session: the stable
// per-session identifier when present, else candidate id + timestamp.
func IdentityKey(sessionID, candidateID string, ts time.Time) string {
	if sessionID != "" {
		return sessionID
	}
	return fmt.Sprintf("%s|%d", candidateID, ts.Unix())
}

// ReportSummary is the fleet-level aggregate over all candidates.
type ReportSummary struct {
	TotalCandidates    int    `json:"totalCandidates"`
	AverageScore       string `json:"averageScore"`
	ShortlistedCount   int    `json:"shortlistedCount"`
	AvgDuration        string `json:"avgDuration"`
	HighPerformerCount int    `json:"highPerformerCount"`
	NeedsReviewCount   int    `json:"needsReviewCount"`
	PendingCount       int    `json:"pendingCount"`
}

// ZeroReportSummary is the well-shaped default served when there is
// nothing to report. Callers must never see a nil summary.
func ZeroReportSummary() ReportSummary {
	return ReportSummary{AverageScore: "0%", AvgDuration: "0m"}
}

// CachedReport is the single persisted {summary, candidates} pair.
// It is always replaced as a whole document, never patched.
type CachedReport struct {
	Summary     ReportSummary      `json:"summary"`
	Candidates  []CandidateSummary `json:"candidates"`
	GeneratedAt time.Time          `json:"generatedAt"`
	Revision    string             `json:"revision"`

	// Per-source session counts for observability.
	SourceSessions map[Source]int `json:"sourceSessions,omitempty"`
}

// EmptyCachedReport returns the all-zero default report shape.
func EmptyCachedReport() CachedReport {
	return CachedReport{
		Summary:     ZeroReportSummary(),
		Candidates:  []CandidateSummary{},
		GeneratedAt: time.Now().UTC(),
	}
}

// DisplayName resolves a candidate display name from explicit name
// parts, falling back to the email local-part, then a fixed default.
func DisplayName(first, last, email string) string {
	name := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	if name != "" {
		return name
	}
	if at := strings.IndexByte(email, '@'); at > 0 {
		local := email[:at]
		r := []rune(local)
		r[0] = unicode.ToUpper(r[0])
		return string(r)
	}
	return "Unknown Candidate"
}

// Ports

// SessionSource fetches raw sessions from one backing store.
type SessionSource interface {
	Name() Source
	FetchSessions(ctx context.Context) ([]RawSession, error)
}

// CandidateCounter exposes the live candidate count used by the cache
// staleness check.
type CandidateCounter interface {
	CountCandidates(ctx context.Context) (int, error)
}

// ReportCache persists the latest computed report as one document.
// Load returns ErrNotFound when no report has been stored yet.
type ReportCache interface {
	Load(ctx context.Context) (CachedReport, error)
	Store(ctx context.Context, rep CachedReport) error
}

// Context is an alias so the domain package does not spell out std
// context at every port; adapters pass context.Context through.
type Context = context.Context
