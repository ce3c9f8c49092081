package report

import (
	"fmt"
	"math"
	"time"

	"github.com/fairyhunter13/ai-interview-reporter/internal/domain"
	"github.com/fairyhunter13/ai-interview-reporter/internal/plagiarism"
	"github.com/fairyhunter13/ai-interview-reporter/internal/scoring"
)

// Status classification cut-offs over the overall score.
const (
	shortlistScore = 60
	pendingScore   = 50

	// plagiarismRejectAbove forces rejection regardless of scores.
	plagiarismRejectAbove = 30
)

// Builder turns one raw session into a candidate summary.
type Builder struct {
	Thresholds *Thresholds
}

// NewBuilder constructs a Builder; nil thresholds fall back to the
// built-in table.
func NewBuilder(t *Thresholds) *Builder {
	if t == nil {
		t = DefaultThresholds()
	}
	return &Builder{Thresholds: t}
}

// Build produces the summary for one session, or nil when the session
// has no result data, was never started, and carries no candidate
// contact info at all.
func (b *Builder) Build(s domain.RawSession) *domain.CandidateSummary {
	qa := ExtractQA(s.Payload)
	if len(qa) == 0 && s.StartedAt.IsZero() && !s.HasContactInfo() {
		return nil
	}

	hint := scoring.ExamHint{
		JobTitle:    s.JobTitle,
		ExamName:    s.ExamName,
		Subcategory: s.SubcategoryName,
		Company:     s.CompanyName,
	}
	role := resolveRole(s)
	scores := scoring.Normalize(qa, hint)
	meta := ExtractMeta(s.Payload)

	plag := plagiarismScore(meta, qa)
	threshold := b.Thresholds.For(role, hint, s.QuestionCount)
	realCount := 0
	for _, item := range qa {
		if item.IsRealQuestion {
			realCount++
		}
	}
	incomplete := realCount < threshold

	minutes := durationMinutes(s, meta)
	ts := bestTimestamp(s)

	return &domain.CandidateSummary{
		SessionKey:      domain.IdentityKey(s.SessionID, s.CandidateID, ts),
		CandidateID:     s.CandidateID,
		Name:            domain.DisplayName(s.FirstName, s.LastName, s.Email),
		Email:           s.Email,
		Role:            role,
		Status:          classify(s.Status, incomplete, scores.Overall, plag),
		Overall:         scores.Overall,
		Technical:       scores.Technical,
		Communication:   scores.Communication,
		Behavioral:      scores.Behavioral,
		Plagiarism:      plag,
		Authenticity:    100 - plag,
		Duration:        fmt.Sprintf("%dm", minutes),
		DurationMinutes: minutes,
		Timestamp:       ts,
		Source:          s.Source,
	}
}

// classify applies the pipeline-status rules in order; the plagiarism
// override trumps everything else.
func classify(sessionStatus string, incomplete bool, overall, plag float64) domain.CandidateStatus {
	if plag > plagiarismRejectAbove {
		return domain.StatusRejected
	}
	switch {
	case sessionStatus == domain.SessionAbandoned:
		return domain.StatusRejected
	case incomplete:
		return domain.StatusRejected
	case overall >= shortlistScore:
		return domain.StatusShortlisted
	case overall >= pendingScore:
		return domain.StatusPending
	default:
		return domain.StatusRejected
	}
}

// plagiarismScore prefers a value already present on the payload and
// otherwise analyzes the answers.
func plagiarismScore(meta Meta, qa []domain.QAItem) float64 {
	if meta.Plagiarism != nil {
		return clampScore(*meta.Plagiarism)
	}
	if len(qa) == 0 {
		return 0
	}
	answers := make([]plagiarism.Answer, 0, len(qa))
	for _, item := range qa {
		answers = append(answers, plagiarism.Answer{Text: item.Answer, Question: item.Question})
	}
	return plagiarism.Analyze(answers).Plagiarism
}

func durationMinutes(s domain.RawSession, meta Meta) int {
	var d time.Duration
	switch {
	case !s.CompletedAt.IsZero() && !s.StartedAt.IsZero():
		d = s.CompletedAt.Sub(s.StartedAt)
	case !s.CompletedAt.IsZero() && !s.CreatedAt.IsZero():
		d = s.CompletedAt.Sub(s.CreatedAt)
	case meta.DurationMinutes != nil:
		d = time.Duration(*meta.DurationMinutes) * time.Minute
	}
	if d < 0 {
		d = 0
	}
	return int(math.Round(d.Minutes()))
}

func bestTimestamp(s domain.RawSession) time.Time {
	switch {
	case !s.CompletedAt.IsZero():
		return s.CompletedAt
	case !s.StartedAt.IsZero():
		return s.StartedAt
	default:
		return s.CreatedAt
	}
}

func resolveRole(s domain.RawSession) string {
	if s.JobTitle != "" {
		return s.JobTitle
	}
	if s.ExamName != "" {
		if s.SubcategoryName != "" {
			return s.ExamName + " - " + s.SubcategoryName
		}
		return s.ExamName
	}
	return "Position"
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
