// Package scoring computes the four comparable dimension scores for
// one interview from its per-question scoring records. Three schemas
// are in the wild: the generic interview schema, the HR schema, and a
// legacy schema carrying direct dimension marks. Classification is
// explicit so the field-sniffing lives in exactly one place.
package scoring

import (
	"strings"

	"github.com/fairyhunter13/ai-interview-reporter/internal/domain"
)

// ExamHint carries the role/exam context used to disambiguate the
// scoring schema and the minimum-question threshold.
type ExamHint struct {
	JobTitle    string
	ExamName    string
	Subcategory string
	Company     string
}

// IsHR reports whether the hint describes an HR interview: the role
// text is "hr", or the exam is an interview with an HR subcategory or
// company tag.
func (h ExamHint) IsHR() bool {
	role := strings.ToLower(strings.TrimSpace(h.JobTitle))
	if role == "hr" || strings.Contains(role, "hr ") || strings.HasSuffix(role, " hr") {
		return true
	}
	exam := strings.ToLower(h.ExamName)
	if strings.Contains(exam, "interview") {
		sub := strings.ToLower(h.Subcategory)
		company := strings.ToLower(h.Company)
		if strings.Contains(sub, "hr") || strings.Contains(company, "hr") {
			return true
		}
	}
	return false
}

// Payload is the schema-tagged view of a session's scored QA items.
type Payload interface {
	isPayload()
}

// GenericPayload carries items scored under the generic interview
// schema (accuracy/ideas/voice/grammar/organization/stopWords).
type GenericPayload struct{ Items []domain.QAItem }

// HRPayload carries items scored under the HR schema.
type HRPayload struct{ Items []domain.QAItem }

// LegacyPayload carries items with direct technical/communication/
// behavioral marks.
type LegacyPayload struct{ Items []domain.QAItem }

func (GenericPayload) isPayload() {}
func (HRPayload) isPayload()      {}
func (LegacyPayload) isPayload()  {}

// Classify tags the scored items with their schema. Items must already
// be filtered to those carrying a scoring or feedback payload.
func Classify(items []domain.QAItem, hint ExamHint) Payload {
	if hint.IsHR() {
		return HRPayload{Items: items}
	}
	for _, it := range items {
		card := it.Card()
		if card == nil {
			continue
		}
		// First scored item decides.
		if card.HRFlag || card.LanguageFlowScore != 0 || card.CommunicationClarityScore != 0 {
			return HRPayload{Items: items}
		}
		if card.IdeasScore != 0 || card.AccuracyScore != 0 {
			return GenericPayload{Items: items}
		}
		return LegacyPayload{Items: items}
	}
	return LegacyPayload{Items: items}
}
