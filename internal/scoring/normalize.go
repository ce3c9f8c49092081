package scoring

import (
	"github.com/fairyhunter13/ai-interview-reporter/internal/domain"
)

// Scores are the four normalized dimensions, each 0..100.
type Scores struct {
	Overall       float64
	Technical     float64
	Communication float64
	Behavioral    float64
}

// Normalize computes the dimension scores for one session's QA items
// under whichever schema they carry. Items without scoring data are
// ignored; if nothing is scored all four outputs are zero.
func Normalize(items []domain.QAItem, hint ExamHint) Scores {
	scored := make([]domain.QAItem, 0, len(items))
	for _, it := range items {
		if it.Card() != nil {
			scored = append(scored, it)
		}
	}
	if len(scored) == 0 {
		return Scores{}
	}

	var s Scores
	switch p := Classify(scored, hint).(type) {
	case GenericPayload:
		s = normalizeGeneric(p.Items)
	case HRPayload:
		s = normalizeHR(p.Items)
	case LegacyPayload:
		s = normalizeLegacy(p.Items)
	}

	// Values on the 1-10 scale become percentages; values already
	// above 10 pass through. Applied independently per output; a
	// genuine 10% is indistinguishable from a perfect legacy 10 and
	// becomes 100 (known accuracy limitation, preserved on purpose).
	s.Overall = clamp(toPercent(s.Overall))
	s.Technical = clamp(toPercent(s.Technical))
	s.Communication = clamp(toPercent(s.Communication))
	s.Behavioral = clamp(toPercent(s.Behavioral))
	return s
}

func normalizeGeneric(items []domain.QAItem) Scores {
	var tech, comm, behav, overall float64
	overallSeen := false
	for _, it := range items {
		c := it.Card()
		tech += mean(c.AccuracyScore, c.IdeasScore)
		comm += mean(c.VoiceScore, c.GrammarScore)
		behav += mean(c.OrganizationScore, c.StopWordsScore)
		overall += c.OverallScore
		if c.OverallScore != 0 {
			overallSeen = true
		}
	}
	n := float64(len(items))
	s := Scores{Technical: tech / n, Communication: comm / n, Behavioral: behav / n}
	if overallSeen {
		s.Overall = overall / n
	} else {
		s.Overall = mean(s.Technical, s.Communication, s.Behavioral)
	}
	return s
}

func normalizeHR(items []domain.QAItem) Scores {
	var comm, behav, tech, overall float64
	overallSeen := false
	var criteriaSum float64
	var criteriaN int
	for _, it := range items {
		c := it.Card()
		comm += mean(c.CommunicationClarityScore, c.GrammarScore, c.PronunciationScore, c.FluencyScore, c.VocabularyScore, c.ToneScore)
		behav += mean(c.LanguageFlowScore, c.LanguageLevelScore, c.ConfidenceScore, c.FlowOfThoughtsScore, c.GesturesScore)
		tech += meanPresent(c.ResumeScore, c.NativeLanguageImpactScore, c.BodyLanguageScore, c.DressingScore)
		overall += c.OverallScore
		if c.OverallScore != 0 {
			overallSeen = true
		}
		for _, v := range hrCriteria(c) {
			if v != 0 {
				criteriaSum += v
				criteriaN++
			}
		}
	}
	n := float64(len(items))
	s := Scores{Technical: tech / n, Communication: comm / n, Behavioral: behav / n}
	switch {
	case overallSeen:
		s.Overall = overall / n
	case criteriaN > 0:
		s.Overall = criteriaSum / float64(criteriaN)
	default:
		s.Overall = mean(s.Technical, s.Communication, s.Behavioral)
	}
	return s
}

func normalizeLegacy(items []domain.QAItem) Scores {
	var tech, comm, behav float64
	for _, it := range items {
		c := it.Card()
		tech += c.Technical
		comm += c.Communication
		behav += c.Behavioral
	}
	n := float64(len(items))
	s := Scores{Technical: tech / n, Communication: comm / n, Behavioral: behav / n}
	s.Overall = mean(s.Technical, s.Communication, s.Behavioral)
	return s
}

// hrCriteria lists every individually scoreable HR sub-criterion.
func hrCriteria(c *domain.ScoreCard) []float64 {
	return []float64{
		c.CommunicationClarityScore, c.GrammarScore, c.PronunciationScore,
		c.FluencyScore, c.VocabularyScore, c.ToneScore,
		c.LanguageFlowScore, c.LanguageLevelScore, c.ConfidenceScore,
		c.FlowOfThoughtsScore, c.GesturesScore,
		c.ResumeScore, c.NativeLanguageImpactScore, c.BodyLanguageScore, c.DressingScore,
	}
}

// mean is the fixed-arity mean including zero values.
func mean(vals ...float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// meanPresent averages only the non-zero values; zero when none.
func meanPresent(vals ...float64) float64 {
	var sum float64
	var n int
	for _, v := range vals {
		if v != 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// toPercent converts a 1-10 scale value to a percentage; values above
// 10 are assumed to already be percentages.
func toPercent(v float64) float64 {
	if v <= 10 {
		return v * 10
	}
	return v
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
