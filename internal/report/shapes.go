// Package report turns raw sessions from both stores into canonical
// candidate summaries and fleet-level aggregates.
package report

import (
	"strconv"
	"strings"

	"github.com/fairyhunter13/ai-interview-reporter/internal/domain"
)

// shapeMatcher locates a QA list inside one known payload nesting
// shape. Matchers return nil when the shape does not apply.
type shapeMatcher struct {
	name  string
	match func(payload any) []any
}

// qaShapes is the ordered list of known payload shapes accumulated
// over the legacy writers. The first non-empty match wins.
var qaShapes = []shapeMatcher{
	{"bare-array", func(p any) []any {
		arr, _ := p.([]any)
		return arr
	}},
	{"questions", func(p any) []any {
		return arrayAt(p, "questions")
	}},
	{"result.questions", func(p any) []any {
		return arrayAt(p, "result", "questions")
	}},
	{"finalReport.questions", func(p any) []any {
		return arrayAt(p, "finalReport", "questions")
	}},
	{"finalReport.interviewData", func(p any) []any {
		return arrayAt(p, "finalReport", "interviewData")
	}},
	{"finalReport.result.interviewData", func(p any) []any {
		return arrayAt(p, "finalReport", "result", "interviewData")
	}},
	{"interviewData", func(p any) []any {
		return arrayAt(p, "interviewData")
	}},
}

// ExtractQA pulls the QA items out of a decoded result payload,
// trying each known nesting shape in order. Entries that are not
// objects are skipped; a payload with no recognizable shape yields an
// empty list, never an error.
func ExtractQA(payload any) []domain.QAItem {
	for _, shape := range qaShapes {
		raw := shape.match(payload)
		if len(raw) == 0 {
			continue
		}
		items := make([]domain.QAItem, 0, len(raw))
		for _, e := range raw {
			m, ok := e.(map[string]any)
			if !ok {
				continue
			}
			items = append(items, decodeQAItem(m))
		}
		if len(items) > 0 {
			return items
		}
	}
	return nil
}

// Meta is the handful of precomputed values a result payload may
// already carry.
type Meta struct {
	Plagiarism      *float64
	DurationMinutes *float64
}

// ExtractMeta reads precomputed plagiarism/duration values from the
// payload, checking the same nesting levels the QA shapes use.
func ExtractMeta(payload any) Meta {
	var meta Meta
	for _, holder := range []any{payload, childAt(payload, "finalReport"), childAt(payload, "result"), childAt(payload, "finalReport", "result")} {
		m, ok := holder.(map[string]any)
		if !ok {
			continue
		}
		if meta.Plagiarism == nil {
			if v, ok := numberAt(m, "plagiarismScore", "plagiarism"); ok {
				meta.Plagiarism = &v
			}
		}
		if meta.DurationMinutes == nil {
			if v, ok := numberAt(m, "durationMinutes", "duration"); ok {
				meta.DurationMinutes = &v
			}
		}
	}
	return meta
}

func decodeQAItem(m map[string]any) domain.QAItem {
	item := domain.QAItem{
		Question:       stringAt(m, "question", "questionText"),
		Answer:         stringAt(m, "answer", "answerText", "response"),
		IsRealQuestion: true,
	}
	if v, ok := m["isRealQuestion"]; ok {
		if b, ok := toBool(v); ok {
			item.IsRealQuestion = b
		}
	}
	if sc, ok := m["scoring"].(map[string]any); ok {
		item.Scoring = decodeCard(sc)
	}
	if fb, ok := m["feedback"].(map[string]any); ok {
		item.Feedback = decodeCard(fb)
	}
	return item
}

// decodeCard reads every known criterion field, tolerating the string
// encoded numbers older writers produced. Returns nil when nothing
// scoreable is present.
func decodeCard(m map[string]any) *domain.ScoreCard {
	c := domain.ScoreCard{}
	read := func(dst *float64, keys ...string) {
		if v, ok := numberAt(m, keys...); ok {
			*dst = v
		}
	}
	read(&c.AccuracyScore, "accuracyScore", "accuracy")
	read(&c.IdeasScore, "ideasScore", "ideas")
	read(&c.VoiceScore, "voiceScore", "voice")
	read(&c.GrammarScore, "grammarScore", "grammar")
	read(&c.OrganizationScore, "organizationScore", "organization")
	read(&c.StopWordsScore, "stopWordsScore", "stopWords")
	read(&c.CommunicationClarityScore, "communicationClarityScore", "clarityScore")
	read(&c.PronunciationScore, "pronunciationScore")
	read(&c.FluencyScore, "fluencyScore")
	read(&c.VocabularyScore, "vocabularyScore")
	read(&c.ToneScore, "toneScore")
	read(&c.LanguageFlowScore, "languageFlowScore")
	read(&c.LanguageLevelScore, "languageLevelScore")
	read(&c.ConfidenceScore, "confidenceScore")
	read(&c.FlowOfThoughtsScore, "flowOfThoughtsScore")
	read(&c.GesturesScore, "gesturesScore")
	read(&c.ResumeScore, "resumeScore")
	read(&c.NativeLanguageImpactScore, "nativeLanguageImpactScore")
	read(&c.BodyLanguageScore, "bodyLanguageScore")
	read(&c.DressingScore, "dressingScore")
	read(&c.Technical, "technical", "technicalScore")
	read(&c.Communication, "communication", "communicationScore")
	read(&c.Behavioral, "behavioral", "behavioralScore")
	read(&c.OverallScore, "overallScore", "overall")
	if v, ok := m["isHRInterview"]; ok {
		if b, ok := toBool(v); ok {
			c.HRFlag = b
		}
	}
	if c.IsZero() {
		return nil
	}
	return &c
}

// arrayAt walks the nested keys and returns the array found there.
func arrayAt(payload any, keys ...string) []any {
	cur := payload
	for _, k := range keys {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[k]
	}
	arr, _ := cur.([]any)
	return arr
}

func childAt(payload any, keys ...string) any {
	cur := payload
	for _, k := range keys {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[k]
	}
	return cur
}

func stringAt(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func numberAt(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		if f, ok := toFloat(v); ok {
			return f, true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func toBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}
