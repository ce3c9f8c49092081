// Package plagiarism derives a heuristic authenticity signal from a
// candidate's free-text answers. It is pure: no I/O, no state, no
// clock; identical input always yields identical output.
package plagiarism

import (
	"math"
	"strings"
)

// genericPhrases are boilerplate answer fragments; each match adds 5.
var genericPhrases = []string{
	"i am a hard worker",
	"i am a team player",
	"i am passionate about",
	"i am a quick learner",
	"i am a fast learner",
	"think outside the box",
	"go above and beyond",
	"works well under pressure",
	"i work well under pressure",
	"give 110",
	"i am a perfectionist",
	"i am detail oriented",
}

// formalPhrases are overly formal stock fragments rarely produced in a
// live spoken interview; each match adds 8.
var formalPhrases = []string{
	"pursuant to",
	"aforementioned",
	"heretofore",
	"in accordance with",
	"it is imperative",
	"i am writing to express",
	"esteemed organization",
	"i would be honored",
	"furthermore, i would like to",
	"please do not hesitate",
}

const (
	genericPenalty    = 5
	formalPenalty     = 8
	shortPenalty      = 15
	repetitionPenalty = 10
	perAnswerCap      = 50
	emptyAnswerScore  = 100

	minAnswerLen    = 20
	repetitionRatio = 0.15
	overlapBaseline = 0.5
)

// Answer is one free-text answer, optionally with its question.
type Answer struct {
	Text     string
	Question string
}

// AnswerScore is the per-answer suspicion score (0..100).
type AnswerScore struct {
	Text  string
	Score float64
}

// Report is the analyzer output. Plagiarism and Authenticity always
// sum to 100.
type Report struct {
	Plagiarism   float64
	Authenticity float64
	PerAnswer    []AnswerScore
}

// Analyze scores the given answers. Zero answers yields the neutral
// report {plagiarism: 0, authenticity: 100}.
func Analyze(answers []Answer) Report {
	if len(answers) == 0 {
		return Report{Plagiarism: 0, Authenticity: 100, PerAnswer: []AnswerScore{}}
	}

	per := make([]AnswerScore, 0, len(answers))
	var sum float64
	allEmpty := true
	for _, a := range answers {
		s := scoreAnswer(a.Text)
		per = append(per, AnswerScore{Text: a.Text, Score: s})
		sum += s
		if strings.TrimSpace(a.Text) != "" {
			allEmpty = false
		}
	}
	if allEmpty {
		// Nothing was answered at all: maximal suspicion, not the
		// blended mean.
		return Report{Plagiarism: 100, Authenticity: 0, PerAnswer: per}
	}
	mean := sum / float64(len(per))

	copyPaste := crossAnswerScore(answers)

	p := math.Round(0.7*mean + 0.3*copyPaste)
	if p > 100 {
		p = 100
	}
	return Report{Plagiarism: p, Authenticity: math.Max(0, 100-p), PerAnswer: per}
}

// scoreAnswer rates a single answer. Empty answers are maximally
// suspicious; everything else is capped at perAnswerCap.
func scoreAnswer(text string) float64 {
	t := strings.TrimSpace(text)
	if t == "" {
		return emptyAnswerScore
	}

	lower := strings.ToLower(t)
	score := 0.0
	for _, p := range genericPhrases {
		if strings.Contains(lower, p) {
			score += genericPenalty
		}
	}
	for _, p := range formalPhrases {
		if strings.Contains(lower, p) {
			score += formalPenalty
		}
	}
	if len(t) < minAnswerLen {
		score += shortPenalty
	}

	words := strings.Fields(lower)
	if n := len(words); n > 0 {
		counts := make(map[string]int, n)
		for _, w := range words {
			if len(w) > 3 {
				counts[w]++
			}
		}
		limit := repetitionRatio * float64(n)
		for _, c := range counts {
			if float64(c) > limit {
				score += repetitionPenalty
				break
			}
		}
	}

	if score > perAnswerCap {
		score = perAnswerCap
	}
	return score
}

// crossAnswerScore maps average pairwise word overlap above the
// baseline into a 0..100 copy-paste score.
func crossAnswerScore(answers []Answer) float64 {
	long := make([]map[string]struct{}, 0, len(answers))
	for _, a := range answers {
		t := strings.TrimSpace(a.Text)
		if len(t) < minAnswerLen {
			continue
		}
		long = append(long, wordSet(t))
	}
	if len(long) < 2 {
		return 0
	}

	var total float64
	var pairs int
	for i := 0; i < len(long); i++ {
		for j := i + 1; j < len(long); j++ {
			total += overlap(long[i], long[j])
			pairs++
		}
	}
	avg := total / float64(pairs)
	if avg <= overlapBaseline {
		return 0
	}
	return (avg - overlapBaseline) * 100
}

// wordSet collects the distinct case-folded words longer than 3 chars.
func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if len(w) > 3 {
			set[w] = struct{}{}
		}
	}
	return set
}

// overlap is shared-word count divided by the larger set size.
func overlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared := 0
	small, big := a, b
	if len(b) < len(a) {
		small, big = b, a
	}
	for w := range small {
		if _, ok := big[w]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(big))
}
