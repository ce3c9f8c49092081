package plagiarism

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_NoAnswers(t *testing.T) {
	rep := Analyze(nil)
	assert.Equal(t, float64(0), rep.Plagiarism)
	assert.Equal(t, float64(100), rep.Authenticity)
	assert.Empty(t, rep.PerAnswer)
}

func TestAnalyze_AllEmptyAnswers(t *testing.T) {
	rep := Analyze([]Answer{{Text: ""}, {Text: "   "}, {Text: ""}})
	assert.Equal(t, float64(100), rep.Plagiarism)
	assert.Equal(t, float64(0), rep.Authenticity)
	require.Len(t, rep.PerAnswer, 3)
	for _, pa := range rep.PerAnswer {
		assert.Equal(t, float64(100), pa.Score)
	}
}

func TestAnalyze_InvariantSumIs100(t *testing.T) {
	inputs := [][]Answer{
		{{Text: "I am a hard worker and a team player, pursuant to my aforementioned experience."}},
		{{Text: "short"}, {Text: ""}},
		{{Text: "I designed a sharded ingestion pipeline that deduplicates records before indexing."}},
	}
	for _, in := range inputs {
		rep := Analyze(in)
		assert.Equal(t, float64(100), rep.Plagiarism+rep.Authenticity)
	}
}

func TestScoreAnswer_Penalties(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"empty", "", 100},
		{"short only", "too short", 15},
		{"generic phrase", "Honestly, I am a hard worker who enjoys shipping features.", 5},
		{"formal phrase", "Pursuant to our discussion I refactored the billing module last quarter.", 8},
		{"clean long answer", "I rebuilt the search indexer to stream updates and cut p99 latency by half.", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scoreAnswer(tt.text))
		})
	}
}

func TestScoreAnswer_RepetitionPenalty(t *testing.T) {
	// "always" appears 3 times in 8 words: 37% > 15%.
	got := scoreAnswer("always testing always shipping always monitoring production code")
	assert.Equal(t, float64(10), got)
}

func TestScoreAnswer_CapAt50(t *testing.T) {
	// Stack enough phrase penalties to exceed the cap.
	text := "I am a hard worker, a team player, a quick learner, a perfectionist, detail oriented, " +
		"and I work well under pressure; pursuant to the aforementioned, it is imperative, in accordance with, heretofore."
	assert.Equal(t, float64(perAnswerCap), scoreAnswer(text))
}

func TestCrossAnswer_NearIdenticalAnswers(t *testing.T) {
	a := "distributed systems require careful partitioning replication and consistent hashing strategies"
	b := "distributed systems require careful partitioning replication and consistent hashing approaches"
	rep := Analyze([]Answer{{Text: a}, {Text: b}})
	assert.Greater(t, rep.Plagiarism, float64(0), "copy-paste contribution expected")
}

func TestCrossAnswer_ShortAnswersExcluded(t *testing.T) {
	assert.Equal(t, float64(0), crossAnswerScore([]Answer{{Text: "same same"}, {Text: "same same"}}))
}

func TestCrossAnswer_DistinctAnswersNoScore(t *testing.T) {
	got := crossAnswerScore([]Answer{
		{Text: "I migrated the payment gateway onto event sourcing with idempotent consumers."},
		{Text: "My thesis project benchmarked columnar storage formats under analytical workloads."},
	})
	assert.Equal(t, float64(0), got)
}

func TestAnalyze_Deterministic(t *testing.T) {
	in := []Answer{
		{Text: "I am a hard worker building data pipelines every day of the week."},
		{Text: "I am a hard worker building data pipelines every night of the week."},
	}
	first := Analyze(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Analyze(in))
	}
}
