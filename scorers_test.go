package answereval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datar-psa/answereval/composite"
	"github.com/datar-psa/answereval/heuristic"
)

func TestHeuristic_Metrics(t *testing.T) {
	h := NewHeuristic()
	in := ScoreInputs{
		Expected: "Database connection timeout after 30 seconds",
		Output:   "Database connection timeout after 30 seconds",
	}

	var names []string
	for _, s := range h.Metrics() {
		score := s.Score(context.Background(), in)
		require.NoError(t, score.Error, score.Name)
		assert.InDelta(t, 1.0, score.Score, 1e-9, score.Name)
		names = append(names, score.Name)
	}
	assert.Equal(t, []string{
		"KeywordOverlap",
		"SequenceSimilarity",
		"LengthRatio",
		"NumberAccuracy",
		"TechnicalTermMatch",
	}, names)
}

func TestHeuristic_Composite(t *testing.T) {
	scorer, err := NewHeuristic().Composite()
	require.NoError(t, err)

	score := scorer.Score(context.Background(), ScoreInputs{Expected: "disk full", Output: "disk full"})
	require.NoError(t, score.Error)
	assert.Equal(t, "FieldComposite", score.Name)
	assert.InDelta(t, 1.0, score.Score, 1e-9)
}

func TestHeuristic_InvalidWeights(t *testing.T) {
	w := composite.DefaultWeights()
	w.KeywordOverlap = 0.9

	_, err := NewHeuristic(WithWeights(w)).Composite()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidWeights))
}

func TestHeuristic_WithExtraction(t *testing.T) {
	cfg := heuristic.DefaultExtractionConfig()
	cfg.StopWords["database"] = struct{}{}

	in := ScoreInputs{Expected: "database timeout", Output: "database crashed"}
	def := NewHeuristic().KeywordOverlap().Score(context.Background(), in)
	custom := NewHeuristic(WithExtraction(cfg)).KeywordOverlap().Score(context.Background(), in)

	assert.InDelta(t, 1.0/3.0, def.Score, 1e-9)
	assert.InDelta(t, 0.0, custom.Score, 1e-9)
}

func TestHeuristic_Evaluate(t *testing.T) {
	answer := Answer{
		FieldRootCause:       "Connection pool exhausted",
		FieldImpact:          "Checkout returned 503",
		FieldSuggestedAction: "Raise pool size to 50",
	}
	records := []Record{
		{TestName: "same", Expected: answer, Actual: answer, ResponseTime: 1.5},
		{TestName: "missing", Expected: answer, Actual: Answer{FieldRootCause: "x"}},
	}

	_, err := NewHeuristic().Evaluate(context.Background(), records)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingField))

	run, err := NewHeuristic().Evaluate(context.Background(), records[:1])
	require.NoError(t, err)
	require.Len(t, run.Scores, 1)
	assert.Equal(t, "same", run.Scores[0].TestName)
	assert.InDelta(t, 1.0, run.Scores[0].Overall, 1e-9)
}

func TestNewGeminiAnswerer_RequiresClient(t *testing.T) {
	a := NewGeminiAnswerer(WithModelName("publishers/google/models/gemini-2.5-flash"))
	_, err := a.Answer(context.Background(), testCase())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM generator is required")
}

func testCase() TestCase {
	return TestCase{
		Name:   "db_timeout",
		SpanID: "a1b2c3",
		Trace:  []byte(`{"resourceSpans": []}`),
	}
}
