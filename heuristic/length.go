package heuristic

import (
	"context"
	"unicode/utf8"

	"github.com/datar-psa/answereval/api"
)

// LengthRatio returns min/max of the rune counts of the raw strings.
// An empty expected text yields 0.
func LengthRatio(expected, actual string) float64 {
	e := utf8.RuneCountInString(expected)
	a := utf8.RuneCountInString(actual)
	if e == 0 {
		return 0
	}
	return float64(min(e, a)) / float64(max(e, a))
}

// LengthRatioScorer returns a scorer penalizing outputs much shorter or longer than Expected
func LengthRatioScorer() api.Scorer {
	return &lengthRatioScorer{}
}

type lengthRatioScorer struct{}

func (s *lengthRatioScorer) Score(ctx context.Context, in api.ScoreInputs) api.Score {
	return api.Score{
		Name:  "LengthRatio",
		Score: LengthRatio(in.Expected, in.Output),
		Metadata: map[string]any{
			"output_length":   utf8.RuneCountInString(in.Output),
			"expected_length": utf8.RuneCountInString(in.Expected),
		},
	}
}
