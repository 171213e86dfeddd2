package heuristic

import (
	"context"

	"github.com/datar-psa/answereval/api"
)

// NumberAccuracy returns the share of expected numbers that also appear in actual.
// With no numbers in expected there is nothing to verify and the result is 1.
func NumberAccuracy(expected, actual string) float64 {
	return recall(Numbers(expected), Numbers(actual))
}

// recall is |expected ∩ actual| / |expected|, or 1 when expected is empty
func recall(expected, actual map[string]struct{}) float64 {
	if len(expected) == 0 {
		return 1
	}
	return float64(intersectionSize(expected, actual)) / float64(len(expected))
}

// NumberAccuracyScorer returns a scorer checking that the numbers in Expected appear in Output
func NumberAccuracyScorer() api.Scorer {
	return &numberAccuracyScorer{}
}

type numberAccuracyScorer struct{}

func (s *numberAccuracyScorer) Score(ctx context.Context, in api.ScoreInputs) api.Score {
	exp := Numbers(in.Expected)
	act := Numbers(in.Output)
	return api.Score{
		Name:  "NumberAccuracy",
		Score: recall(exp, act),
		Metadata: map[string]any{
			"expected_numbers": sortedKeys(exp),
			"output_numbers":   sortedKeys(act),
		},
	}
}
