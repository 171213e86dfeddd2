package heuristic

import (
	"context"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/datar-psa/answereval/api"
)

// SequenceSimilarity returns 2*M/(len(a)+len(b)) over the lowercased runes of both strings,
// where M is the number of runes in the longest matching blocks found recursively.
// Two empty strings are identical and yield 1.
func SequenceSimilarity(expected, actual string) float64 {
	return SequenceRatio(expected, actual, false)
}

// SequenceRatio is SequenceSimilarity with the matcher's autojunk heuristic selectable.
// With autoJunk set, runes making up more than 1% of an actual text of 200 runes or more
// never start a matching block.
func SequenceRatio(expected, actual string, autoJunk bool) float64 {
	a := strings.Split(strings.ToLower(expected), "")
	b := strings.Split(strings.ToLower(actual), "")
	m := difflib.NewMatcherWithJunk(a, b, autoJunk, nil)
	return m.Ratio()
}

// SequenceSimilarityOptions configures the SequenceSimilarity scorer
type SequenceSimilarityOptions struct {
	AutoJunk bool
}

// SequenceSimilarityScorer returns a scorer measuring character-level similarity between Expected and Output
func SequenceSimilarityScorer(opts SequenceSimilarityOptions) api.Scorer {
	return &sequenceSimilarityScorer{autoJunk: opts.AutoJunk}
}

type sequenceSimilarityScorer struct {
	autoJunk bool
}

func (s *sequenceSimilarityScorer) Score(ctx context.Context, in api.ScoreInputs) api.Score {
	return api.Score{
		Name:  "SequenceSimilarity",
		Score: SequenceRatio(in.Expected, in.Output, s.autoJunk),
		Metadata: map[string]any{
			"output_length":   len([]rune(in.Output)),
			"expected_length": len([]rune(in.Expected)),
			"autojunk":        s.autoJunk,
		},
	}
}
