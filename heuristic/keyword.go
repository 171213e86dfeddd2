package heuristic

import (
	"context"

	"github.com/datar-psa/answereval/api"
)

// KeywordOverlap returns the Jaccard similarity of the keyword sets of expected and actual.
// An expected text without keywords cannot be scored and yields 0.
func KeywordOverlap(cfg ExtractionConfig, expected, actual string) float64 {
	exp := Keywords(cfg, expected)
	if len(exp) == 0 {
		return 0
	}
	act := Keywords(cfg, actual)
	return jaccard(exp, act)
}

func jaccard(a, b map[string]struct{}) float64 {
	inter := intersectionSize(a, b)
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// KeywordOverlapOptions configures the KeywordOverlap scorer
type KeywordOverlapOptions struct {
	// Extraction overrides the stop words and minimum keyword length. Nil uses DefaultExtractionConfig.
	Extraction *ExtractionConfig
}

// KeywordOverlapScorer returns a scorer measuring keyword overlap between Expected and Output
func KeywordOverlapScorer(opts KeywordOverlapOptions) api.Scorer {
	cfg := DefaultExtractionConfig()
	if opts.Extraction != nil {
		cfg = *opts.Extraction
	}
	return &keywordOverlapScorer{cfg: cfg}
}

type keywordOverlapScorer struct {
	cfg ExtractionConfig
}

func (s *keywordOverlapScorer) Score(ctx context.Context, in api.ScoreInputs) api.Score {
	result := api.Score{
		Name:     "KeywordOverlap",
		Metadata: make(map[string]any),
	}

	exp := Keywords(s.cfg, in.Expected)
	act := Keywords(s.cfg, in.Output)
	if len(exp) > 0 {
		result.Score = jaccard(exp, act)
	}

	result.Metadata["expected_keywords"] = sortedKeys(exp)
	result.Metadata["output_keywords"] = sortedKeys(act)
	result.Metadata["shared_keywords"] = intersectionSize(exp, act)

	return result
}
