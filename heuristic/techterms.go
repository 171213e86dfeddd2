package heuristic

import (
	"context"

	"github.com/datar-psa/answereval/api"
)

// TechnicalTermMatch returns the share of expected technical terms (status codes, error and
// exception class names, HTTP methods, API endpoints) that also appear in actual.
// With no terms in expected the result is 1.
func TechnicalTermMatch(cfg ExtractionConfig, expected, actual string) float64 {
	return recall(TechnicalTerms(cfg, expected), TechnicalTerms(cfg, actual))
}

// TechnicalTermMatchOptions configures the TechnicalTermMatch scorer
type TechnicalTermMatchOptions struct {
	// Extraction overrides the technical patterns. Nil uses DefaultExtractionConfig.
	Extraction *ExtractionConfig
}

// TechnicalTermMatchScorer returns a scorer checking that technical terms in Expected appear in Output
func TechnicalTermMatchScorer(opts TechnicalTermMatchOptions) api.Scorer {
	cfg := DefaultExtractionConfig()
	if opts.Extraction != nil {
		cfg = *opts.Extraction
	}
	return &technicalTermMatchScorer{cfg: cfg}
}

type technicalTermMatchScorer struct {
	cfg ExtractionConfig
}

func (s *technicalTermMatchScorer) Score(ctx context.Context, in api.ScoreInputs) api.Score {
	exp := TechnicalTerms(s.cfg, in.Expected)
	act := TechnicalTerms(s.cfg, in.Output)

	missing := make([]string, 0)
	for _, term := range sortedKeys(exp) {
		if _, ok := act[term]; !ok {
			missing = append(missing, term)
		}
	}

	return api.Score{
		Name:  "TechnicalTermMatch",
		Score: recall(exp, act),
		Metadata: map[string]any{
			"expected_terms": sortedKeys(exp),
			"output_terms":   sortedKeys(act),
			"missing_terms":  missing,
		},
	}
}
