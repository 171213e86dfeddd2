package composite

import (
	"context"

	"github.com/datar-psa/answereval/api"
	"github.com/datar-psa/answereval/heuristic"
)

// Config bundles everything the composite scorer depends on
type Config struct {
	Weights    Weights
	Extraction heuristic.ExtractionConfig
}

// DefaultConfig returns the reference weights and extraction settings
func DefaultConfig() Config {
	return Config{
		Weights:    DefaultWeights(),
		Extraction: heuristic.DefaultExtractionConfig(),
	}
}

// FieldScore is the result of scoring one answer field
type FieldScore struct {
	Metrics heuristic.Metrics `json:"metrics"`
	Score   float64           `json:"score"`
}

// Scorer combines the five heuristic metrics into a single field score
type Scorer struct {
	cfg Config
}

// New validates cfg and returns a Scorer
func New(cfg Config) (*Scorer, error) {
	if err := cfg.Weights.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg}, nil
}

// Config returns the configuration the scorer was built with
func (s *Scorer) Config() Config {
	return s.cfg
}

// Field scores actual against expected
func (s *Scorer) Field(expected, actual string) FieldScore {
	m := heuristic.Compute(s.cfg.Extraction, expected, actual)
	return FieldScore{
		Metrics: m,
		Score:   s.cfg.Weights.Combine(m),
	}
}

// Score implements api.Scorer, treating Expected as ground truth
func (s *Scorer) Score(ctx context.Context, in api.ScoreInputs) api.Score {
	fs := s.Field(in.Expected, in.Output)

	metadata := make(map[string]any, len(heuristic.MetricNames)+1)
	for name, v := range fs.Metrics.Map() {
		metadata[name] = v
	}
	metadata["weights"] = s.cfg.Weights

	return api.Score{
		Name:     "FieldComposite",
		Score:    fs.Score,
		Metadata: metadata,
	}
}

// Overall returns the unweighted mean of the three field scores
func Overall(rootCause, impact, action float64) float64 {
	return clamp01((rootCause + impact + action) / 3)
}

var _ api.Scorer = (*Scorer)(nil)
