package composite

import (
	"errors"
	"fmt"
	"math"

	"github.com/datar-psa/answereval/heuristic"
)

// ErrInvalidWeights is returned when a weight table is negative or does not sum to 1
var ErrInvalidWeights = errors.New("invalid weight table")

const weightSumTolerance = 1e-9

// Weights is the labeled weight table used to combine the five metrics into a field score
type Weights struct {
	KeywordOverlap     float64 `yaml:"keyword_overlap" json:"keyword_overlap" env:"KEYWORD_OVERLAP"`
	SequenceSimilarity float64 `yaml:"sequence_similarity" json:"sequence_similarity" env:"SEQUENCE_SIMILARITY"`
	LengthRatio        float64 `yaml:"length_ratio" json:"length_ratio" env:"LENGTH_RATIO"`
	NumberAccuracy     float64 `yaml:"number_accuracy" json:"number_accuracy" env:"NUMBER_ACCURACY"`
	TechnicalTermMatch float64 `yaml:"technical_term_match" json:"technical_term_match" env:"TECHNICAL_TERM_MATCH"`
}

// DefaultWeights returns the reference weight table
func DefaultWeights() Weights {
	return Weights{
		KeywordOverlap:     0.30,
		SequenceSimilarity: 0.20,
		LengthRatio:        0.10,
		NumberAccuracy:     0.20,
		TechnicalTermMatch: 0.20,
	}
}

// Values returns the weights in heuristic.MetricNames order
func (w Weights) Values() []float64 {
	return []float64{
		w.KeywordOverlap,
		w.SequenceSimilarity,
		w.LengthRatio,
		w.NumberAccuracy,
		w.TechnicalTermMatch,
	}
}

// Sum returns the total of all weights
func (w Weights) Sum() float64 {
	var sum float64
	for _, v := range w.Values() {
		sum += v
	}
	return sum
}

// Validate checks that every weight is in [0,1] and that they sum to 1
func (w Weights) Validate() error {
	for i, v := range w.Values() {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return fmt.Errorf("%w: %s = %v", ErrInvalidWeights, heuristic.MetricNames[i], v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("%w: weights sum to %v, want 1", ErrInvalidWeights, sum)
	}
	return nil
}

// Combine returns the weighted sum of the metrics, clamped to [0,1]
func (w Weights) Combine(m heuristic.Metrics) float64 {
	weights := w.Values()
	var score float64
	for i, v := range m.Values() {
		score += v * weights[i]
	}
	return clamp01(score)
}

// String renders the table for logs
func (w Weights) String() string {
	return fmt.Sprintf("keyword=%.2f sequence=%.2f length=%.2f number=%.2f technical=%.2f",
		w.KeywordOverlap, w.SequenceSimilarity, w.LengthRatio, w.NumberAccuracy, w.TechnicalTermMatch)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
