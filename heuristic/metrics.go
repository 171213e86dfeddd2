package heuristic

// Metric names as they appear in reports and exports
const (
	MetricKeywordOverlap     = "keyword_overlap"
	MetricSequenceSimilarity = "sequence_similarity"
	MetricLengthRatio        = "length_ratio"
	MetricNumberAccuracy     = "number_accuracy"
	MetricTechnicalTermMatch = "technical_term_match"
)

// MetricNames lists the metric names in their canonical order
var MetricNames = []string{
	MetricKeywordOverlap,
	MetricSequenceSimilarity,
	MetricLengthRatio,
	MetricNumberAccuracy,
	MetricTechnicalTermMatch,
}

// Metrics holds the five metric values for one expected/actual pair. Every value is in [0,1].
type Metrics struct {
	KeywordOverlap     float64 `json:"keyword_overlap"`
	SequenceSimilarity float64 `json:"sequence_similarity"`
	LengthRatio        float64 `json:"length_ratio"`
	NumberAccuracy     float64 `json:"number_accuracy"`
	TechnicalTermMatch float64 `json:"technical_term_match"`
}

// Compute runs all five metrics on expected (ground truth) and actual
func Compute(cfg ExtractionConfig, expected, actual string) Metrics {
	return Metrics{
		KeywordOverlap:     KeywordOverlap(cfg, expected, actual),
		SequenceSimilarity: SequenceRatio(expected, actual, cfg.SequenceAutoJunk),
		LengthRatio:        LengthRatio(expected, actual),
		NumberAccuracy:     NumberAccuracy(expected, actual),
		TechnicalTermMatch: TechnicalTermMatch(cfg, expected, actual),
	}
}

// Values returns the metric values in MetricNames order
func (m Metrics) Values() []float64 {
	return []float64{
		m.KeywordOverlap,
		m.SequenceSimilarity,
		m.LengthRatio,
		m.NumberAccuracy,
		m.TechnicalTermMatch,
	}
}

// Map returns the metrics keyed by metric name
func (m Metrics) Map() map[string]float64 {
	out := make(map[string]float64, len(MetricNames))
	for i, v := range m.Values() {
		out[MetricNames[i]] = v
	}
	return out
}
