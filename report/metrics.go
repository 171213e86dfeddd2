package report

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/datar-psa/answereval/api"
	"github.com/datar-psa/answereval/evaluation"
)

const metricsNamespace = "answereval"

var categorySlugs = map[evaluation.Category]string{
	evaluation.Excellent:        "excellent",
	evaluation.Good:             "good",
	evaluation.Acceptable:       "acceptable",
	evaluation.NeedsImprovement: "needs_improvement",
}

// NewRegistry returns a registry holding the gauges of one run
func NewRegistry(run *evaluation.Run) *prometheus.Registry {
	reg := prometheus.NewRegistry()

	tests := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "tests_scored",
		Help:      "Number of tests scored in the run",
	})
	overallMean := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "overall_score_mean",
		Help:      "Mean overall score of the run",
	})
	overallStd := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "overall_score_std",
		Help:      "Sample standard deviation of overall scores",
	})
	responseMean := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "response_time_seconds_mean",
		Help:      "Mean answer latency in seconds",
	})
	fieldMean := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "field_score_mean",
		Help:      "Mean composite score per answer field",
	}, []string{"field"})
	categories := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "tests_by_category",
		Help:      "Number of tests per score category",
	}, []string{"category"})
	testScore := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "test_overall_score",
		Help:      "Overall score per test",
	}, []string{"test_name"})

	reg.MustRegister(tests, overallMean, overallStd, responseMean, fieldMean, categories, testScore)

	overall := run.OverallStats()
	tests.Set(float64(overall.Count))
	overallMean.Set(overall.Mean)
	overallStd.Set(overall.Std)
	responseMean.Set(run.ResponseTimeStats().Mean)
	for _, f := range api.Fields {
		fieldMean.WithLabelValues(string(f)).Set(run.FieldStats(f).Mean)
	}
	dist := run.Distribution()
	for _, c := range evaluation.Categories {
		categories.WithLabelValues(categorySlugs[c]).Set(float64(dist.Counts[c]))
	}
	for _, s := range run.Scores {
		testScore.WithLabelValues(s.TestName).Set(s.Overall)
	}
	return reg
}

// WriteMetrics writes the run gauges to path in the Prometheus text format,
// ready for a node exporter textfile collector
func WriteMetrics(path string, run *evaluation.Run) error {
	if err := prometheus.WriteToTextfile(path, NewRegistry(run)); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
