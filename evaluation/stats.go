package evaluation

import (
	"math"
	"sort"

	"github.com/datar-psa/answereval/api"
)

// Stats summarizes a column of scores
type Stats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	// Std is the sample standard deviation (n-1). It is 0 for fewer than two values.
	Std float64 `json:"std"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Summarize computes Stats over values. An empty slice yields the zero Stats.
func Summarize(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}
	s := Stats{Count: len(values), Min: values[0], Max: values[0]}
	var sum float64
	for _, v := range values {
		sum += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Mean = sum / float64(len(values))

	if len(values) > 1 {
		var sq float64
		for _, v := range values {
			d := v - s.Mean
			sq += d * d
		}
		s.Std = math.Sqrt(sq / float64(len(values)-1))
	}
	return s
}

// Pearson returns the correlation coefficient of x and y.
// ok is false when it is undefined: fewer than two pairs, mismatched lengths or a constant column.
func Pearson(x, y []float64) (r float64, ok bool) {
	if len(x) != len(y) || len(x) < 2 {
		return 0, false
	}
	mx := Summarize(x).Mean
	my := Summarize(y).Mean

	var sxy, sxx, syy float64
	for i := range x {
		dx := x[i] - mx
		dy := y[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}
	return sxy / math.Sqrt(sxx*syy), true
}

// FieldScores returns the composite score of field f for every test, in run order
func (r *Run) FieldScores(f api.Field) []float64 {
	out := make([]float64, len(r.Scores))
	for i, s := range r.Scores {
		out[i] = s.Field(f).Score
	}
	return out
}

// OverallScores returns every test's overall score, in run order
func (r *Run) OverallScores() []float64 {
	out := make([]float64, len(r.Scores))
	for i, s := range r.Scores {
		out[i] = s.Overall
	}
	return out
}

// ResponseTimes returns every test's response time, in run order
func (r *Run) ResponseTimes() []float64 {
	out := make([]float64, len(r.Scores))
	for i, s := range r.Scores {
		out[i] = s.ResponseTime
	}
	return out
}

func (r *Run) FieldStats(f api.Field) Stats { return Summarize(r.FieldScores(f)) }
func (r *Run) OverallStats() Stats          { return Summarize(r.OverallScores()) }
func (r *Run) ResponseTimeStats() Stats     { return Summarize(r.ResponseTimes()) }

// Correlation is the Pearson correlation between response time and overall score
func (r *Run) Correlation() (float64, bool) {
	return Pearson(r.ResponseTimes(), r.OverallScores())
}

// Top returns up to n tests with the highest overall score. Ties keep run order.
func (r *Run) Top(n int) []TestScore {
	return r.ranked(n, func(a, b float64) bool { return a > b })
}

// Bottom returns up to n tests with the lowest overall score. Ties keep run order.
func (r *Run) Bottom(n int) []TestScore {
	return r.ranked(n, func(a, b float64) bool { return a < b })
}

func (r *Run) ranked(n int, before func(a, b float64) bool) []TestScore {
	sorted := make([]TestScore, len(r.Scores))
	copy(sorted, r.Scores)
	sort.SliceStable(sorted, func(i, j int) bool {
		return before(sorted[i].Overall, sorted[j].Overall)
	})
	if n < len(sorted) {
		sorted = sorted[:max(n, 0)]
	}
	return sorted
}

// Strongest returns the field with the highest mean score. Ties go to the earlier field.
func (r *Run) Strongest() (api.Field, float64) {
	return r.extremeField(func(a, b float64) bool { return a > b })
}

// Weakest returns the field with the lowest mean score. Ties go to the earlier field.
func (r *Run) Weakest() (api.Field, float64) {
	return r.extremeField(func(a, b float64) bool { return a < b })
}

func (r *Run) extremeField(better func(a, b float64) bool) (api.Field, float64) {
	best := api.Fields[0]
	bestMean := r.FieldStats(best).Mean
	for _, f := range api.Fields[1:] {
		if m := r.FieldStats(f).Mean; better(m, bestMean) {
			best, bestMean = f, m
		}
	}
	return best, bestMean
}

// Category buckets an overall score
type Category int

const (
	Excellent Category = iota
	Good
	Acceptable
	NeedsImprovement
)

// Categories lists the buckets from best to worst
var Categories = []Category{Excellent, Good, Acceptable, NeedsImprovement}

func (c Category) String() string {
	switch c {
	case Excellent:
		return "Excellent"
	case Good:
		return "Good"
	case Acceptable:
		return "Acceptable"
	case NeedsImprovement:
		return "Needs Improvement"
	}
	return "Unknown"
}

// Categorize assigns a score to its bucket: >=0.85, >=0.70, >=0.60, below
func Categorize(score float64) Category {
	switch {
	case score >= 0.85:
		return Excellent
	case score >= 0.70:
		return Good
	case score >= 0.60:
		return Acceptable
	default:
		return NeedsImprovement
	}
}

// Distribution counts tests per category
type Distribution struct {
	Total  int
	Counts map[Category]int
}

// Percent returns the share of tests in c, from 0 to 100
func (d Distribution) Percent(c Category) float64 {
	if d.Total == 0 {
		return 0
	}
	return float64(d.Counts[c]) / float64(d.Total) * 100
}

// Distribution buckets every test's overall score
func (r *Run) Distribution() Distribution {
	d := Distribution{Total: len(r.Scores), Counts: make(map[Category]int, len(Categories))}
	for _, s := range r.Scores {
		d.Counts[Categorize(s.Overall)]++
	}
	return d
}

// CorrelationStrength describes |r|: weak below 0.3, moderate below 0.7, strong otherwise
func CorrelationStrength(r float64) string {
	switch a := math.Abs(r); {
	case a < 0.3:
		return "weak"
	case a < 0.7:
		return "moderate"
	default:
		return "strong"
	}
}

// Consistency describes a standard deviation of overall scores
func Consistency(std float64) string {
	switch {
	case std < 0.05:
		return "very consistent"
	case std < 0.10:
		return "consistent"
	default:
		return "variable"
	}
}
