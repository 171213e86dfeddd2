package report

import (
	"fmt"
	"strings"

	"github.com/datar-psa/answereval/api"
	"github.com/datar-psa/answereval/evaluation"
)

const rankedCount = 3

var (
	heavyRule = strings.Repeat("=", 80)
	lightRule = strings.Repeat("-", 80)
)

// CategoryLabel names a category together with its score range
func CategoryLabel(c evaluation.Category) string {
	switch c {
	case evaluation.Excellent:
		return "Excellent (≥0.85)"
	case evaluation.Good:
		return "Good (0.70-0.84)"
	case evaluation.Acceptable:
		return "Acceptable (0.60-0.69)"
	case evaluation.NeedsImprovement:
		return "Needs Improvement (<0.60)"
	}
	return c.String()
}

// Text renders the evaluation report: overall performance, distribution,
// best and worst tests and a few insights
func Text(run *evaluation.Run) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}
	section := func(title string) {
		line("%s", title)
		line("%s", lightRule)
	}

	line("%s", heavyRule)
	line("LLM ANSWER QUALITY EVALUATION REPORT")
	line("%s", heavyRule)
	line("")

	section("OVERALL PERFORMANCE")
	line("Average Overall Score: %.3f", run.OverallStats().Mean)
	for _, f := range api.Fields {
		line("Average %s Score: %.3f", FieldLabel(f), run.FieldStats(f).Mean)
	}
	line("Average Response Time: %.2f seconds", run.ResponseTimeStats().Mean)
	line("")

	section("PERFORMANCE DISTRIBUTION")
	dist := run.Distribution()
	for _, c := range evaluation.Categories {
		line("%s: %d tests (%.1f%%)", CategoryLabel(c), dist.Counts[c], dist.Percent(c))
	}
	line("")

	section(fmt.Sprintf("TOP %d PERFORMING TESTS", rankedCount))
	for _, s := range run.Top(rankedCount) {
		writeTest(line, s)
	}
	line("")

	section(fmt.Sprintf("BOTTOM %d PERFORMING TESTS", rankedCount))
	for _, s := range run.Bottom(rankedCount) {
		writeTest(line, s)
	}
	line("")

	section("KEY INSIGHTS")
	if len(run.Scores) > 0 {
		best, bestMean := run.Strongest()
		worst, worstMean := run.Weakest()
		line("• Strongest Component: %s (%.3f)", FieldLabel(best), bestMean)
		line("• Weakest Component: %s (%.3f)", FieldLabel(worst), worstMean)
	}
	if r, ok := run.Correlation(); ok {
		line("• Response Time Correlation: %.3f (%s)", r, evaluation.CorrelationStrength(r))
	} else {
		line("• Response Time Correlation: n/a (undefined)")
	}
	std := run.OverallStats().Std
	line("• Score Consistency: %s (std: %.3f)", evaluation.Consistency(std), std)
	line("")

	b.WriteString(heavyRule)
	return b.String()
}

func writeTest(line func(string, ...any), s evaluation.TestScore) {
	line("%s: %.3f", s.TestName, s.Overall)
	line("  - Root Cause: %.3f, Impact: %.3f, Action: %.3f", s.RootCause.Score, s.Impact.Score, s.Action.Score)
}
