package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/datar-psa/answereval/api"
	"github.com/datar-psa/answereval/evaluation"
	"github.com/datar-psa/answereval/heuristic"
)

var fieldPrefixes = map[api.Field]string{
	api.FieldRootCause:       "rc",
	api.FieldImpact:          "imp",
	api.FieldSuggestedAction: "act",
}

// CSVHeader returns the column names written by WriteCSV
func CSVHeader() []string {
	header := []string{"test_name", "root_cause_score", "impact_score", "action_score", "overall_score", "response_time"}
	for _, f := range api.Fields {
		for _, m := range heuristic.MetricNames {
			header = append(header, fieldPrefixes[f]+"_"+m)
		}
	}
	return header
}

// WriteCSV writes one row per test with its scores and every metric of every field
func WriteCSV(w io.Writer, run *evaluation.Run) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader()); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, s := range run.Scores {
		row := []string{
			s.TestName,
			formatFloat(s.RootCause.Score),
			formatFloat(s.Impact.Score),
			formatFloat(s.Action.Score),
			formatFloat(s.Overall),
			formatFloat(s.ResponseTime),
		}
		for _, f := range api.Fields {
			for _, v := range s.Field(f).Metrics.Values() {
				row = append(row, formatFloat(v))
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row for %q: %w", s.TestName, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
