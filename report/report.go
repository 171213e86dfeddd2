// Package report renders an evaluation run for people and for other tools.
package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/datar-psa/answereval/api"
	"github.com/datar-psa/answereval/evaluation"
)

// File names written by WriteAll
const (
	TextFile    = "evaluation_report.txt"
	CSVFile     = "detailed_evaluation_metrics.csv"
	MetricsFile = "evaluation_metrics.prom"
)

// FieldLabel is the human readable name of an answer field
func FieldLabel(f api.Field) string {
	switch f {
	case api.FieldRootCause:
		return "Root Cause"
	case api.FieldImpact:
		return "Impact"
	case api.FieldSuggestedAction:
		return "Action"
	}
	return string(f)
}

// WriteAll writes the text report, the CSV export, the metrics textfile and, for a
// non-empty run, the PNG charts into dir, creating it if needed. It returns the written paths.
func WriteAll(dir string, run *evaluation.Run) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	textPath := filepath.Join(dir, TextFile)
	if err := os.WriteFile(textPath, []byte(Text(run)), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, run); err != nil {
		return nil, err
	}
	csvPath := filepath.Join(dir, CSVFile)
	if err := os.WriteFile(csvPath, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write metrics csv: %w", err)
	}

	metricsPath := filepath.Join(dir, MetricsFile)
	if err := WriteMetrics(metricsPath, run); err != nil {
		return nil, err
	}

	chartPaths, err := WriteCharts(dir, run)
	if err != nil {
		return nil, err
	}

	return append([]string{textPath, csvPath, metricsPath}, chartPaths...), nil
}
