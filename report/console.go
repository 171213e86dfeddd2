package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/datar-psa/answereval/evaluation"
)

var categoryColors = map[evaluation.Category]color.Attribute{
	evaluation.Excellent:        color.FgGreen,
	evaluation.Good:             color.FgCyan,
	evaluation.Acceptable:       color.FgYellow,
	evaluation.NeedsImprovement: color.FgRed,
}

// Console writes a results table to w. With colorize the overall score is
// coloured by its category, regardless of whether w is a terminal.
func Console(w io.Writer, run *evaluation.Run, colorize bool) error {
	paint := make(map[evaluation.Category]*color.Color, len(categoryColors))
	for c, attr := range categoryColors {
		p := color.New(attr)
		if colorize {
			p.EnableColor()
		} else {
			p.DisableColor()
		}
		paint[c] = p
	}
	bold := color.New(color.Bold)
	if colorize {
		bold.EnableColor()
	} else {
		bold.DisableColor()
	}

	fmt.Fprintln(w, heavyRule)
	bold.Fprintln(w, "EVALUATION RESULTS SUMMARY")
	fmt.Fprintln(w, heavyRule)

	// the coloured column is last so escape codes do not disturb alignment
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TEST\tROOT CAUSE\tIMPACT\tACTION\tOVERALL")
	for _, s := range run.Scores {
		overall := paint[evaluation.Categorize(s.Overall)].Sprintf("%.3f", s.Overall)
		fmt.Fprintf(tw, "%s\t%.3f\t%.3f\t%.3f\t%s\n", s.TestName, s.RootCause.Score, s.Impact.Score, s.Action.Score, overall)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write results table: %w", err)
	}

	overall := run.OverallStats()
	_, err := fmt.Fprintf(w, "\n%d tests, average overall score %s\n",
		overall.Count, paint[evaluation.Categorize(overall.Mean)].Sprintf("%.3f", overall.Mean))
	return err
}
