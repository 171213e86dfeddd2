package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datar-psa/answereval/composite"
	"github.com/datar-psa/answereval/evaluation"
	"github.com/datar-psa/answereval/heuristic"
)

func score(name string, rc, imp, act, overall, rt float64) evaluation.TestScore {
	return evaluation.TestScore{
		TestName:     name,
		RootCause:    composite.FieldScore{Score: rc, Metrics: heuristic.Metrics{KeywordOverlap: rc}},
		Impact:       composite.FieldScore{Score: imp},
		Action:       composite.FieldScore{Score: act},
		Overall:      overall,
		ResponseTime: rt,
	}
}

func sampleRun() *evaluation.Run {
	return &evaluation.Run{Scores: []evaluation.TestScore{
		score("t1", 1.0, 0.9, 0.8, 0.9, 1),
		score("t2", 0.9, 0.6, 0.6, 0.7, 2),
		score("t3", 0.6, 0.6, 0.6, 0.6, 3),
		score("t4", 0.3, 0.6, 0.3, 0.4, 4),
		score("t5", 0.6, 0.6, 0.6, 0.6, 5),
	}}
}

func TestText(t *testing.T) {
	text := Text(sampleRun())

	assert.True(t, strings.HasPrefix(text, heavyRule+"\nLLM ANSWER QUALITY EVALUATION REPORT\n"))
	assert.True(t, strings.HasSuffix(text, "\n"+heavyRule))

	for _, want := range []string{
		"Average Overall Score: 0.640",
		"Average Root Cause Score: 0.680",
		"Average Impact Score: 0.660",
		"Average Action Score: 0.580",
		"Average Response Time: 3.00 seconds",
		"Excellent (≥0.85): 1 tests (20.0%)",
		"Good (0.70-0.84): 1 tests (20.0%)",
		"Acceptable (0.60-0.69): 2 tests (40.0%)",
		"Needs Improvement (<0.60): 1 tests (20.0%)",
		"TOP 3 PERFORMING TESTS\n" + lightRule + "\nt1: 0.900\n  - Root Cause: 1.000, Impact: 0.900, Action: 0.800\nt2: 0.700",
		"BOTTOM 3 PERFORMING TESTS\n" + lightRule + "\nt4: 0.400",
		"• Strongest Component: Root Cause (0.680)",
		"• Weakest Component: Action (0.580)",
		"• Response Time Correlation: -0.783 (strong)",
		"• Score Consistency: variable (std: 0.182)",
	} {
		assert.Contains(t, text, want)
	}
}

func TestText_EmptyRun(t *testing.T) {
	text := Text(&evaluation.Run{})

	assert.Contains(t, text, "Excellent (≥0.85): 0 tests (0.0%)")
	assert.Contains(t, text, "• Response Time Correlation: n/a (undefined)")
	assert.NotContains(t, text, "Strongest Component")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRun()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 6)

	header := rows[0]
	assert.Len(t, header, 6+3*len(heuristic.MetricNames))
	assert.Equal(t, "rc_keyword_overlap", header[6])
	assert.Equal(t, "act_technical_term_match", header[len(header)-1])

	assert.Equal(t, []string{"t1", "1", "0.9", "0.8", "0.9", "1", "1"}, rows[1][:7])
}

func TestConsole(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Console(&buf, sampleRun(), false))

		out := buf.String()
		assert.NotContains(t, out, "\x1b[")
		assert.Contains(t, out, "EVALUATION RESULTS SUMMARY")
		assert.Contains(t, out, "TEST  ROOT CAUSE  IMPACT  ACTION  OVERALL")
		assert.Contains(t, out, "5 tests, average overall score 0.640")
	})

	t.Run("colour", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Console(&buf, sampleRun(), true))

		out := buf.String()
		assert.Contains(t, out, "\x1b[32m0.900\x1b[0m")
		assert.Contains(t, out, "\x1b[31m0.400\x1b[0m")
	})
}

func TestWriteMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), MetricsFile)
	require.NoError(t, WriteMetrics(path, sampleRun()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	for _, want := range []string{
		"# TYPE answereval_tests_scored gauge",
		"answereval_tests_scored 5",
		`answereval_tests_by_category{category="acceptable"} 2`,
		`answereval_tests_by_category{category="needs_improvement"} 1`,
		`answereval_field_score_mean{field="root_cause"}`,
		`answereval_test_overall_score{test_name="t1"} 0.9`,
	} {
		assert.Contains(t, out, want)
	}
}

func TestWriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	paths, err := WriteAll(dir, sampleRun())
	require.NoError(t, err)
	require.Len(t, paths, 5)
	assert.Equal(t, filepath.Join(dir, DashboardFile), paths[3])
	assert.Equal(t, filepath.Join(dir, DetailedFile), paths[4])

	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.NotZero(t, info.Size())
	}

	text, err := os.ReadFile(filepath.Join(dir, TextFile))
	require.NoError(t, err)
	assert.Equal(t, Text(sampleRun()), string(text))
}
