package evaluation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datar-psa/answereval/api"
	"github.com/datar-psa/answereval/composite"
)

func answer(rootCause, impact, action string) api.Answer {
	return api.Answer{
		api.FieldRootCause:       rootCause,
		api.FieldImpact:          impact,
		api.FieldSuggestedAction: action,
	}
}

func sampleRecord(name string) api.Record {
	return api.Record{
		TestName: name,
		Expected: answer(
			"Database connection timeout - query exceeded 30 second limit",
			"GET /api/users failed with 500 status for all user list requests",
			"Increase timeout to 60 seconds or add index on users.active column",
		),
		Actual: answer(
			"The database query timed out after 30 seconds",
			"GET /api/users returned 500",
			"Add an index on users.active",
		),
		ResponseTime: 4.2,
	}
}

func newEvaluator(t *testing.T, opts ...Option) *Evaluator {
	t.Helper()
	e, err := New(composite.DefaultConfig(), opts...)
	require.NoError(t, err)
	return e
}

func TestValidateRecord(t *testing.T) {
	missingImpact := sampleRecord("missing impact")
	delete(missingImpact.Actual, api.FieldImpact)

	missingExpectedAction := sampleRecord("missing expected action")
	delete(missingExpectedAction.Expected, api.FieldSuggestedAction)

	noName := sampleRecord("")

	noExpected := sampleRecord("no expected")
	noExpected.Expected = nil

	emptyText := sampleRecord("empty text")
	emptyText.Actual[api.FieldImpact] = ""

	tests := []struct {
		name      string
		record    api.Record
		wantErr   error
		wantSide  string
		wantField api.Field
	}{
		{name: "valid", record: sampleRecord("ok")},
		{name: "empty text is present", record: emptyText},
		{name: "missing actual field", record: missingImpact, wantErr: api.ErrMissingField, wantSide: api.SideActual, wantField: api.FieldImpact},
		{name: "missing expected field", record: missingExpectedAction, wantErr: api.ErrMissingField, wantSide: api.SideExpected, wantField: api.FieldSuggestedAction},
		{name: "missing test name", record: noName, wantErr: api.ErrMalformedRecord},
		{name: "missing expected answer", record: noExpected, wantErr: api.ErrMalformedRecord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.record
			r.Index = 3
			err := ValidateRecord(r)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)

			var mfe *api.MissingFieldError
			if errors.As(err, &mfe) {
				assert.Equal(t, 3, mfe.Index)
				assert.Equal(t, tt.wantSide, mfe.Side)
				assert.Equal(t, tt.wantField, mfe.Field)
			}
		})
	}
}

func TestEvaluatorScore(t *testing.T) {
	e := newEvaluator(t)

	score, err := e.Score(sampleRecord("db timeout"))
	require.NoError(t, err)

	assert.Equal(t, "db timeout", score.TestName)
	assert.Equal(t, 4.2, score.ResponseTime)
	assert.InDelta(t, (score.RootCause.Score+score.Impact.Score+score.Action.Score)/3, score.Overall, 1e-12)

	for _, f := range api.Fields {
		fs := score.Field(f)
		assert.GreaterOrEqual(t, fs.Score, 0.0, f)
		assert.LessOrEqual(t, fs.Score, 1.0, f)
	}
	// "30" survives in the root cause, "60" is missing from the action
	assert.Equal(t, 1.0, score.RootCause.Metrics.NumberAccuracy)
	assert.Equal(t, 0.0, score.Action.Metrics.NumberAccuracy)
}

func TestEvaluatorScore_IdenticalAnswers(t *testing.T) {
	e := newEvaluator(t)
	r := sampleRecord("identical")
	r.Actual = r.Expected

	score, err := e.Score(r)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score.Overall, 1e-12)
}

func TestEvaluatorScore_Invalid(t *testing.T) {
	e := newEvaluator(t)
	r := sampleRecord("broken")
	delete(r.Expected, api.FieldRootCause)

	_, err := e.Score(r)
	assert.ErrorIs(t, err, api.ErrMissingField)
}

func TestRun_PreservesOrder(t *testing.T) {
	e := newEvaluator(t, WithConcurrency(4))

	records := make([]api.Record, 50)
	for i := range records {
		r := sampleRecord(fmt.Sprintf("test-%02d", i))
		r.ResponseTime = float64(i)
		records[i] = r
	}

	run, err := e.Run(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, run.Scores, len(records))

	for i, s := range run.Scores {
		assert.Equal(t, records[i].TestName, s.TestName)
		assert.Equal(t, float64(i), s.ResponseTime)
	}
	assert.NotEmpty(t, run.ID.String())
	assert.False(t, run.CreatedAt.IsZero())
}

func TestRun_ParallelMatchesSequential(t *testing.T) {
	records := []api.Record{sampleRecord("a"), sampleRecord("b"), sampleRecord("c")}
	records[1].Actual[api.FieldRootCause] = "NullPointerException in PaymentService"
	records[2].Actual[api.FieldImpact] = ""

	seq, err := newEvaluator(t, WithConcurrency(1)).Run(context.Background(), records)
	require.NoError(t, err)
	par, err := newEvaluator(t, WithConcurrency(8)).Run(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, seq.Scores, par.Scores)
}

func TestRun_FailsFast(t *testing.T) {
	e := newEvaluator(t)

	records := []api.Record{sampleRecord("ok"), sampleRecord("bad-1"), sampleRecord("bad-2")}
	for i := range records {
		records[i].Index = i
	}
	delete(records[1].Actual, api.FieldImpact)
	records[2].TestName = ""

	run, err := e.Run(context.Background(), records)
	assert.Nil(t, run)

	var mfe *api.MissingFieldError
	require.ErrorAs(t, err, &mfe)
	assert.Equal(t, 1, mfe.Index)
	assert.Equal(t, "bad-1", mfe.TestName)
}

func TestRun_ReportsSourceIndex(t *testing.T) {
	// records taken from entries 2, 5 and 9 of a results file
	records := []api.Record{sampleRecord("a"), sampleRecord("b"), sampleRecord("c")}
	for i, idx := range []int{2, 5, 9} {
		records[i].Index = idx
	}
	delete(records[1].Actual, api.FieldImpact)
	records[2].Expected = nil

	_, err := newEvaluator(t).Run(context.Background(), records)
	var mfe *api.MissingFieldError
	require.ErrorAs(t, err, &mfe)
	assert.Equal(t, 5, mfe.Index)
	assert.Contains(t, err.Error(), "record 5")

	_, err = newEvaluator(t, WithSkipInvalid(true)).Run(context.Background(), records)
	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	require.Len(t, merr.Errors, 2)
	var mre *api.MalformedRecordError
	require.ErrorAs(t, merr.Errors[1], &mre)
	assert.Equal(t, 9, mre.Index)

	_, err = newEvaluator(t).Score(records[1])
	require.ErrorAs(t, err, &mfe)
	assert.Equal(t, 5, mfe.Index)
}

func TestRun_SkipInvalid(t *testing.T) {
	e := newEvaluator(t, WithSkipInvalid(true))

	records := []api.Record{sampleRecord("first"), sampleRecord("bad-1"), sampleRecord("last"), sampleRecord("bad-2")}
	delete(records[1].Actual, api.FieldImpact)
	records[3].Expected = nil

	run, err := e.Run(context.Background(), records)
	require.NotNil(t, run)
	require.Len(t, run.Scores, 2)
	assert.Equal(t, "first", run.Scores[0].TestName)
	assert.Equal(t, "last", run.Scores[1].TestName)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 2)
	assert.ErrorIs(t, merr.Errors[0], api.ErrMissingField)
	assert.ErrorIs(t, merr.Errors[1], api.ErrMalformedRecord)
}

func TestRun_Empty(t *testing.T) {
	run, err := newEvaluator(t).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, run.Scores)
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newEvaluator(t).Run(ctx, []api.Record{sampleRecord("a")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_InvalidWeights(t *testing.T) {
	cfg := composite.DefaultConfig()
	cfg.Weights = composite.Weights{KeywordOverlap: 0.9}

	_, err := New(cfg)
	assert.ErrorIs(t, err, composite.ErrInvalidWeights)
}

func TestRun_SubstitutedWeights(t *testing.T) {
	cfg := composite.DefaultConfig()
	cfg.Weights = composite.Weights{LengthRatio: 1}
	e, err := New(cfg)
	require.NoError(t, err)

	r := sampleRecord("length only")
	score, err := e.Score(r)
	require.NoError(t, err)

	for _, f := range api.Fields {
		assert.Equal(t, score.Field(f).Metrics.LengthRatio, score.Field(f).Score, f)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{0.9, 0.7, 0.5, 0.8})

	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, 0.725, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(0.0875/3), s.Std, 1e-12)
	assert.Equal(t, 0.5, s.Min)
	assert.Equal(t, 0.9, s.Max)

	assert.Equal(t, Stats{}, Summarize(nil))
	assert.Equal(t, Stats{Count: 1, Mean: 0.4, Min: 0.4, Max: 0.4}, Summarize([]float64{0.4}))
}

func TestPearson(t *testing.T) {
	r, ok := Pearson([]float64{1, 2, 3, 4}, []float64{2, 4, 6, 8})
	require.True(t, ok)
	assert.InDelta(t, 1.0, r, 1e-12)

	r, ok = Pearson([]float64{1, 2, 3, 4}, []float64{8, 6, 4, 2})
	require.True(t, ok)
	assert.InDelta(t, -1.0, r, 1e-12)

	_, ok = Pearson([]float64{1, 2, 3}, []float64{5, 5, 5})
	assert.False(t, ok)

	_, ok = Pearson([]float64{1}, []float64{1})
	assert.False(t, ok)
}

// syntheticRun builds a run with known field scores, bypassing the scorer
func syntheticRun() *Run {
	mk := func(name string, rc, imp, act, rt float64) TestScore {
		return TestScore{
			TestName:     name,
			RootCause:    composite.FieldScore{Score: rc},
			Impact:       composite.FieldScore{Score: imp},
			Action:       composite.FieldScore{Score: act},
			Overall:      composite.Overall(rc, imp, act),
			ResponseTime: rt,
		}
	}
	return &Run{Scores: []TestScore{
		mk("t1", 1.0, 0.9, 0.8, 1.0), // 0.9
		mk("t2", 0.9, 0.6, 0.6, 2.0), // 0.7
		mk("t3", 0.6, 0.6, 0.6, 3.0), // 0.6
		mk("t4", 0.3, 0.6, 0.3, 4.0), // 0.4
		mk("t5", 0.6, 0.6, 0.6, 5.0), // 0.6, ties with t3
	}}
}

func TestRunAggregates(t *testing.T) {
	run := syntheticRun()

	rc := run.FieldStats(api.FieldRootCause)
	assert.InDelta(t, 0.68, rc.Mean, 1e-12)
	assert.Equal(t, 0.3, rc.Min)
	assert.Equal(t, 1.0, rc.Max)
	// deviations 0.32, 0.22, -0.08, -0.38, -0.08
	assert.InDelta(t, math.Sqrt(0.308/4), rc.Std, 1e-12)

	overall := run.OverallStats()
	assert.InDelta(t, 0.64, overall.Mean, 1e-12)
	assert.InDelta(t, 0.4, overall.Min, 1e-12)
	assert.InDelta(t, 0.9, overall.Max, 1e-12)

	assert.Equal(t, 3.0, run.ResponseTimeStats().Mean)

	for i, s := range run.Scores {
		assert.InDelta(t, (s.RootCause.Score+s.Impact.Score+s.Action.Score)/3, run.OverallScores()[i], 1e-12)
	}
}

func TestRunRanking(t *testing.T) {
	run := syntheticRun()

	top := run.Top(3)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"t1", "t2", "t3"}, names(top))

	bottom := run.Bottom(3)
	assert.Equal(t, []string{"t4", "t3", "t5"}, names(bottom))

	assert.Len(t, run.Top(10), 5)
	assert.Empty(t, run.Top(0))
}

func TestRunInsights(t *testing.T) {
	run := syntheticRun()

	f, mean := run.Strongest()
	assert.Equal(t, api.FieldRootCause, f)
	assert.InDelta(t, 0.68, mean, 1e-12)

	f, mean = run.Weakest()
	assert.Equal(t, api.FieldSuggestedAction, f)
	assert.InDelta(t, 0.58, mean, 1e-12)

	d := run.Distribution()
	assert.Equal(t, 5, d.Total)
	assert.Equal(t, 1, d.Counts[Excellent])
	assert.Equal(t, 1, d.Counts[Good])
	assert.Equal(t, 2, d.Counts[Acceptable])
	assert.Equal(t, 1, d.Counts[NeedsImprovement])
	assert.InDelta(t, 40.0, d.Percent(Acceptable), 1e-12)

	r, ok := run.Correlation()
	require.True(t, ok)
	assert.Less(t, r, 0.0)
}

func TestCategorize(t *testing.T) {
	assert.Equal(t, Excellent, Categorize(0.85))
	assert.Equal(t, Good, Categorize(0.8499))
	assert.Equal(t, Good, Categorize(0.70))
	assert.Equal(t, Acceptable, Categorize(0.60))
	assert.Equal(t, NeedsImprovement, Categorize(0.5999))
	assert.Equal(t, "Needs Improvement", NeedsImprovement.String())
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "weak", CorrelationStrength(-0.29))
	assert.Equal(t, "moderate", CorrelationStrength(0.3))
	assert.Equal(t, "strong", CorrelationStrength(-0.7))

	assert.Equal(t, "very consistent", Consistency(0.049))
	assert.Equal(t, "consistent", Consistency(0.05))
	assert.Equal(t, "variable", Consistency(0.10))
}

func names(scores []TestScore) []string {
	out := make([]string, len(scores))
	for i, s := range scores {
		out[i] = s.TestName
	}
	return out
}
