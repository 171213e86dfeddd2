package evaluation

import (
	"context"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/datar-psa/answereval/api"
	"github.com/datar-psa/answereval/composite"
)

// Run is the ordered result of scoring a set of records
type Run struct {
	ID        uuid.UUID   `json:"id"`
	CreatedAt time.Time   `json:"created_at"`
	Scores    []TestScore `json:"scores"`
}

// Evaluator scores records with a fixed composite configuration
type Evaluator struct {
	scorer      *composite.Scorer
	logger      zerolog.Logger
	concurrency int
	skipInvalid bool
}

// Option configures an Evaluator
type Option func(*Evaluator)

// WithLogger sets the logger used for run progress and skipped records
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// WithConcurrency bounds how many records are scored at once. Values below 1 mean GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(e *Evaluator) {
		e.concurrency = n
	}
}

// WithSkipInvalid makes Run drop invalid records instead of failing.
// The dropped records are reported in the error returned next to the Run.
func WithSkipInvalid(skip bool) Option {
	return func(e *Evaluator) {
		e.skipInvalid = skip
	}
}

// New creates an Evaluator. It fails if cfg holds an invalid weight table.
func New(cfg composite.Config, opts ...Option) (*Evaluator, error) {
	scorer, err := composite.New(cfg)
	if err != nil {
		return nil, err
	}
	e := &Evaluator{
		scorer: scorer,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.concurrency < 1 {
		e.concurrency = runtime.GOMAXPROCS(0)
	}
	return e, nil
}

// Score validates and scores a single record
func (e *Evaluator) Score(r api.Record) (TestScore, error) {
	if err := ValidateRecord(r); err != nil {
		return TestScore{}, err
	}
	return scoreRecord(e.scorer, r), nil
}

// Run scores records in parallel and returns them in input order.
//
// All records are validated first, in order, so the reported failure is always the first invalid record.
// Without WithSkipInvalid the first invalid record aborts the run. With it, the Run holds the valid
// records and the returned error, a *multierror.Error, lists the skipped ones.
func (e *Evaluator) Run(ctx context.Context, records []api.Record) (*Run, error) {
	var skipped *multierror.Error
	valid := make([]int, 0, len(records))
	for i, r := range records {
		if err := ValidateRecord(r); err != nil {
			if !e.skipInvalid {
				return nil, err
			}
			e.logger.Warn().Err(err).Int("index", r.Index).Str("test_name", r.TestName).Msg("skipping invalid record")
			skipped = multierror.Append(skipped, err)
			continue
		}
		valid = append(valid, i)
	}

	start := time.Now()
	scores := make([]TestScore, len(valid))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for slot, idx := range valid {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scores[slot] = scoreRecord(e.scorer, records[idx])
			e.logger.Debug().
				Str("test_name", scores[slot].TestName).
				Float64("overall_score", scores[slot].Overall).
				Msg("scored record")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	run := &Run{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Scores:    scores,
	}
	e.logger.Info().
		Str("run_id", run.ID.String()).
		Int("scored", len(scores)).
		Int("skipped", len(records)-len(valid)).
		Dur("elapsed", time.Since(start)).
		Msg("evaluation run complete")

	return run, skipped.ErrorOrNil()
}
