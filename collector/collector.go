// Package collector gathers model answers for a set of test cases and writes them as a results file.
package collector

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/datar-psa/answereval/results"
)

// Collector runs an Answerer over test cases one at a time
type Collector struct {
	answerer Answerer
	logger   zerolog.Logger
	delay    time.Duration
}

// Option configures a Collector
type Option func(*Collector)

// WithLogger sets the logger used for per-case progress
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Collector) {
		c.logger = logger
	}
}

// WithDelay sets the pause between two test cases
func WithDelay(d time.Duration) Option {
	return func(c *Collector) {
		c.delay = d
	}
}

// New creates a Collector. The default delay between cases is one second.
func New(answerer Answerer, opts ...Option) *Collector {
	c := &Collector{
		answerer: answerer,
		logger:   zerolog.Nop(),
		delay:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect answers every test case in order. A failing case is recorded with status
// "error" and collection moves on. The only error returned is the context's; the
// file then holds the cases answered so far.
//
// meta is copied into the file; Timestamp, RunID and TotalTests are filled in when empty.
func (c *Collector) Collect(ctx context.Context, cases []results.TestCase, meta results.Metadata) (*results.File, error) {
	if meta.Timestamp == "" {
		meta.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	if meta.RunID == "" {
		meta.RunID = uuid.NewString()
	}
	meta.TotalTests = len(cases)

	file := &results.File{
		Metadata: meta,
		Results:  make([]results.Entry, 0, len(cases)),
	}

	for i, tc := range cases {
		if i > 0 && c.delay > 0 {
			select {
			case <-ctx.Done():
				return file, ctx.Err()
			case <-time.After(c.delay):
			}
		}
		if err := ctx.Err(); err != nil {
			return file, err
		}

		log := c.logger.With().Str("test_name", tc.Name).Int("case", i+1).Int("total", len(cases)).Logger()
		log.Info().Msg("collecting answer")

		entry := c.collectOne(ctx, tc)
		if entry.Status == results.StatusError {
			log.Error().Str("error", entry.Error).Msg("answer failed")
		} else {
			log.Info().Float64("response_time_seconds", *entry.ResponseTimeSeconds).Msg("answer collected")
		}
		file.Results = append(file.Results, entry)
	}

	succeeded := len(cases) - len(file.Failed())
	c.logger.Info().
		Str("run_id", meta.RunID).
		Int("total", len(cases)).
		Int("succeeded", succeeded).
		Int("failed", len(cases)-succeeded).
		Msg("collection complete")

	return file, nil
}

func (c *Collector) collectOne(ctx context.Context, tc results.TestCase) results.Entry {
	entry := results.Entry{
		TestName:       tc.Name,
		SpanID:         tc.SpanID,
		ExpectedAnswer: tc.ExpectedAnswer,
	}

	start := time.Now()
	resp, err := c.answerer.Answer(ctx, tc)
	elapsed := time.Since(start)
	entry.UploadID = resp.UploadID
	if err != nil {
		return failed(entry, err)
	}

	actual, err := results.EncodeAnswer(resp.Answer)
	if err != nil {
		return failed(entry, err)
	}
	if resp.Elapsed > 0 {
		elapsed = resp.Elapsed
	}
	seconds := roundSeconds(elapsed)

	entry.LLMAnswer = actual
	entry.ResponseTimeSeconds = &seconds
	entry.Status = results.StatusSuccess
	return entry
}

func failed(entry results.Entry, err error) results.Entry {
	entry.Status = results.StatusError
	entry.Error = err.Error()
	var herr *HTTPError
	if errors.As(err, &herr) {
		entry.ErrorDetails = herr.Body
	}
	return entry
}

// roundSeconds keeps two decimals
func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}
