package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"

	"github.com/datar-psa/answereval/evaluation"
	"github.com/datar-psa/answereval/report"
	"github.com/datar-psa/answereval/results"
)

type EvaluateCommand struct {
	Results     string `short:"r" long:"results" required:"true" description:"Results file written by collect"`
	OutDir      string `short:"o" long:"out-dir" default:"./metrics-assessments" description:"Directory for the report, CSV and metrics files"`
	SkipInvalid bool   `long:"skip-invalid" description:"Drop invalid records instead of failing"`
	Concurrency int    `long:"concurrency" description:"Records scored in parallel (default from config, 0 means all CPUs)"`
	NoColor     bool   `long:"no-color" description:"Disable coloured console output"`

	root   *AnswerEvalCommand
	stdout io.Writer
}

func (cmd *EvaluateCommand) Execute(args []string) error {
	cfg, log, err := cmd.root.setup()
	if err != nil {
		return err
	}
	if cmd.SkipInvalid {
		cfg.SkipInvalid = true
	}
	if cmd.Concurrency != 0 {
		cfg.Concurrency = cmd.Concurrency
	}

	scoring, err := cfg.Composite()
	if err != nil {
		return err
	}

	file, err := results.Load(cmd.Results)
	if err != nil {
		return err
	}
	if failed := file.Failed(); len(failed) > 0 {
		log.Warn().Strs("test_names", failed).Msg("skipping entries whose collection failed")
	}

	records, err := file.Records()
	if err != nil {
		if !cfg.SkipInvalid {
			return err
		}
		log.Warn().Err(err).Msg("skipping malformed entries")
	}

	evaluator, err := evaluation.New(scoring,
		evaluation.WithLogger(log),
		evaluation.WithConcurrency(cfg.Concurrency),
		evaluation.WithSkipInvalid(cfg.SkipInvalid),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	run, err := evaluator.Run(ctx, records)
	if run == nil {
		return err
	}
	if err != nil {
		log.Warn().Err(err).Msg("some records were not scored")
	}
	if len(run.Scores) == 0 {
		return errors.New("no records could be scored")
	}

	out := cmd.stdout
	if out == nil {
		out = os.Stdout
	}
	if err := report.Console(out, run, !cmd.NoColor && !color.NoColor); err != nil {
		return err
	}

	paths, err := report.WriteAll(cmd.OutDir, run)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintf(out, "wrote %s\n", p)
	}
	log.Info().Str("run_id", run.ID.String()).Str("out_dir", cmd.OutDir).Msg("evaluation complete")
	return nil
}
