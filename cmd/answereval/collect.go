package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/datar-psa/answereval/collector"
	"github.com/datar-psa/answereval/config"
	"github.com/datar-psa/answereval/gemini"
	"github.com/datar-psa/answereval/results"
)

type CollectCommand struct {
	Cases       string        `long:"cases" required:"true" description:"Test case file holding a test_cases array"`
	Out         string        `long:"out" default:"llm_test_results.json" description:"Results file to write"`
	ServiceURL  string        `long:"service-url" description:"Span explainer address (default from config: http://localhost:9000)"`
	GeminiModel string        `long:"gemini-model" description:"Ask this Gemini model on Vertex AI directly instead of the span explainer"`
	Question    string        `long:"question" description:"Question asked for every test case"`
	Delay       time.Duration `long:"delay" description:"Pause between test cases (default from config: 1s)"`

	root   *AnswerEvalCommand
	stdout io.Writer
	// answerer replaces the configured one in tests
	answerer collector.Answerer
}

func (cmd *CollectCommand) Execute(args []string) error {
	cfg, log, err := cmd.root.setup()
	if err != nil {
		return err
	}
	if cmd.ServiceURL != "" {
		cfg.Collector.ServiceURL = cmd.ServiceURL
	}
	if cmd.GeminiModel != "" {
		cfg.Collector.GeminiModel = cmd.GeminiModel
	}
	if cmd.Question != "" {
		cfg.Collector.Question = cmd.Question
	}
	if cmd.Delay != 0 {
		cfg.Collector.Delay = cmd.Delay
	}

	cases, err := results.LoadTestCases(cmd.Cases)
	if err != nil {
		return err
	}
	log.Info().Int("cases", len(cases)).Str("file", cmd.Cases).Msg("loaded test cases")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	answerer, meta, err := cmd.buildAnswerer(ctx, cfg, log)
	if err != nil {
		return err
	}

	c := collector.New(answerer, collector.WithLogger(log), collector.WithDelay(cfg.Collector.Delay))
	file, collectErr := c.Collect(ctx, cases, meta)
	if collectErr != nil && !errors.Is(collectErr, context.Canceled) {
		return collectErr
	}

	if err := results.Save(cmd.Out, file); err != nil {
		return err
	}

	out := cmd.stdout
	if out == nil {
		out = os.Stdout
	}
	failed := len(file.Failed())
	fmt.Fprintf(out, "Total tests: %d\nSuccessful: %d\nFailed: %d\nResults saved to: %s\n",
		len(file.Results), len(file.Results)-failed, failed, cmd.Out)

	if collectErr != nil {
		return fmt.Errorf("collection interrupted after %d of %d cases: %w", len(file.Results), len(cases), collectErr)
	}
	return nil
}

func (cmd *CollectCommand) buildAnswerer(ctx context.Context, cfg *config.Config, log zerolog.Logger) (collector.Answerer, results.Metadata, error) {
	if cmd.answerer != nil {
		return cmd.answerer, results.Metadata{}, nil
	}

	if model := cfg.Collector.GeminiModel; model != "" {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			Backend:  genai.BackendVertexAI,
			Project:  cfg.Collector.GoogleProject,
			Location: cfg.Collector.GoogleLocation,
		})
		if err != nil {
			return nil, results.Metadata{}, fmt.Errorf("failed to create genai client: %w", err)
		}
		llm := gemini.NewGenerator(client, model, gemini.WithTemperature(0))
		return collector.NewGeneratorAnswerer(llm, cfg.Collector.Question), results.Metadata{Model: model}, nil
	}

	client := collector.NewClient(cfg.Collector.ServiceURL,
		collector.WithRetry(cfg.Collector.MaxTries, 500*time.Millisecond),
		collector.WithClientLogger(log),
	)
	answerer, err := collector.NewServiceAnswerer(ctx, client, cfg.Collector.Question)
	if err != nil {
		return nil, results.Metadata{}, err
	}
	log.Info().Str("user_id", answerer.UserID()).Msg("registered with span explainer")
	return answerer, results.Metadata{BaseURL: client.BaseURL(), UserID: answerer.UserID()}, nil
}
