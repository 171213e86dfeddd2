package answereval

import (
	"context"

	"google.golang.org/genai"

	"github.com/datar-psa/answereval/api"
	"github.com/datar-psa/answereval/collector"
	"github.com/datar-psa/answereval/composite"
	"github.com/datar-psa/answereval/evaluation"
	"github.com/datar-psa/answereval/gemini"
	"github.com/datar-psa/answereval/heuristic"
)

type Score = api.Score
type ScoreInputs = api.ScoreInputs
type Scorer = api.Scorer

// Heuristic exposes the five text-similarity metrics as scorers sharing one extraction setup.
type Heuristic struct {
	extraction heuristic.ExtractionConfig
	weights    composite.Weights
}

// HeuristicOptions configures Heuristic creation
type HeuristicOptions struct {
	extraction *heuristic.ExtractionConfig
	weights    *composite.Weights
}

// WithExtraction overrides stop words, minimum keyword length and technical term patterns
func WithExtraction(cfg heuristic.ExtractionConfig) func(*HeuristicOptions) {
	return func(opts *HeuristicOptions) {
		opts.extraction = &cfg
	}
}

// WithWeights overrides the composite weight table
func WithWeights(w composite.Weights) func(*HeuristicOptions) {
	return func(opts *HeuristicOptions) {
		opts.weights = &w
	}
}

// NewHeuristic creates a new Heuristic using functional options.
func NewHeuristic(opts ...func(*HeuristicOptions)) *Heuristic {
	options := &HeuristicOptions{}
	for _, opt := range opts {
		opt(options)
	}

	h := &Heuristic{
		extraction: heuristic.DefaultExtractionConfig(),
		weights:    composite.DefaultWeights(),
	}
	if options.extraction != nil {
		h.extraction = *options.extraction
	}
	if options.weights != nil {
		h.weights = *options.weights
	}
	return h
}

// Config returns the composite configuration the Heuristic scores with
func (h *Heuristic) Config() composite.Config {
	return composite.Config{Weights: h.weights, Extraction: h.extraction}
}

// KeywordOverlap returns a scorer for the Jaccard similarity of keyword sets.
func (h *Heuristic) KeywordOverlap() api.Scorer {
	return heuristic.KeywordOverlapScorer(heuristic.KeywordOverlapOptions{Extraction: &h.extraction})
}

// SequenceSimilarity returns a scorer for the character-level similarity ratio.
func (h *Heuristic) SequenceSimilarity() api.Scorer {
	return heuristic.SequenceSimilarityScorer(heuristic.SequenceSimilarityOptions{AutoJunk: h.extraction.SequenceAutoJunk})
}

// LengthRatio returns a scorer for the ratio of the shorter to the longer text.
func (h *Heuristic) LengthRatio() api.Scorer {
	return heuristic.LengthRatioScorer()
}

// NumberAccuracy returns a scorer for the share of expected numbers found in the output.
func (h *Heuristic) NumberAccuracy() api.Scorer {
	return heuristic.NumberAccuracyScorer()
}

// TechnicalTermMatch returns a scorer for the share of expected technical terms found in the output.
func (h *Heuristic) TechnicalTermMatch() api.Scorer {
	return heuristic.TechnicalTermMatchScorer(heuristic.TechnicalTermMatchOptions{Extraction: &h.extraction})
}

// Metrics returns the five metric scorers in report order.
func (h *Heuristic) Metrics() []api.Scorer {
	return []api.Scorer{
		h.KeywordOverlap(),
		h.SequenceSimilarity(),
		h.LengthRatio(),
		h.NumberAccuracy(),
		h.TechnicalTermMatch(),
	}
}

// Composite returns the weighted field scorer. It fails if the weight table is invalid.
func (h *Heuristic) Composite() (api.Scorer, error) {
	return composite.New(h.Config())
}

// Evaluate scores records with the Heuristic's configuration and returns the run in input order.
func (h *Heuristic) Evaluate(ctx context.Context, records []Record, opts ...evaluation.Option) (*evaluation.Run, error) {
	e, err := evaluation.New(h.Config(), opts...)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, records)
}

// GeminiOptions configures Gemini answerer creation
type GeminiOptions struct {
	genaiClient *genai.Client
	modelName   string
	question    string
}

// WithGenaiClient sets the Gemini client
func WithGenaiClient(client *genai.Client) func(*GeminiOptions) {
	return func(opts *GeminiOptions) {
		opts.genaiClient = client
	}
}

// WithModelName sets the model name
func WithModelName(modelName string) func(*GeminiOptions) {
	return func(opts *GeminiOptions) {
		opts.modelName = modelName
	}
}

// WithQuestion sets the question asked for every test case
func WithQuestion(question string) func(*GeminiOptions) {
	return func(opts *GeminiOptions) {
		opts.question = question
	}
}

// NewGeminiAnswerer creates an answerer that asks Gemini to explain trace spans.
// Example model: "publishers/google/models/gemini-2.5-flash".
func NewGeminiAnswerer(opts ...func(*GeminiOptions)) Answerer {
	options := &GeminiOptions{}
	for _, opt := range opts {
		opt(options)
	}

	var llm api.LLMGenerator
	// Only add the generator if genaiClient is provided
	if options.genaiClient != nil && options.modelName != "" {
		llm = gemini.NewGenerator(options.genaiClient, options.modelName, gemini.WithTemperature(0))
	}
	return collector.NewGeneratorAnswerer(llm, options.question)
}
