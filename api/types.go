package api

import "context"

// LLMGenerator is an interface for generating text using an LLM
// A Gemini implementation is provided in the gemini subpackage
type LLMGenerator interface {
	// Generate generates text based on the provided prompt
	Generate(ctx context.Context, prompt string) (string, error)

	// StructuredGenerate generates structured data based on the provided prompt and JSON schema
	// schema must be a valid JSON schema (map[string]interface{})
	// Returns the generated data as a map[string]interface{} or an error
	StructuredGenerate(ctx context.Context, prompt string, schema map[string]interface{}) (map[string]interface{}, error)
}

// Field names one independently scored part of an answer.
type Field string

const (
	FieldRootCause       Field = "root_cause"
	FieldImpact          Field = "impact"
	FieldSuggestedAction Field = "suggested_action"
)

// Fields lists every answer field in report order.
var Fields = []Field{FieldRootCause, FieldImpact, FieldSuggestedAction}

// Valid reports whether f is one of the known answer fields.
func (f Field) Valid() bool {
	switch f {
	case FieldRootCause, FieldImpact, FieldSuggestedAction:
		return true
	}
	return false
}

// Answer maps each field to its free text.
// A missing key means the field was absent in the input; an empty string is a present, empty answer.
type Answer map[Field]string

// Record is one test case: the reference answer, the model's answer and how long the model took.
type Record struct {
	// Index is the record's position in its source, e.g. the entry number in a results file.
	// Validation errors report it so they point at the same entry whichever layer raised them.
	Index    int
	TestName string
	Expected Answer
	Actual   Answer
	// ResponseTime is the answer latency in seconds
	ResponseTime float64
}

// Score represents the result of an evaluation
type Score struct {
	// Name identifies the scorer that produced this result
	Name string
	// Score is a value between 0 and 1, where 1 is the best possible score
	Score float64
	// Metadata contains additional information about the scoring process
	Metadata map[string]any
	// Error contains any error that occurred during scoring
	Error error
}

// ScoreInputs carries inputs for scoring across different scorers.
//
// Fields usage conventions:
// - Output:   the actual output produced by the model
// - Expected: the reference/expected output, treated as ground truth
// - Input:    the original prompt/context/question given to the model (optional)
type ScoreInputs struct {
	Output   string
	Expected string
	Input    string
}

// Scorer evaluates the quality of an output
type Scorer interface {
	// Score evaluates the output and returns a score
	// in: container for output/expected/input depending on scorer needs
	Score(ctx context.Context, in ScoreInputs) Score
}
