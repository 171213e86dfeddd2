package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/datar-psa/answereval/api"
	"github.com/datar-psa/answereval/results"
)

// DefaultQuestion is asked for every test case
const DefaultQuestion = "Explain the root cause, impact, and suggested action for this error."

// Response is one collected answer
type Response struct {
	Answer api.Answer
	// UploadID is set by answerers that upload the trace first
	UploadID string
	// Elapsed is the answer latency as measured by the answerer, zero if it does not measure one
	Elapsed time.Duration
}

// Answerer produces the model's answer for a test case
type Answerer interface {
	Answer(ctx context.Context, tc results.TestCase) (Response, error)
}

// ServiceAnswerer uploads each trace to the span explainer and asks it to explain the span
type ServiceAnswerer struct {
	client   *Client
	session  Session
	question string
}

// NewServiceAnswerer registers with the span explainer and returns an answerer using that session.
// An empty question means DefaultQuestion.
func NewServiceAnswerer(ctx context.Context, client *Client, question string) (*ServiceAnswerer, error) {
	if question == "" {
		question = DefaultQuestion
	}
	session, err := client.Register(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to register with span explainer: %w", err)
	}
	return &ServiceAnswerer{client: client, session: session, question: question}, nil
}

// UserID is the user the answerer registered as
func (a *ServiceAnswerer) UserID() string {
	return a.session.UserID
}

// Answer implements Answerer. Elapsed covers the explain call only, not the upload.
func (a *ServiceAnswerer) Answer(ctx context.Context, tc results.TestCase) (Response, error) {
	uploadID, err := a.client.UploadTrace(ctx, a.session.Token, tc.Trace)
	if err != nil {
		return Response{}, err
	}

	start := time.Now()
	raw, err := a.client.ExplainSpan(ctx, a.session.Token, uploadID, tc.SpanID, a.question)
	elapsed := time.Since(start)
	if err != nil {
		return Response{UploadID: uploadID}, err
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Response{UploadID: uploadID}, fmt.Errorf("answer is not a JSON object: %w", err)
	}
	answer, err := answerFromMap(fields)
	if err != nil {
		return Response{UploadID: uploadID}, err
	}
	return Response{Answer: answer, UploadID: uploadID, Elapsed: elapsed}, nil
}

// GeneratorAnswerer asks an LLM directly, with the trace inlined in the prompt
type GeneratorAnswerer struct {
	llm      api.LLMGenerator
	question string
}

// NewGeneratorAnswerer creates an answerer over llm. An empty question means DefaultQuestion.
func NewGeneratorAnswerer(llm api.LLMGenerator, question string) *GeneratorAnswerer {
	if question == "" {
		question = DefaultQuestion
	}
	return &GeneratorAnswerer{llm: llm, question: question}
}

const explainPromptTemplate = `You are an expert distributed systems engineer analyzing OpenTelemetry trace data.
Explain the span with id %q in the trace below.

[BEGIN DATA]
[Question]: %s
[Trace]: %s
[END DATA]

Answer with three plain strings:
- root_cause: the technical failure point, with the exact error or exception type, numeric limits and resource names from the trace
- impact: which endpoint or operation failed, for whom, and the status codes returned
- suggested_action: concrete remediation, with current and recommended values where the trace has them

Quote numbers, status codes, error types and paths exactly as they appear in the trace.`

var answerSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		string(api.FieldRootCause): map[string]interface{}{
			"type":        "string",
			"description": "What caused the error",
		},
		string(api.FieldImpact): map[string]interface{}{
			"type":        "string",
			"description": "What services or users were affected and how",
		},
		string(api.FieldSuggestedAction): map[string]interface{}{
			"type":        "string",
			"description": "Concrete steps to fix or prevent the issue",
		},
	},
	"required": []string{string(api.FieldRootCause), string(api.FieldImpact), string(api.FieldSuggestedAction)},
}

// Answer implements Answerer
func (a *GeneratorAnswerer) Answer(ctx context.Context, tc results.TestCase) (Response, error) {
	if a.llm == nil {
		return Response{}, fmt.Errorf("LLM generator is required")
	}

	prompt := fmt.Sprintf(explainPromptTemplate, tc.SpanID, a.question, strings.TrimSpace(string(tc.Trace)))
	structured, err := a.llm.StructuredGenerate(ctx, prompt, answerSchema)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", api.ErrLLMGenerationFailed, err)
	}

	answer, err := answerFromMap(structured)
	if err != nil {
		return Response{}, err
	}
	return Response{Answer: answer}, nil
}

// answerFromMap keeps the known answer fields. Absent fields stay absent; present ones must be strings.
func answerFromMap(m map[string]any) (api.Answer, error) {
	answer := make(api.Answer, len(api.Fields))
	for _, f := range api.Fields {
		v, ok := m[string(f)]
		if !ok {
			continue
		}
		text, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("answer field %s is %T, not a string", f, v)
		}
		answer[f] = text
	}
	return answer, nil
}
