// Package gemini implements api.LLMGenerator on top of google.golang.org/genai.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/datar-psa/answereval/api"
)

// Generator wraps a genai.Client to implement the LLMGenerator interface
type Generator struct {
	client      *genai.Client
	modelName   string
	temperature *float32
}

// Option configures a Generator
type Option func(*Generator)

// WithTemperature sets the sampling temperature. Answers collected for
// evaluation are usually generated at 0 so reruns stay comparable.
func WithTemperature(t float32) Option {
	return func(g *Generator) {
		g.temperature = &t
	}
}

// NewGenerator creates a new Gemini generator
// client: genai.Client from google.golang.org/genai
// modelName: the model to use (e.g., "gemini-2.5-flash")
func NewGenerator(client *genai.Client, modelName string, opts ...Option) *Generator {
	g := &Generator{
		client:    client,
		modelName: modelName,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Model returns the model name the generator calls
func (g *Generator) Model() string {
	return g.modelName
}

// Generate implements LLMGenerator.Generate
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, prompt, g.config())
}

// StructuredGenerate implements LLMGenerator.StructuredGenerate.
// The schema is passed to the model as a JSON schema and the reply is decoded as a JSON object.
func (g *Generator) StructuredGenerate(ctx context.Context, prompt string, schema map[string]interface{}) (map[string]interface{}, error) {
	cfg := g.config()
	cfg.ResponseMIMEType = "application/json"
	cfg.ResponseJsonSchema = schema

	text, err := g.generate(ctx, prompt, cfg)
	if err != nil {
		return nil, err
	}

	var out map[string]interface{}
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &out); err != nil {
		return nil, fmt.Errorf("failed to decode structured response: %w", err)
	}
	return out, nil
}

func (g *Generator) config() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if g.temperature != nil {
		cfg.Temperature = genai.Ptr(*g.temperature)
	}
	return cfg
}

func (g *Generator) generate(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	content := &genai.Content{
		Role: "user",
		Parts: []*genai.Part{
			{Text: prompt},
		},
	}

	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.modelName,
		[]*genai.Content{content},
		cfg,
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no parts in response")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

// stripCodeFence removes a ```json fence some models wrap around JSON replies
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Verify that Generator implements LLMGenerator
var _ api.LLMGenerator = (*Generator)(nil)
