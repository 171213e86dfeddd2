package collector

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/datar-psa/answereval/api"
	"github.com/datar-psa/answereval/internal/testutils"
	"github.com/datar-psa/answereval/results"
)

const integrationTrace = `{"resourceSpans":[{"resource":{"attributes":[{"key":"service.name","value":{"stringValue":"user-service"}}]},"scopeSpans":[{"spans":[{"traceId":"5b8efff798038103d269b633813fc60c","spanId":"eee19b7ec3c1b174","name":"GET /api/users","kind":2,"startTimeUnixNano":"1700000000000000000","endTimeUnixNano":"1700000030000000000","status":{"code":2,"message":"TimeoutError: query exceeded 30 second limit"},"attributes":[{"key":"http.status_code","value":{"intValue":"500"}},{"key":"db.statement","value":{"stringValue":"SELECT * FROM users WHERE active = true"}}]}]}]}]}`

func integrationCase() results.TestCase {
	return results.TestCase{
		Name:   "db_timeout",
		SpanID: "eee19b7ec3c1b174",
		Trace:  json.RawMessage(integrationTrace),
	}
}

func checkAnswer(t *testing.T, resp Response) {
	t.Helper()
	for _, f := range api.Fields {
		if resp.Answer[f] == "" {
			t.Errorf("Answer() field %s is empty, answer = %v", f, resp.Answer)
		}
	}
}

// TestGeneratorAnswerer_Integration asks Gemini on Vertex AI to explain a trace.
// Responses are replayed from testdata; set UPDATE_TESTS=true with Google credentials to record.
func TestGeneratorAnswerer_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	llm := testutils.NewGeminiGenerator(t, testutils.DefaultGeminiTestConfig("generator_answerer"), "publishers/google/models/gemini-2.5-flash")
	resp, err := NewGeneratorAnswerer(llm, "").Answer(context.Background(), integrationCase())
	if err != nil {
		t.Fatalf("Answer() unexpected error = %v", err)
	}
	checkAnswer(t, resp)
}

// TestServiceAnswerer_Integration runs against a span explainer at SPAN_EXPLAINER_URL
// (default http://localhost:9000), replaying recorded responses unless UPDATE_TESTS=true.
func TestServiceAnswerer_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := testutils.HypertClientConfig{TestDataDir: "testdata", SubDir: "span_explainer"}
	testutils.SkipWithoutRecordings(t, cfg)

	baseURL := os.Getenv("SPAN_EXPLAINER_URL")
	if baseURL == "" {
		baseURL = "http://localhost:9000"
	}

	ctx := context.Background()
	client := NewClient(baseURL, WithHTTPClient(testutils.NewHypertClient(t, cfg)))
	a, err := NewServiceAnswerer(ctx, client, "")
	if err != nil {
		t.Fatalf("NewServiceAnswerer() unexpected error = %v", err)
	}

	resp, err := a.Answer(ctx, integrationCase())
	if err != nil {
		t.Fatalf("Answer() unexpected error = %v", err)
	}
	if resp.UploadID == "" {
		t.Error("Answer() returned no upload id")
	}
	checkAnswer(t, resp)
}
