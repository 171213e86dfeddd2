package results

import (
	"encoding/json"
	"fmt"
	"os"
)

// TestCase is one trace to explain together with its reference answer
type TestCase struct {
	Name           string          `json:"name"`
	SpanID         string          `json:"span_id"`
	Trace          json.RawMessage `json:"trace"`
	ExpectedAnswer json.RawMessage `json:"expected_answer"`
}

type testCaseFile struct {
	TestCases []TestCase `json:"test_cases"`
}

// LoadTestCases reads a test case file of the form {"test_cases": [...]}
func LoadTestCases(path string) ([]TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read test cases: %w", err)
	}

	var file testCaseFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode test cases: %w", err)
	}
	for i, tc := range file.TestCases {
		if tc.Name == "" {
			return nil, fmt.Errorf("test case %d: name is missing", i)
		}
		if len(tc.Trace) == 0 {
			return nil, fmt.Errorf("test case %d (%q): trace is missing", i, tc.Name)
		}
	}
	return file.TestCases, nil
}
