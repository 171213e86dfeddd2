// Package results reads and writes the JSON files exchanged between answer collection and evaluation.
package results

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"

	"github.com/datar-psa/answereval/api"
)

// Entry statuses written by the collector
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metadata describes one collection run
type Metadata struct {
	// Timestamp is kept as text; older files carry ISO timestamps without a zone
	Timestamp  string `json:"timestamp"`
	RunID      string `json:"run_id,omitempty"`
	UserID     string `json:"user_id,omitempty"`
	TotalTests int    `json:"total_tests"`
	BaseURL    string `json:"base_url,omitempty"`
	Model      string `json:"model,omitempty"`
}

// Entry is one collected answer. Answers stay raw until Records interprets them.
type Entry struct {
	TestName            string          `json:"test_name"`
	SpanID              string          `json:"span_id,omitempty"`
	UploadID            string          `json:"upload_id,omitempty"`
	ExpectedAnswer      json.RawMessage `json:"expected_answer,omitempty"`
	LLMAnswer           json.RawMessage `json:"llm_answer,omitempty"`
	ResponseTimeSeconds *float64        `json:"response_time_seconds,omitempty"`
	Status              string          `json:"status,omitempty"`
	Error               string          `json:"error,omitempty"`
	ErrorDetails        string          `json:"error_details,omitempty"`
}

// File is the results document
type File struct {
	Metadata Metadata `json:"metadata"`
	Results  []Entry  `json:"results"`
}

// Load reads a results file from disk
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results file: %w", err)
	}
	defer f.Close()

	file, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

// Decode parses a results document
func Decode(r io.Reader) (*File, error) {
	var file File
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode results: %w", err)
	}
	return &file, nil
}

// Save writes file as indented JSON
func Save(path string, file *File) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}
	return nil
}

// EncodeAnswer renders an answer for an Entry
func EncodeAnswer(a api.Answer) (json.RawMessage, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answer: %w", err)
	}
	return data, nil
}

// Failed returns the names of entries whose collection failed
func (f *File) Failed() []string {
	var names []string
	for _, e := range f.Results {
		if e.Status == StatusError {
			names = append(names, e.TestName)
		}
	}
	return names
}

// Records converts the collected entries into scoreable records, in file order.
//
// Entries whose collection failed are not answers and are left out; see Failed.
// Absent answer fields stay absent so that evaluation reports them as missing.
// Entries with a malformed structure are left out and reported together as
// *api.MalformedRecordError values inside a *multierror.Error.
func (f *File) Records() ([]api.Record, error) {
	var errs *multierror.Error
	records := make([]api.Record, 0, len(f.Results))
	for i, e := range f.Results {
		if e.Status == StatusError {
			continue
		}
		r, err := e.record(i)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		records = append(records, r)
	}
	return records, errs.ErrorOrNil()
}

func (e Entry) record(index int) (api.Record, error) {
	expected, err := decodeAnswer(index, e.TestName, api.SideExpected, e.ExpectedAnswer)
	if err != nil {
		return api.Record{}, err
	}
	actual, err := decodeAnswer(index, e.TestName, api.SideActual, e.LLMAnswer)
	if err != nil {
		return api.Record{}, err
	}
	if e.ResponseTimeSeconds == nil {
		return api.Record{}, &api.MalformedRecordError{TestName: e.TestName, Index: index, Reason: "response_time_seconds is missing"}
	}

	return api.Record{
		Index:        index,
		TestName:     e.TestName,
		Expected:     expected,
		Actual:       actual,
		ResponseTime: *e.ResponseTimeSeconds,
	}, nil
}

var jsonNull = []byte("null")

func decodeAnswer(index int, testName, side string, raw json.RawMessage) (api.Answer, error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return nil, &api.MalformedRecordError{TestName: testName, Index: index, Reason: side + " is missing"}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, &api.MalformedRecordError{TestName: testName, Index: index, Reason: side + " is not an object", Err: err}
	}

	answer := make(api.Answer, len(api.Fields))
	for _, f := range api.Fields {
		v, ok := fields[string(f)]
		if !ok {
			continue
		}
		var text string
		if bytes.Equal(bytes.TrimSpace(v), jsonNull) {
			return nil, &api.MalformedRecordError{TestName: testName, Index: index, Reason: fmt.Sprintf("%s.%s is null", side, f)}
		}
		if err := json.Unmarshal(v, &text); err != nil {
			return nil, &api.MalformedRecordError{TestName: testName, Index: index, Reason: fmt.Sprintf("%s.%s is not a string", side, f), Err: err}
		}
		answer[f] = text
	}
	return answer, nil
}
