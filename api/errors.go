package api

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField matches any *MissingFieldError via errors.Is
	ErrMissingField = errors.New("missing required answer field")
	// ErrMalformedRecord matches any *MalformedRecordError via errors.Is
	ErrMalformedRecord = errors.New("malformed record")
	// ErrLLMGenerationFailed is returned when LLM generation fails
	ErrLLMGenerationFailed = errors.New("LLM generation failed")
)

// Answer sides of a record.
const (
	SideExpected = "expected_answer"
	SideActual   = "llm_answer"
)

// MissingFieldError reports a record whose expected or actual answer lacks one of the fields.
type MissingFieldError struct {
	TestName string
	Index    int
	// Side is SideExpected or SideActual
	Side  string
	Field Field
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("record %d (%q): %s.%s is missing", e.Index, e.TestName, e.Side, e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// MalformedRecordError reports a record that cannot be interpreted at all.
type MalformedRecordError struct {
	TestName string
	Index    int
	Reason   string
	Err      error
}

func (e *MalformedRecordError) Error() string {
	msg := fmt.Sprintf("record %d", e.Index)
	if e.TestName != "" {
		msg += fmt.Sprintf(" (%q)", e.TestName)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}
