package answereval

import (
	"github.com/datar-psa/answereval/api"
	"github.com/datar-psa/answereval/composite"
)

type MissingFieldError = api.MissingFieldError
type MalformedRecordError = api.MalformedRecordError

var (
	// ErrMissingField matches records lacking an answer field
	ErrMissingField = api.ErrMissingField
	// ErrMalformedRecord matches records that cannot be interpreted
	ErrMalformedRecord = api.ErrMalformedRecord
	// ErrLLMGenerationFailed is returned when LLM generation fails
	ErrLLMGenerationFailed = api.ErrLLMGenerationFailed
	// ErrInvalidWeights is returned for a weight table that is negative or does not sum to 1
	ErrInvalidWeights = composite.ErrInvalidWeights
)
