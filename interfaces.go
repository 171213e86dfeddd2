package answereval

import (
	"github.com/datar-psa/answereval/api"
	"github.com/datar-psa/answereval/collector"
	"github.com/datar-psa/answereval/results"
)

type LLMGenerator = api.LLMGenerator
type Answerer = collector.Answerer
type TestCase = results.TestCase

type Field = api.Field
type Answer = api.Answer
type Record = api.Record

const (
	FieldRootCause       = api.FieldRootCause
	FieldImpact          = api.FieldImpact
	FieldSuggestedAction = api.FieldSuggestedAction
)

var Fields = api.Fields
