package evaluation

import (
	"github.com/datar-psa/answereval/api"
	"github.com/datar-psa/answereval/composite"
)

// TestScore is the scored form of one record
type TestScore struct {
	TestName     string               `json:"test_name"`
	RootCause    composite.FieldScore `json:"root_cause"`
	Impact       composite.FieldScore `json:"impact"`
	Action       composite.FieldScore `json:"action"`
	Overall      float64              `json:"overall_score"`
	ResponseTime float64              `json:"response_time"`
}

// Field returns the score of the given answer field
func (s TestScore) Field(f api.Field) composite.FieldScore {
	switch f {
	case api.FieldRootCause:
		return s.RootCause
	case api.FieldImpact:
		return s.Impact
	case api.FieldSuggestedAction:
		return s.Action
	}
	return composite.FieldScore{}
}

// ValidateRecord checks that a record can be scored. Errors carry r.Index.
func ValidateRecord(r api.Record) error {
	index := r.Index
	if r.TestName == "" {
		return &api.MalformedRecordError{Index: index, Reason: "test_name is missing"}
	}
	if r.Expected == nil {
		return &api.MalformedRecordError{TestName: r.TestName, Index: index, Reason: "expected_answer is missing"}
	}
	if r.Actual == nil {
		return &api.MalformedRecordError{TestName: r.TestName, Index: index, Reason: "llm_answer is missing"}
	}

	sides := []struct {
		name   string
		answer api.Answer
	}{
		{api.SideExpected, r.Expected},
		{api.SideActual, r.Actual},
	}
	for _, side := range sides {
		for _, f := range api.Fields {
			if _, ok := side.answer[f]; !ok {
				return &api.MissingFieldError{TestName: r.TestName, Index: index, Side: side.name, Field: f}
			}
		}
	}
	return nil
}

func scoreRecord(s *composite.Scorer, r api.Record) TestScore {
	rc := s.Field(r.Expected[api.FieldRootCause], r.Actual[api.FieldRootCause])
	imp := s.Field(r.Expected[api.FieldImpact], r.Actual[api.FieldImpact])
	act := s.Field(r.Expected[api.FieldSuggestedAction], r.Actual[api.FieldSuggestedAction])

	return TestScore{
		TestName:     r.TestName,
		RootCause:    rc,
		Impact:       imp,
		Action:       act,
		Overall:      composite.Overall(rc.Score, imp.Score, act.Score),
		ResponseTime: r.ResponseTime,
	}
}
