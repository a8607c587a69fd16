package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestQuestionSet_CountMismatch(t *testing.T) {
	set := &QuestionSet{QuestionCount: 2, Questions: []*Question{{Text: "only one"}}}
	assert.Equal(t, 1, set.ActualQuestionCount())
	assert.True(t, set.HasCountMismatch())

	set.QuestionCount = 1
	assert.False(t, set.HasCountMismatch())
}

func TestQuestion_CorrectLabelConsistent(t *testing.T) {
	tests := []struct {
		name    string
		label   *string
		correct []string
		want    bool
	}{
		{name: "label matches single correct option", label: strPtr("B"), correct: []string{"B"}, want: true},
		{name: "label points at wrong option", label: strPtr("A"), correct: []string{"B"}, want: false},
		{name: "two options flagged", label: strPtr("A"), correct: []string{"A", "B"}, want: false},
		{name: "label without flagged option", label: strPtr("C"), want: false},
		{name: "no label and no flags", label: nil, want: true},
		{name: "empty label and no flags", label: strPtr(""), want: true},
		{name: "flag without label", label: nil, correct: []string{"A"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &Question{CorrectOptionLabel: tt.label}
			for _, l := range []string{"A", "B", "C", "D"} {
				opt := &Option{Label: l}
				for _, c := range tt.correct {
					if c == l {
						opt.IsCorrect = true
					}
				}
				q.Options = append(q.Options, opt)
			}
			assert.Equal(t, tt.want, q.CorrectLabelConsistent())
		})
	}
}

func TestDomainError(t *testing.T) {
	err := NewNotFoundError("subject", 7)
	assert.Equal(t, CodeNotFound, err.Code)
	assert.Equal(t, "subject not found with ID: 7", err.Error())
	assert.Equal(t, int64(7), err.Context["id"])

	wrapped := NewInternalError("Failed to list subjects", assert.AnError)
	assert.ErrorIs(t, wrapped, assert.AnError)
	assert.Contains(t, wrapped.Error(), "Failed to list subjects")

	data, jerr := wrapped.MarshalJSON()
	assert.NoError(t, jerr)
	assert.JSONEq(t, `{"code":"INTERNAL_ERROR","message":"Failed to list subjects"}`, string(data))
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		NewInvalidFormatError("division", "x"),
		NewOutOfRangeError("search", 250, 0, 200),
	}
	assert.Equal(t, "validation failed: division: invalid format; search: must be between 0 and 200", errs.Error())
	assert.Equal(t, CodeOutOfRange, errs[1].Code)
}
