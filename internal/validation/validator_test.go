package validation

import (
	"strings"
	"testing"

	"mcq-catalog/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateID(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name     string
		raw      string
		wantID   int64
		wantCode domain.ErrorCode
	}{
		{name: "valid", raw: "42", wantID: 42},
		{name: "empty", raw: "", wantCode: domain.CodeMissingField},
		{name: "not a number", raw: "abc", wantCode: domain.CodeInvalidFormat},
		{name: "zero", raw: "0", wantCode: domain.CodeInvalidFormat},
		{name: "negative", raw: "-3", wantCode: domain.CodeInvalidFormat},
		{name: "overflow", raw: "99999999999999999999", wantCode: domain.CodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, errs := v.ValidateID("id", tt.raw)
			if tt.wantCode == "" {
				assert.Empty(t, errs)
				assert.Equal(t, tt.wantID, id)
				return
			}
			require.Len(t, errs, 1)
			assert.Equal(t, tt.wantCode, errs[0].Code)
			assert.Equal(t, "id", errs[0].Field)
		})
	}
}

func TestValidateSubjectQuery(t *testing.T) {
	v := NewValidator()

	t.Run("all filters", func(t *testing.T) {
		q, errs := v.ValidateSubjectQuery("1", "2", "phys")
		assert.Empty(t, errs)
		assert.Equal(t, int64(1), q.Division)
		assert.Equal(t, int64(2), q.Group)
		assert.Equal(t, "phys", q.Search)
	})

	t.Run("no filters", func(t *testing.T) {
		q, errs := v.ValidateSubjectQuery("", "", "")
		assert.Empty(t, errs)
		assert.Zero(t, q.Division)
		assert.Zero(t, q.Group)
	})

	t.Run("collects every error", func(t *testing.T) {
		_, errs := v.ValidateSubjectQuery("x", "0", strings.Repeat("a", MaxSearchLength+1))
		require.Len(t, errs, 3)
		assert.Equal(t, "division", errs[0].Field)
		assert.Equal(t, "group", errs[1].Field)
		assert.Equal(t, "search", errs[2].Field)
		assert.Equal(t, domain.CodeOutOfRange, errs[2].Code)
	})
}

func TestValidateQuestionSetQuery(t *testing.T) {
	v := NewValidator()

	q, errs := v.ValidateQuestionSetQuery("7", "mock")
	assert.Empty(t, errs)
	assert.Equal(t, int64(7), q.Subject)
	assert.Equal(t, "mock", q.Search)

	_, errs = v.ValidateQuestionSetQuery("seven", "")
	require.Len(t, errs, 1)
	assert.Equal(t, domain.CodeInvalidFormat, errs[0].Code)
}

func TestValidateSearch_CountsCharactersNotBytes(t *testing.T) {
	v := NewValidator()

	// 200 Bengali characters are far more than 200 bytes.
	assert.Empty(t, v.ValidateSearch(strings.Repeat("ক", MaxSearchLength)))
	assert.Len(t, v.ValidateSearch(strings.Repeat("ক", MaxSearchLength+1)), 1)
}
