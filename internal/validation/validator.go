package validation

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"mcq-catalog/internal/domain"
	"mcq-catalog/internal/dto"
)

// MaxSearchLength bounds the search query parameter, in characters.
const MaxSearchLength = 200

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateID parses a path id. It must be a positive integer.
func (v *Validator) ValidateID(field, raw string) (int64, domain.ValidationErrors) {
	if strings.TrimSpace(raw) == "" {
		return 0, domain.ValidationErrors{domain.NewMissingFieldError(field)}
	}
	id, ok := parsePositiveInt(raw)
	if !ok {
		return 0, domain.ValidationErrors{domain.NewInvalidFormatError(field, raw)}
	}
	return id, nil
}

// ValidateSubjectQuery validates the division, group and search filters.
func (v *Validator) ValidateSubjectQuery(division, group, search string) (dto.SubjectQuery, domain.ValidationErrors) {
	var errors domain.ValidationErrors
	q := dto.SubjectQuery{Search: search}

	q.Division, errors = appendOptionalID(errors, "division", division)
	q.Group, errors = appendOptionalID(errors, "group", group)
	errors = append(errors, v.ValidateSearch(search)...)

	return q, errors
}

// ValidateQuestionSetQuery validates the subject and search filters.
func (v *Validator) ValidateQuestionSetQuery(subject, search string) (dto.QuestionSetQuery, domain.ValidationErrors) {
	var errors domain.ValidationErrors
	q := dto.QuestionSetQuery{Search: search}

	q.Subject, errors = appendOptionalID(errors, "subject", subject)
	errors = append(errors, v.ValidateSearch(search)...)

	return q, errors
}

// ValidateSearch rejects search terms longer than MaxSearchLength characters.
func (v *Validator) ValidateSearch(search string) domain.ValidationErrors {
	if n := utf8.RuneCountInString(search); n > MaxSearchLength {
		return domain.ValidationErrors{domain.NewOutOfRangeError("search", n, 0, MaxSearchLength)}
	}
	return nil
}

// appendOptionalID parses an optional filter id; empty means "no filter".
func appendOptionalID(errors domain.ValidationErrors, field, raw string) (int64, domain.ValidationErrors) {
	if raw == "" {
		return 0, errors
	}
	id, ok := parsePositiveInt(raw)
	if !ok {
		return 0, append(errors, domain.NewInvalidFormatError(field, raw))
	}
	return id, errors
}

func parsePositiveInt(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
