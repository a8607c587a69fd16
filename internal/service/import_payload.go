package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"mcq-catalog/internal/domain"
	"mcq-catalog/internal/util"
)

// questionSetFile is the on-disk JSON shape of one question set.
type questionSetFile struct {
	Title     looseString    `json:"title"`
	ReadID    looseString    `json:"read_id"`
	Count     looseInt       `json:"count"`
	Questions []questionFile `json:"questions"`
}

type questionFile struct {
	Question    looseString  `json:"question"`
	Number      looseString  `json:"number"`
	Tag         looseString  `json:"tag"`
	Explanation looseString  `json:"explanation"`
	Correct     looseString  `json:"correct"`
	Options     []optionFile `json:"options"`
}

type optionFile struct {
	Label     looseString `json:"label"`
	Text      looseString `json:"text"`
	IsCorrect flexBool    `json:"is_correct"`
}

// looseString accepts a JSON string, number or boolean (kept as written) or
// null. An absent field is the empty string; an explicit null is NULL.
type looseString struct {
	value string
	null  bool
}

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = looseString{null: true}
	case len(data) > 0 && data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString{value: v}
	case len(data) > 0 && (data[0] == '{' || data[0] == '['):
		return fmt.Errorf("expected a string, got %s", data)
	default:
		*s = looseString{value: string(data)}
	}
	return nil
}

// String returns the value, "" for null.
func (s looseString) String() string { return s.value }

// Ptr returns nil for an explicit null.
func (s looseString) Ptr() *string {
	if s.null {
		return nil
	}
	return util.StringPtr(s.value)
}

// maxQuestionCount bounds a declared count to what every engine's column holds.
const maxQuestionCount = math.MaxInt32

// looseInt accepts a JSON integer, a numeric string or null (zero). A number
// with a fractional part, or one whose magnitude exceeds maxQuestionCount,
// is rejected rather than truncated.
type looseInt int

func (n *looseInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*n = 0
			return nil
		}
	}

	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if i > maxQuestionCount || i < -maxQuestionCount {
			return fmt.Errorf("count %s is out of range", raw)
		}
		*n = looseInt(i)
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return fmt.Errorf("expected an integer count, got %s", data)
	}
	if math.Abs(f) > maxQuestionCount {
		return fmt.Errorf("count %s is out of range", raw)
	}
	*n = looseInt(f)
	return nil
}

// flexBool is true for JSON true, a non-zero number, or one of the strings
// "true", "1", "yes" (case-insensitive). Everything else is false.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*b = flexBool(t)
	case float64:
		*b = t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes":
			*b = true
		default:
			*b = false
		}
	default:
		*b = false
	}
	return nil
}

// ParseQuestionSetFile decodes a question-set document. The returned set is
// not yet attached to a subject. The document must be a JSON object.
func ParseQuestionSetFile(data []byte) (*domain.QuestionSet, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("malformed question set: top-level value must be an object")
	}

	var doc questionSetFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("malformed question set: %w", err)
	}

	set := &domain.QuestionSet{
		Title:         doc.Title.String(),
		ReadID:        doc.ReadID.Ptr(),
		QuestionCount: max(int(doc.Count), 0),
		Questions:     make([]*domain.Question, 0, len(doc.Questions)),
	}
	for _, qf := range doc.Questions {
		q := &domain.Question{
			Text:               qf.Question.String(),
			Number:             qf.Number.Ptr(),
			Tag:                qf.Tag.Ptr(),
			Explanation:        qf.Explanation.Ptr(),
			CorrectOptionLabel: qf.Correct.Ptr(),
			Options:            make([]*domain.Option, 0, len(qf.Options)),
		}
		for _, of := range qf.Options {
			q.Options = append(q.Options, &domain.Option{
				Label:     of.Label.String(),
				Text:      of.Text.String(),
				IsCorrect: bool(of.IsCorrect),
			})
		}
		set.Questions = append(set.Questions, q)
	}
	return set, nil
}
