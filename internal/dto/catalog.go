package dto

import "mcq-catalog/internal/domain"

// DivisionResponse represents a division in the API response
// @Description Division information
type DivisionResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GroupResponse represents a group in the API response
// @Description Group information
type GroupResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SubjectResponse represents a subject together with its parent names
// @Description Subject information
type SubjectResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Division     int64  `json:"division"`
	DivisionName string `json:"division_name"`
	Group        int64  `json:"group"`
	GroupName    string `json:"group_name"`
}

// QuestionSetResponse is the compact listing form of a question set
// @Description Question set summary
type QuestionSetResponse struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	ReadID        *string `json:"read_id"`
	QuestionCount int     `json:"question_count"`
	Subject       int64   `json:"subject"`
}

// QuestionSetDetailResponse includes every question with its options.
// QuestionCount is the declared count; ActualQuestionCount is len(Questions).
// @Description Question set with nested questions
type QuestionSetDetailResponse struct {
	ID                  int64              `json:"id"`
	Title               string             `json:"title"`
	ReadID              *string            `json:"read_id"`
	QuestionCount       int                `json:"question_count"`
	ActualQuestionCount int                `json:"actual_question_count"`
	Subject             int64              `json:"subject"`
	SubjectName         string             `json:"subject_name"`
	Questions           []QuestionResponse `json:"questions"`
}

// QuestionResponse represents a question with its options
// @Description Question information
type QuestionResponse struct {
	ID                 int64            `json:"id"`
	QuestionText       string           `json:"question_text"`
	Number             *string          `json:"number"`
	Tag                *string          `json:"tag"`
	Explanation        *string          `json:"explanation"`
	CorrectOptionLabel *string          `json:"correct_option_label"`
	Options            []OptionResponse `json:"options"`
}

type OptionResponse struct {
	ID         int64  `json:"id"`
	Label      string `json:"label"`
	OptionText string `json:"option_text"`
	IsCorrect  bool   `json:"is_correct"`
}

// HealthResponse is returned by /healthz
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// SubjectQuery carries validated /subjects filters. Zero means unset.
type SubjectQuery struct {
	Division int64
	Group    int64
	Search   string
}

// QuestionSetQuery carries validated /question-sets filters.
type QuestionSetQuery struct {
	Subject int64
	Search  string
}

// QuestionQuery carries validated /questions filters.
type QuestionQuery struct {
	Search string
}

func NewDivisionResponse(d *domain.Division) DivisionResponse {
	return DivisionResponse{ID: d.ID, Name: d.Name}
}

func NewGroupResponse(g *domain.Group) GroupResponse {
	return GroupResponse{ID: g.ID, Name: g.Name}
}

func NewSubjectResponse(s *domain.Subject) SubjectResponse {
	return SubjectResponse{
		ID:           s.ID,
		Name:         s.Name,
		Division:     s.DivisionID,
		DivisionName: s.DivisionName,
		Group:        s.GroupID,
		GroupName:    s.GroupName,
	}
}

func NewQuestionSetResponse(qs *domain.QuestionSet) QuestionSetResponse {
	return QuestionSetResponse{
		ID:            qs.ID,
		Title:         qs.Title,
		ReadID:        qs.ReadID,
		QuestionCount: qs.QuestionCount,
		Subject:       qs.SubjectID,
	}
}

func NewQuestionSetDetailResponse(qs *domain.QuestionSet) QuestionSetDetailResponse {
	questions := make([]QuestionResponse, 0, len(qs.Questions))
	for _, q := range qs.Questions {
		questions = append(questions, NewQuestionResponse(q))
	}
	return QuestionSetDetailResponse{
		ID:                  qs.ID,
		Title:               qs.Title,
		ReadID:              qs.ReadID,
		QuestionCount:       qs.QuestionCount,
		ActualQuestionCount: qs.ActualQuestionCount(),
		Subject:             qs.SubjectID,
		SubjectName:         qs.SubjectName,
		Questions:           questions,
	}
}

func NewQuestionResponse(q *domain.Question) QuestionResponse {
	options := make([]OptionResponse, 0, len(q.Options))
	for _, o := range q.Options {
		options = append(options, OptionResponse{
			ID:         o.ID,
			Label:      o.Label,
			OptionText: o.Text,
			IsCorrect:  o.IsCorrect,
		})
	}
	return QuestionResponse{
		ID:                 q.ID,
		QuestionText:       q.Text,
		Number:             q.Number,
		Tag:                q.Tag,
		Explanation:        q.Explanation,
		CorrectOptionLabel: q.CorrectOptionLabel,
		Options:            options,
	}
}
