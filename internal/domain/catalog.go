package domain

// Division is the first classification axis of the catalog (e.g. an academic stream).
type Division struct {
	ID   int64
	Name string
}

// Group is the second classification axis (e.g. an examination track).
type Group struct {
	ID   int64
	Name string
}

// Subject is scoped to exactly one Division and one Group. DivisionName and
// GroupName are read-only projections filled by queries that join the parents.
type Subject struct {
	ID           int64
	DivisionID   int64
	GroupID      int64
	Name         string
	DivisionName string
	GroupName    string
}

// QuestionSet is a titled collection of questions. QuestionCount is the count
// declared by the source file and is never recomputed; it can disagree with
// len(Questions).
type QuestionSet struct {
	ID            int64
	SubjectID     int64
	SubjectName   string
	Title         string
	ReadID        *string
	QuestionCount int
	Questions     []*Question
}

// ActualQuestionCount reports how many questions were actually loaded.
func (s *QuestionSet) ActualQuestionCount() int {
	return len(s.Questions)
}

// HasCountMismatch is true when the declared count differs from the loaded questions.
func (s *QuestionSet) HasCountMismatch() bool {
	return s.QuestionCount != len(s.Questions)
}

type Question struct {
	ID                 int64
	SetID              int64
	Text               string
	Number             *string
	Tag                *string
	Explanation        *string
	CorrectOptionLabel *string
	Options            []*Option
}

// CorrectLabelConsistent reports whether CorrectOptionLabel names exactly one
// option and that option is the only one flagged correct. Questions with no
// label and no correct option are consistent.
func (q *Question) CorrectLabelConsistent() bool {
	label := ""
	if q.CorrectOptionLabel != nil {
		label = *q.CorrectOptionLabel
	}

	correct := 0
	labelMatchesCorrect := false
	for _, opt := range q.Options {
		if opt.IsCorrect {
			correct++
			if opt.Label == label {
				labelMatchesCorrect = true
			}
		}
	}

	if label == "" {
		return correct == 0
	}
	return correct == 1 && labelMatchesCorrect
}

type Option struct {
	ID         int64
	QuestionID int64
	Label      string
	Text       string
	IsCorrect  bool
}

// SubjectFilter narrows subject listings. Zero ids mean "no filter".
type SubjectFilter struct {
	DivisionID int64
	GroupID    int64
	Search     string
}

type QuestionSetFilter struct {
	SubjectID int64
	Search    string
}

type QuestionFilter struct {
	Search string
}

// ImportResult summarises one importer run.
type ImportResult struct {
	FilesSeen       int
	FilesImported   int
	FilesSkipped    int
	QuestionSets    int
	Questions       int
	Options         int
	CountMismatches int
	LabelMismatches int
}
