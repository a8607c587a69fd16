package models

import "database/sql"

// Division maps the divisions table.
type Division struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// Group maps the `groups` table.
type Group struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// Subject maps the subjects table plus the parent names joined in by reads.
type Subject struct {
	ID           int64          `db:"id"`
	DivisionID   int64          `db:"division_id"`
	GroupID      int64          `db:"group_id"`
	Name         string         `db:"name"`
	DivisionName sql.NullString `db:"division_name"`
	GroupName    sql.NullString `db:"group_name"`
}

// QuestionSet maps the question_sets table. SubjectName is only present on detail reads.
type QuestionSet struct {
	ID            int64          `db:"id"`
	SubjectID     int64          `db:"subject_id"`
	Title         string         `db:"title"`
	ReadID        sql.NullString `db:"read_id"`
	QuestionCount int            `db:"question_count"`
	SubjectName   sql.NullString `db:"subject_name"`
}

// Question maps the questions table. Optional metadata columns are nullable.
type Question struct {
	ID                 int64          `db:"id"`
	SetID              int64          `db:"set_id"`
	QuestionText       string         `db:"question_text"`
	Number             sql.NullString `db:"number"`
	Tag                sql.NullString `db:"tag"`
	Explanation        sql.NullString `db:"explanation"`
	CorrectOptionLabel sql.NullString `db:"correct_option_label"`
}

// Option maps the options table.
type Option struct {
	ID         int64  `db:"id"`
	QuestionID int64  `db:"question_id"`
	Label      string `db:"label"`
	OptionText string `db:"option_text"`
	IsCorrect  bool   `db:"is_correct"`
}
