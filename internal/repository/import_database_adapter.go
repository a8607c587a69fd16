package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mcq-catalog/internal/domain"
	"mcq-catalog/internal/util"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

const (
	mysqlErrDuplicateEntry = 1062

	selectDivisionIDByName = `SELECT id FROM divisions WHERE name = ?`
	insertDivision         = `INSERT INTO divisions (name) VALUES (?)`
	selectGroupIDByName    = "SELECT id FROM `groups` WHERE name = ?"
	insertGroup            = "INSERT INTO `groups` (name) VALUES (?)"
	selectSubjectID        = `SELECT id FROM subjects WHERE division_id = ? AND group_id = ? AND name = ?`
	insertSubject          = `INSERT INTO subjects (division_id, group_id, name) VALUES (?, ?, ?)`

	insertQuestionSet = `INSERT INTO question_sets (subject_id, title, read_id, question_count) VALUES (?, ?, ?, ?)`
	insertQuestion    = `INSERT INTO questions (set_id, question_text, number, tag, explanation, correct_option_label) VALUES (?, ?, ?, ?, ?, ?)`
	insertOption      = `INSERT INTO options (question_id, label, option_text, is_correct) VALUES (?, ?, ?, ?)`

	deleteDivisionByName = `DELETE FROM divisions WHERE name = ?`
)

// ImportDatabaseAdapter implements domain.ImportRepository using sqlx.DB.
// Every method runs on the transaction carried by ctx when there is one.
type ImportDatabaseAdapter struct {
	db *sqlx.DB
}

// NewImportDatabaseAdapter creates a new instance of ImportDatabaseAdapter
func NewImportDatabaseAdapter(db *sqlx.DB) domain.ImportRepository {
	return &ImportDatabaseAdapter{db: db}
}

// GetOrCreateDivision implements domain.ImportRepository
func (a *ImportDatabaseAdapter) GetOrCreateDivision(ctx context.Context, name string) (int64, error) {
	id, err := a.getOrCreate(ctx, selectDivisionIDByName, insertDivision, name)
	if err != nil {
		return 0, fmt.Errorf("failed to get or create division %q: %w", name, err)
	}
	return id, nil
}

// GetOrCreateGroup implements domain.ImportRepository
func (a *ImportDatabaseAdapter) GetOrCreateGroup(ctx context.Context, name string) (int64, error) {
	id, err := a.getOrCreate(ctx, selectGroupIDByName, insertGroup, name)
	if err != nil {
		return 0, fmt.Errorf("failed to get or create group %q: %w", name, err)
	}
	return id, nil
}

// GetOrCreateSubject implements domain.ImportRepository
func (a *ImportDatabaseAdapter) GetOrCreateSubject(ctx context.Context, divisionID, groupID int64, name string) (int64, error) {
	id, err := a.getOrCreate(ctx, selectSubjectID, insertSubject, divisionID, groupID, name)
	if err != nil {
		return 0, fmt.Errorf("failed to get or create subject %q (division %d, group %d): %w", name, divisionID, groupID, err)
	}
	return id, nil
}

// getOrCreate looks a row up by its unique key and inserts it when absent.
// A concurrent writer may insert the same key between the lookup and the
// insert; the resulting unique violation is answered by selecting again.
func (a *ImportDatabaseAdapter) getOrCreate(ctx context.Context, selectQuery, insertQuery string, args ...interface{}) (int64, error) {
	exec := GetExecutor(ctx, a.db)

	var id int64
	err := exec.GetContext(ctx, &id, exec.Rebind(selectQuery), args...)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	res, err := exec.ExecContext(ctx, exec.Rebind(insertQuery), args...)
	if err != nil {
		if !IsUniqueViolation(err) {
			return 0, err
		}
		if err := exec.GetContext(ctx, &id, exec.Rebind(selectQuery), args...); err != nil {
			return 0, fmt.Errorf("lookup after duplicate insert: %w", err)
		}
		return id, nil
	}
	return res.LastInsertId()
}

// CreateQuestionSet implements domain.ImportRepository
func (a *ImportDatabaseAdapter) CreateQuestionSet(ctx context.Context, set *domain.QuestionSet) error {
	if set == nil {
		return fmt.Errorf("cannot save nil question set")
	}
	exec := GetExecutor(ctx, a.db)
	res, err := exec.ExecContext(ctx, exec.Rebind(insertQuestionSet),
		set.SubjectID,
		set.Title,
		util.PtrToNullString(set.ReadID),
		set.QuestionCount,
	)
	if err != nil {
		return fmt.Errorf("failed to save question set %q: %w", set.Title, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get question set id: %w", err)
	}
	set.ID = id
	return nil
}

// CreateQuestion implements domain.ImportRepository
func (a *ImportDatabaseAdapter) CreateQuestion(ctx context.Context, question *domain.Question) error {
	if question == nil {
		return fmt.Errorf("cannot save nil question")
	}
	exec := GetExecutor(ctx, a.db)
	res, err := exec.ExecContext(ctx, exec.Rebind(insertQuestion),
		question.SetID,
		question.Text,
		util.PtrToNullString(question.Number),
		util.PtrToNullString(question.Tag),
		util.PtrToNullString(question.Explanation),
		util.PtrToNullString(question.CorrectOptionLabel),
	)
	if err != nil {
		return fmt.Errorf("failed to save question in set %d: %w", question.SetID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get question id: %w", err)
	}
	question.ID = id
	return nil
}

// CreateOption implements domain.ImportRepository
func (a *ImportDatabaseAdapter) CreateOption(ctx context.Context, option *domain.Option) error {
	if option == nil {
		return fmt.Errorf("cannot save nil option")
	}
	exec := GetExecutor(ctx, a.db)
	res, err := exec.ExecContext(ctx, exec.Rebind(insertOption),
		option.QuestionID,
		option.Label,
		option.Text,
		option.IsCorrect,
	)
	if err != nil {
		return fmt.Errorf("failed to save option %q of question %d: %w", option.Label, option.QuestionID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get option id: %w", err)
	}
	option.ID = id
	return nil
}

// DeleteDivisionByName implements domain.ImportRepository
func (a *ImportDatabaseAdapter) DeleteDivisionByName(ctx context.Context, name string) (int64, error) {
	exec := GetExecutor(ctx, a.db)
	res, err := exec.ExecContext(ctx, exec.Rebind(deleteDivisionByName), name)
	if err != nil {
		return 0, fmt.Errorf("failed to delete division %q: %w", name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected, nil
}

// IsUniqueViolation reports whether err is a unique-constraint violation from
// one of the supported engines.
func IsUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlErrDuplicateEntry
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
