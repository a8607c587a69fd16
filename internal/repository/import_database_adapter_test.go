package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"mcq-catalog/internal/domain"
	"mcq-catalog/internal/util"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateDivision_Existing(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewImportDatabaseAdapter(db)

	mock.ExpectQuery(regexp.QuoteMeta(selectDivisionIDByName)).
		WithArgs("Science").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))

	id, err := repo.GetOrCreateDivision(context.Background(), "Science")
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreateGroup_Inserts(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewImportDatabaseAdapter(db)

	mock.ExpectQuery(regexp.QuoteMeta(selectGroupIDByName)).
		WithArgs("HSC").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(regexp.QuoteMeta(insertGroup)).
		WithArgs("HSC").
		WillReturnResult(sqlmock.NewResult(9, 1))

	id, err := repo.GetOrCreateGroup(context.Background(), "HSC")
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreateSubject_ConcurrentInsertIsReselected(t *testing.T) {
	for name, dupErr := range map[string]error{
		"mysql":  &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"},
		"sqlite": sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique},
	} {
		t.Run(name, func(t *testing.T) {
			db, mock := setupTestDB(t)
			repo := NewImportDatabaseAdapter(db)

			mock.ExpectQuery(regexp.QuoteMeta(selectSubjectID)).
				WithArgs(int64(1), int64(2), "Physics").
				WillReturnRows(sqlmock.NewRows([]string{"id"}))
			mock.ExpectExec(regexp.QuoteMeta(insertSubject)).
				WithArgs(int64(1), int64(2), "Physics").
				WillReturnError(dupErr)
			mock.ExpectQuery(regexp.QuoteMeta(selectSubjectID)).
				WithArgs(int64(1), int64(2), "Physics").
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

			id, err := repo.GetOrCreateSubject(context.Background(), 1, 2, "Physics")
			require.NoError(t, err)
			assert.Equal(t, int64(3), id)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetOrCreateDivision_OtherInsertErrorFails(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewImportDatabaseAdapter(db)

	mock.ExpectQuery(regexp.QuoteMeta(selectDivisionIDByName)).
		WithArgs("Science").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(regexp.QuoteMeta(insertDivision)).
		WithArgs("Science").
		WillReturnError(&mysql.MySQLError{Number: 1406, Message: "Data too long"})

	_, err := repo.GetOrCreateDivision(context.Background(), "Science")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Science")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateQuestionSet_StoresDeclaredCount(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewImportDatabaseAdapter(db)

	set := &domain.QuestionSet{
		SubjectID:     3,
		Title:         "Physics Mock 1",
		ReadID:        util.StringPtr("phy-001"),
		QuestionCount: 2,
		Questions:     []*domain.Question{{Text: "only one"}},
	}
	mock.ExpectExec(regexp.QuoteMeta(insertQuestionSet)).
		WithArgs(int64(3), "Physics Mock 1", "phy-001", 2).
		WillReturnResult(sqlmock.NewResult(5, 1))

	require.NoError(t, repo.CreateQuestionSet(context.Background(), set))
	assert.Equal(t, int64(5), set.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateQuestionAndOption(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewImportDatabaseAdapter(db)

	q := &domain.Question{SetID: 5, Text: "Unit of force?", Number: util.StringPtr("1"), CorrectOptionLabel: util.StringPtr("A")}
	mock.ExpectExec(regexp.QuoteMeta(insertQuestion)).
		WithArgs(int64(5), "Unit of force?", "1", nil, nil, "A").
		WillReturnResult(sqlmock.NewResult(10, 1))

	opt := &domain.Option{QuestionID: 10, Label: "A", Text: "Newton", IsCorrect: true}
	mock.ExpectExec(regexp.QuoteMeta(insertOption)).
		WithArgs(int64(10), "A", "Newton", true).
		WillReturnResult(sqlmock.NewResult(20, 1))

	require.NoError(t, repo.CreateQuestion(context.Background(), q))
	assert.Equal(t, int64(10), q.ID)
	require.NoError(t, repo.CreateOption(context.Background(), opt))
	assert.Equal(t, int64(20), opt.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateNilEntities(t *testing.T) {
	db, _ := setupTestDB(t)
	repo := NewImportDatabaseAdapter(db)
	ctx := context.Background()

	assert.Error(t, repo.CreateQuestionSet(ctx, nil))
	assert.Error(t, repo.CreateQuestion(ctx, nil))
	assert.Error(t, repo.CreateOption(ctx, nil))
}

func TestDeleteDivisionByName(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewImportDatabaseAdapter(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM divisions WHERE name = ?")).
		WithArgs("Science").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.DeleteDivisionByName(context.Background(), "Science")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportAdapter_UsesTransactionFromContext(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewImportDatabaseAdapter(db)
	txm := NewTransactionManagerAdapter(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectDivisionIDByName)).
		WithArgs("Science").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(insertQuestionSet)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := txm.WithTransaction(context.Background(), func(ctx context.Context) error {
		if _, err := repo.GetOrCreateDivision(ctx, "Science"); err != nil {
			return err
		}
		return repo.CreateQuestionSet(ctx, &domain.QuestionSet{SubjectID: 1, Title: "t"})
	})
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&mysql.MySQLError{Number: 1062}))
	assert.False(t, IsUniqueViolation(&mysql.MySQLError{Number: 1452}))
	assert.True(t, IsUniqueViolation(sqlite3.Error{ExtendedCode: sqlite3.ErrConstraintPrimaryKey}))
	assert.False(t, IsUniqueViolation(sqlite3.Error{ExtendedCode: sqlite3.ErrConstraintForeignKey}))
	assert.False(t, IsUniqueViolation(errors.New("duplicate")))
	assert.False(t, IsUniqueViolation(nil))
}
