package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"mcq-catalog/internal/domain"
	"mcq-catalog/internal/repository/models"
	"mcq-catalog/internal/util"

	"github.com/jmoiron/sqlx"
)

const (
	selectDivisions = `SELECT id, name FROM divisions`
	// groups is a reserved word in MySQL 8, hence the backticks.
	selectGroups   = "SELECT id, name FROM `groups`"
	selectSubjects = "SELECT s.id, s.division_id, s.group_id, s.name, d.name AS division_name, g.name AS group_name " +
		"FROM subjects s JOIN divisions d ON d.id = s.division_id JOIN `groups` g ON g.id = s.group_id"
	selectQuestionSets      = `SELECT id, subject_id, title, read_id, question_count FROM question_sets`
	selectQuestionSetDetail = `SELECT qs.id, qs.subject_id, qs.title, qs.read_id, qs.question_count, s.name AS subject_name ` +
		`FROM question_sets qs JOIN subjects s ON s.id = qs.subject_id WHERE qs.id = ?`
	selectQuestions = `SELECT id, set_id, question_text, number, tag, explanation, correct_option_label FROM questions`
	selectOptions   = `SELECT id, question_id, label, option_text, is_correct FROM options WHERE question_id IN (?) ORDER BY question_id, id`

	likeClause = " LIKE ? ESCAPE '" + util.LikeEscapeChar + "'"

	// Keeps IN lists well under the placeholder limits of both engines.
	optionsBatchSize = 500
)

// CatalogDatabaseAdapter implements domain.CatalogRepository using sqlx.DB
type CatalogDatabaseAdapter struct {
	db *sqlx.DB
}

// NewCatalogDatabaseAdapter creates a new instance of CatalogDatabaseAdapter
func NewCatalogDatabaseAdapter(db *sqlx.DB) domain.CatalogRepository {
	return &CatalogDatabaseAdapter{db: db}
}

// whereBuilder ANDs together optional conditions.
type whereBuilder struct {
	conds []string
	args  []interface{}
}

func (w *whereBuilder) add(cond string, arg interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, arg)
}

// addSearch matches term case-insensitively. On SQLite this relies on the
// Unicode LOWER registered by database.NewSQLXDB.
func (w *whereBuilder) addSearch(column, term string) {
	if term == "" {
		return
	}
	w.add("LOWER("+column+")"+likeClause, util.ContainsPattern(term))
}

func (w *whereBuilder) build(base, orderBy string) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString(base)
	if len(w.conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(w.conds, " AND "))
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(orderBy)
	return sb.String(), w.args
}

func notFound(resource string, id int64, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", resource, id, domain.ErrRecordNotFound)
	}
	return fmt.Errorf("failed to get %s %d: %w", resource, id, err)
}

// ListDivisions implements domain.CatalogRepository
func (a *CatalogDatabaseAdapter) ListDivisions(ctx context.Context) ([]*domain.Division, error) {
	var rows []models.Division
	if err := a.db.SelectContext(ctx, &rows, selectDivisions+" ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to list divisions: %w", err)
	}
	result := make([]*domain.Division, len(rows))
	for i := range rows {
		result[i] = toDomainDivision(&rows[i])
	}
	return result, nil
}

// GetDivision implements domain.CatalogRepository
func (a *CatalogDatabaseAdapter) GetDivision(ctx context.Context, id int64) (*domain.Division, error) {
	var row models.Division
	if err := a.db.GetContext(ctx, &row, a.db.Rebind(selectDivisions+" WHERE id = ?"), id); err != nil {
		return nil, notFound("division", id, err)
	}
	return toDomainDivision(&row), nil
}

// ListGroups implements domain.CatalogRepository
func (a *CatalogDatabaseAdapter) ListGroups(ctx context.Context) ([]*domain.Group, error) {
	var rows []models.Group
	if err := a.db.SelectContext(ctx, &rows, selectGroups+" ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	result := make([]*domain.Group, len(rows))
	for i := range rows {
		result[i] = toDomainGroup(&rows[i])
	}
	return result, nil
}

// GetGroup implements domain.CatalogRepository
func (a *CatalogDatabaseAdapter) GetGroup(ctx context.Context, id int64) (*domain.Group, error) {
	var row models.Group
	if err := a.db.GetContext(ctx, &row, a.db.Rebind(selectGroups+" WHERE id = ?"), id); err != nil {
		return nil, notFound("group", id, err)
	}
	return toDomainGroup(&row), nil
}

// ListSubjects implements domain.CatalogRepository
func (a *CatalogDatabaseAdapter) ListSubjects(ctx context.Context, filter domain.SubjectFilter) ([]*domain.Subject, error) {
	var w whereBuilder
	if filter.DivisionID > 0 {
		w.add("s.division_id = ?", filter.DivisionID)
	}
	if filter.GroupID > 0 {
		w.add("s.group_id = ?", filter.GroupID)
	}
	w.addSearch("s.name", filter.Search)
	query, args := w.build(selectSubjects, "s.id")

	var rows []models.Subject
	if err := a.db.SelectContext(ctx, &rows, a.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	result := make([]*domain.Subject, len(rows))
	for i := range rows {
		result[i] = toDomainSubject(&rows[i])
	}
	return result, nil
}

// GetSubject implements domain.CatalogRepository
func (a *CatalogDatabaseAdapter) GetSubject(ctx context.Context, id int64) (*domain.Subject, error) {
	var row models.Subject
	if err := a.db.GetContext(ctx, &row, a.db.Rebind(selectSubjects+" WHERE s.id = ?"), id); err != nil {
		return nil, notFound("subject", id, err)
	}
	return toDomainSubject(&row), nil
}

// ListQuestionSets implements domain.CatalogRepository
func (a *CatalogDatabaseAdapter) ListQuestionSets(ctx context.Context, filter domain.QuestionSetFilter) ([]*domain.QuestionSet, error) {
	var w whereBuilder
	if filter.SubjectID > 0 {
		w.add("subject_id = ?", filter.SubjectID)
	}
	w.addSearch("title", filter.Search)
	query, args := w.build(selectQuestionSets, "id")

	var rows []models.QuestionSet
	if err := a.db.SelectContext(ctx, &rows, a.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list question sets: %w", err)
	}
	result := make([]*domain.QuestionSet, len(rows))
	for i := range rows {
		result[i] = toDomainQuestionSet(&rows[i])
	}
	return result, nil
}

// GetQuestionSet implements domain.CatalogRepository
func (a *CatalogDatabaseAdapter) GetQuestionSet(ctx context.Context, id int64) (*domain.QuestionSet, error) {
	var row models.QuestionSet
	if err := a.db.GetContext(ctx, &row, a.db.Rebind(selectQuestionSetDetail), id); err != nil {
		return nil, notFound("question set", id, err)
	}
	return toDomainQuestionSet(&row), nil
}

// ListQuestionsBySet implements domain.CatalogRepository
func (a *CatalogDatabaseAdapter) ListQuestionsBySet(ctx context.Context, setID int64) ([]*domain.Question, error) {
	var w whereBuilder
	w.add("set_id = ?", setID)
	query, args := w.build(selectQuestions, "id")
	return a.selectQuestionsWithOptions(ctx, query, args...)
}

// ListQuestions implements domain.CatalogRepository
func (a *CatalogDatabaseAdapter) ListQuestions(ctx context.Context, filter domain.QuestionFilter) ([]*domain.Question, error) {
	var w whereBuilder
	w.addSearch("question_text", filter.Search)
	query, args := w.build(selectQuestions, "id")
	return a.selectQuestionsWithOptions(ctx, query, args...)
}

// GetQuestion implements domain.CatalogRepository
func (a *CatalogDatabaseAdapter) GetQuestion(ctx context.Context, id int64) (*domain.Question, error) {
	var row models.Question
	if err := a.db.GetContext(ctx, &row, a.db.Rebind(selectQuestions+" WHERE id = ?"), id); err != nil {
		return nil, notFound("question", id, err)
	}
	questions := []*domain.Question{toDomainQuestion(&row)}
	if err := a.attachOptions(ctx, questions); err != nil {
		return nil, err
	}
	return questions[0], nil
}

// Ping implements domain.CatalogRepository
func (a *CatalogDatabaseAdapter) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

func (a *CatalogDatabaseAdapter) selectQuestionsWithOptions(ctx context.Context, query string, args ...interface{}) ([]*domain.Question, error) {
	var rows []models.Question
	if err := a.db.SelectContext(ctx, &rows, a.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	questions := make([]*domain.Question, len(rows))
	for i := range rows {
		questions[i] = toDomainQuestion(&rows[i])
	}
	if err := a.attachOptions(ctx, questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// attachOptions loads the options of every question, optionsBatchSize
// question ids per query.
func (a *CatalogDatabaseAdapter) attachOptions(ctx context.Context, questions []*domain.Question) error {
	if len(questions) == 0 {
		return nil
	}

	ids := make([]int64, len(questions))
	byID := make(map[int64]*domain.Question, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
		byID[q.ID] = q
		q.Options = []*domain.Option{}
	}

	for start := 0; start < len(ids); start += optionsBatchSize {
		end := min(start+optionsBatchSize, len(ids))

		query, args, err := sqlx.In(selectOptions, ids[start:end])
		if err != nil {
			return fmt.Errorf("failed to build options query: %w", err)
		}

		var rows []models.Option
		if err := a.db.SelectContext(ctx, &rows, a.db.Rebind(query), args...); err != nil {
			return fmt.Errorf("failed to list options: %w", err)
		}
		for i := range rows {
			if q, ok := byID[rows[i].QuestionID]; ok {
				q.Options = append(q.Options, toDomainOption(&rows[i]))
			}
		}
	}
	return nil
}

// Helper functions for converting between model and domain types
func toDomainDivision(m *models.Division) *domain.Division {
	if m == nil {
		return nil
	}
	return &domain.Division{ID: m.ID, Name: m.Name}
}

func toDomainGroup(m *models.Group) *domain.Group {
	if m == nil {
		return nil
	}
	return &domain.Group{ID: m.ID, Name: m.Name}
}

func toDomainSubject(m *models.Subject) *domain.Subject {
	if m == nil {
		return nil
	}
	return &domain.Subject{
		ID:           m.ID,
		DivisionID:   m.DivisionID,
		GroupID:      m.GroupID,
		Name:         m.Name,
		DivisionName: m.DivisionName.String,
		GroupName:    m.GroupName.String,
	}
}

func toDomainQuestionSet(m *models.QuestionSet) *domain.QuestionSet {
	if m == nil {
		return nil
	}
	return &domain.QuestionSet{
		ID:            m.ID,
		SubjectID:     m.SubjectID,
		SubjectName:   m.SubjectName.String,
		Title:         m.Title,
		ReadID:        util.NullStringToPtr(m.ReadID),
		QuestionCount: m.QuestionCount,
	}
}

func toDomainQuestion(m *models.Question) *domain.Question {
	if m == nil {
		return nil
	}
	return &domain.Question{
		ID:                 m.ID,
		SetID:              m.SetID,
		Text:               m.QuestionText,
		Number:             util.NullStringToPtr(m.Number),
		Tag:                util.NullStringToPtr(m.Tag),
		Explanation:        util.NullStringToPtr(m.Explanation),
		CorrectOptionLabel: util.NullStringToPtr(m.CorrectOptionLabel),
	}
}

func toDomainOption(m *models.Option) *domain.Option {
	if m == nil {
		return nil
	}
	return &domain.Option{
		ID:         m.ID,
		QuestionID: m.QuestionID,
		Label:      m.Label,
		Text:       m.OptionText,
		IsCorrect:  m.IsCorrect,
	}
}
