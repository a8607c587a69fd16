package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mcq-catalog/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type subjectKey struct {
	divisionID, groupID int64
	name                string
}

// fakeImportRepo is an in-memory domain.ImportRepository.
type fakeImportRepo struct {
	nextID    int64
	divisions map[string]int64
	groups    map[string]int64
	subjects  map[subjectKey]int64
	sets      []domain.QuestionSet
	questions []domain.Question
	options   []domain.Option

	failOnQuestionText string
}

func newFakeImportRepo() *fakeImportRepo {
	return &fakeImportRepo{
		divisions: map[string]int64{},
		groups:    map[string]int64{},
		subjects:  map[subjectKey]int64{},
	}
}

func (r *fakeImportRepo) id() int64 {
	r.nextID++
	return r.nextID
}

func (r *fakeImportRepo) GetOrCreateDivision(_ context.Context, name string) (int64, error) {
	if id, ok := r.divisions[name]; ok {
		return id, nil
	}
	r.divisions[name] = r.id()
	return r.divisions[name], nil
}

func (r *fakeImportRepo) GetOrCreateGroup(_ context.Context, name string) (int64, error) {
	if id, ok := r.groups[name]; ok {
		return id, nil
	}
	r.groups[name] = r.id()
	return r.groups[name], nil
}

func (r *fakeImportRepo) GetOrCreateSubject(_ context.Context, divisionID, groupID int64, name string) (int64, error) {
	k := subjectKey{divisionID, groupID, name}
	if id, ok := r.subjects[k]; ok {
		return id, nil
	}
	r.subjects[k] = r.id()
	return r.subjects[k], nil
}

func (r *fakeImportRepo) CreateQuestionSet(_ context.Context, set *domain.QuestionSet) error {
	set.ID = r.id()
	r.sets = append(r.sets, *set)
	return nil
}

func (r *fakeImportRepo) CreateQuestion(_ context.Context, q *domain.Question) error {
	if r.failOnQuestionText != "" && q.Text == r.failOnQuestionText {
		return errors.New("disk full")
	}
	q.ID = r.id()
	r.questions = append(r.questions, *q)
	return nil
}

func (r *fakeImportRepo) CreateOption(_ context.Context, o *domain.Option) error {
	o.ID = r.id()
	r.options = append(r.options, *o)
	return nil
}

func (r *fakeImportRepo) DeleteDivisionByName(_ context.Context, name string) (int64, error) {
	if _, ok := r.divisions[name]; !ok {
		return 0, nil
	}
	delete(r.divisions, name)
	return 1, nil
}

type repoSnapshot struct {
	divisions, groups     map[string]int64
	subjects              map[subjectKey]int64
	sets, questions, opts int
}

func copyMap[K comparable](m map[K]int64) map[K]int64 {
	out := make(map[K]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// fakeTxManager restores the fake repository when fn fails.
type fakeTxManager struct {
	repo  *fakeImportRepo
	calls int
}

func (m *fakeTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	snap := repoSnapshot{
		divisions: copyMap(m.repo.divisions),
		groups:    copyMap(m.repo.groups),
		subjects:  copyMap(m.repo.subjects),
		sets:      len(m.repo.sets),
		questions: len(m.repo.questions),
		opts:      len(m.repo.options),
	}
	if err := fn(ctx); err != nil {
		m.repo.divisions, m.repo.groups, m.repo.subjects = snap.divisions, snap.groups, snap.subjects
		m.repo.sets = m.repo.sets[:snap.sets]
		m.repo.questions = m.repo.questions[:snap.questions]
		m.repo.options = m.repo.options[:snap.opts]
		return err
	}
	return nil
}

const physicsSet = `{
  "title": "Physics Mock 1",
  "read_id": "phy-001",
  "count": 2,
  "questions": [
    {
      "question": "What is the SI unit of force?",
      "number": "1",
      "tag": "mechanics",
      "explanation": "Newton is kg*m/s^2",
      "correct": "A",
      "options": [
        {"label": "A", "text": "Newton", "is_correct": true},
        {"label": "B", "text": "Joule", "is_correct": false}
      ]
    }
  ]
}`

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func newTestImportService(repo *fakeImportRepo, c domain.Cache, out *bytes.Buffer) (ImportService, *fakeTxManager) {
	tx := &fakeTxManager{repo: repo}
	return NewImportService(repo, tx, c, DefaultPathLayout(), out, zap.NewNop()), tx
}

func TestImportDirectory_PhysicsSet(t *testing.T) {
	chdirForTest(t, t.TempDir())
	writeFile(t, "Data/Output/MCQ/Science/HSC/Physics/set1.json", physicsSet)

	repo := newFakeImportRepo()
	var out bytes.Buffer
	svc, tx := newTestImportService(repo, nil, &out)

	result, err := svc.ImportDirectory(context.Background(), "Data/Output/MCQ")
	require.NoError(t, err)

	assert.Contains(t, repo.divisions, "Science")
	assert.Contains(t, repo.groups, "HSC")
	require.Len(t, repo.subjects, 1)
	for k := range repo.subjects {
		assert.Equal(t, "Physics", k.name)
		assert.Equal(t, repo.divisions["Science"], k.divisionID)
		assert.Equal(t, repo.groups["HSC"], k.groupID)
	}

	require.Len(t, repo.sets, 1)
	assert.Equal(t, "Physics Mock 1", repo.sets[0].Title)
	require.NotNil(t, repo.sets[0].ReadID)
	assert.Equal(t, "phy-001", *repo.sets[0].ReadID)
	// Declared count is stored verbatim even though only one question exists.
	assert.Equal(t, 2, repo.sets[0].QuestionCount)

	require.Len(t, repo.questions, 1)
	assert.Equal(t, repo.sets[0].ID, repo.questions[0].SetID)
	require.Len(t, repo.options, 2)
	assert.Equal(t, "A", repo.options[0].Label)
	assert.True(t, repo.options[0].IsCorrect)
	assert.False(t, repo.options[1].IsCorrect)
	assert.Equal(t, repo.questions[0].ID, repo.options[1].QuestionID)

	assert.Equal(t, "Imported: Data/Output/MCQ/Science/HSC/Physics/set1.json\n", out.String())
	assert.Equal(t, 1, tx.calls)
	assert.Equal(t, 1, result.FilesImported)
	assert.Equal(t, 1, result.CountMismatches)
	assert.Equal(t, 0, result.LabelMismatches)
	assert.Equal(t, 2, result.Options)
}

func TestImportDirectory_ReimportDuplicatesSetsOnly(t *testing.T) {
	chdirForTest(t, t.TempDir())
	writeFile(t, "Data/Output/MCQ/Science/HSC/Physics/set1.json", physicsSet)

	repo := newFakeImportRepo()
	svc, _ := newTestImportService(repo, nil, &bytes.Buffer{})

	for i := 0; i < 2; i++ {
		_, err := svc.ImportDirectory(context.Background(), "Data/Output/MCQ")
		require.NoError(t, err)
	}

	assert.Len(t, repo.divisions, 1)
	assert.Len(t, repo.groups, 1)
	assert.Len(t, repo.subjects, 1)
	assert.Len(t, repo.sets, 2)
	assert.Len(t, repo.questions, 2)
	assert.Len(t, repo.options, 4)
}

func TestImportDirectory_SkipsShortPathsAndOtherFiles(t *testing.T) {
	chdirForTest(t, t.TempDir())
	writeFile(t, "Data/Output/MCQ/Science/HSC/orphan.json", physicsSet)
	writeFile(t, "Data/Output/MCQ/Science/HSC/Physics/notes.txt", "not a question set")
	writeFile(t, "Data/Output/MCQ/Science/HSC/Physics/set1.json", physicsSet)

	repo := newFakeImportRepo()
	var out bytes.Buffer
	svc, _ := newTestImportService(repo, nil, &out)

	result, err := svc.ImportDirectory(context.Background(), "Data/Output/MCQ")
	require.NoError(t, err)

	assert.Equal(t, 2, result.FilesSeen)
	assert.Equal(t, 1, result.FilesSkipped)
	assert.Equal(t, 1, result.FilesImported)
	assert.Len(t, repo.sets, 1)
	assert.NotContains(t, out.String(), "orphan.json")
}

func TestImportDirectory_MalformedFileStopsRun(t *testing.T) {
	chdirForTest(t, t.TempDir())
	dir := "Data/Output/MCQ/Science/HSC/Physics/"
	writeFile(t, dir+"a_set.json", physicsSet)
	writeFile(t, dir+"b_set.json", `{"title": "broken", "questions": [`)
	writeFile(t, dir+"c_set.json", physicsSet)

	repo := newFakeImportRepo()
	var out bytes.Buffer
	svc, tx := newTestImportService(repo, nil, &out)

	result, err := svc.ImportDirectory(context.Background(), "Data/Output/MCQ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b_set.json")

	// a_set stays committed, b_set opened no transaction, c_set was never reached.
	assert.Equal(t, 1, result.FilesImported)
	assert.Equal(t, 1, tx.calls)
	assert.Len(t, repo.sets, 1)
	assert.Equal(t, "Imported: "+dir+"a_set.json\n", out.String())
}

func TestImportDirectory_NonObjectDocumentsStopRun(t *testing.T) {
	for name, body := range map[string]string{
		"null":             `null`,
		"fractional count": `{"title": "t", "count": 2.9}`,
		"huge count":       `{"title": "t", "count": 1e20}`,
	} {
		t.Run(name, func(t *testing.T) {
			chdirForTest(t, t.TempDir())
			writeFile(t, "Data/Output/MCQ/S/H/P/a.json", body)

			repo := newFakeImportRepo()
			var out bytes.Buffer
			svc, tx := newTestImportService(repo, nil, &out)

			result, err := svc.ImportDirectory(context.Background(), "Data/Output/MCQ")
			require.Error(t, err)
			assert.Zero(t, result.FilesImported)
			assert.Zero(t, tx.calls)
			assert.Empty(t, repo.sets)
			assert.Empty(t, out.String())
		})
	}
}

func TestImportDirectory_StorageFailureRollsBackFile(t *testing.T) {
	chdirForTest(t, t.TempDir())
	writeFile(t, "Data/Output/MCQ/Science/HSC/Physics/set1.json", `{
		"title": "two questions", "count": 2,
		"questions": [
			{"question": "ok", "options": [{"label": "A", "text": "x"}]},
			{"question": "boom", "options": []}
		]}`)

	repo := newFakeImportRepo()
	repo.failOnQuestionText = "boom"
	var out bytes.Buffer
	svc, _ := newTestImportService(repo, nil, &out)

	result, err := svc.ImportDirectory(context.Background(), "Data/Output/MCQ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	assert.Empty(t, repo.sets)
	assert.Empty(t, repo.questions)
	assert.Empty(t, repo.options)
	assert.Empty(t, repo.divisions)
	assert.Zero(t, result.FilesImported)
	assert.Empty(t, out.String())
}

func TestImportDirectory_CancelledContext(t *testing.T) {
	chdirForTest(t, t.TempDir())
	writeFile(t, "Data/Output/MCQ/Science/HSC/Physics/set1.json", physicsSet)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := newFakeImportRepo()
	svc, _ := newTestImportService(repo, nil, &bytes.Buffer{})

	_, err := svc.ImportDirectory(ctx, "Data/Output/MCQ")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, repo.sets)
}

func TestImportDirectory_RootMustBeDirectory(t *testing.T) {
	chdirForTest(t, t.TempDir())
	writeFile(t, "file.json", physicsSet)

	svc, _ := newTestImportService(newFakeImportRepo(), nil, &bytes.Buffer{})

	_, err := svc.ImportDirectory(context.Background(), "file.json")
	assert.Error(t, err)

	_, err = svc.ImportDirectory(context.Background(), "missing")
	assert.Error(t, err)
}

func TestImportDirectory_FlushesCacheAfterImport(t *testing.T) {
	chdirForTest(t, t.TempDir())
	writeFile(t, "Data/Output/MCQ/Science/HSC/Physics/set1.json", physicsSet)

	mockCache := new(MockCache)
	mockCache.On("DeleteByPrefix", mock.Anything, "mcqcatalog:catalog:").Return(int64(3), nil).Once()

	svc, _ := newTestImportService(newFakeImportRepo(), mockCache, &bytes.Buffer{})

	_, err := svc.ImportDirectory(context.Background(), "Data/Output/MCQ")
	require.NoError(t, err)
	mockCache.AssertExpectations(t)
}

func TestImportDirectory_CacheFlushFailureIsNotFatal(t *testing.T) {
	chdirForTest(t, t.TempDir())
	writeFile(t, "Data/Output/MCQ/Science/HSC/Physics/set1.json", physicsSet)

	mockCache := new(MockCache)
	mockCache.On("DeleteByPrefix", mock.Anything, mock.Anything).Return(int64(0), errors.New("redis down"))

	svc, _ := newTestImportService(newFakeImportRepo(), mockCache, &bytes.Buffer{})

	_, err := svc.ImportDirectory(context.Background(), "Data/Output/MCQ")
	assert.NoError(t, err)
}

func TestPurgeDivision(t *testing.T) {
	repo := newFakeImportRepo()
	repo.divisions["Science"] = 1

	mockCache := new(MockCache)
	mockCache.On("DeleteByPrefix", mock.Anything, "mcqcatalog:catalog:").Return(int64(1), nil).Once()

	svc, tx := newTestImportService(repo, mockCache, &bytes.Buffer{})

	n, err := svc.PurgeDivision(context.Background(), "Science")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NotContains(t, repo.divisions, "Science")
	assert.Equal(t, 1, tx.calls)

	n, err = svc.PurgeDivision(context.Background(), "Science")
	require.NoError(t, err)
	assert.Zero(t, n)
	mockCache.AssertExpectations(t)

	_, err = svc.PurgeDivision(context.Background(), "  ")
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeInvalidInput, domainErr.Code)
}
