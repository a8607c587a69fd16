package domain

import "context"

// CatalogRepository is the read side of the catalog. Every method is
// side-effect-free. Lookups by id wrap ErrRecordNotFound when nothing matches.
type CatalogRepository interface {
	ListDivisions(ctx context.Context) ([]*Division, error)
	GetDivision(ctx context.Context, id int64) (*Division, error)

	ListGroups(ctx context.Context) ([]*Group, error)
	GetGroup(ctx context.Context, id int64) (*Group, error)

	ListSubjects(ctx context.Context, filter SubjectFilter) ([]*Subject, error)
	GetSubject(ctx context.Context, id int64) (*Subject, error)

	// ListQuestionSets returns sets without their questions.
	ListQuestionSets(ctx context.Context, filter QuestionSetFilter) ([]*QuestionSet, error)
	// GetQuestionSet returns the set with SubjectName filled, without questions.
	GetQuestionSet(ctx context.Context, id int64) (*QuestionSet, error)

	// Question reads always embed options.
	ListQuestionsBySet(ctx context.Context, setID int64) ([]*Question, error)
	ListQuestions(ctx context.Context, filter QuestionFilter) ([]*Question, error)
	GetQuestion(ctx context.Context, id int64) (*Question, error)

	Ping(ctx context.Context) error
}

// ImportRepository is the write side used by the importer. Calls made with a
// transactional context (see TransactionManager) join that transaction.
type ImportRepository interface {
	GetOrCreateDivision(ctx context.Context, name string) (int64, error)
	GetOrCreateGroup(ctx context.Context, name string) (int64, error)
	GetOrCreateSubject(ctx context.Context, divisionID, groupID int64, name string) (int64, error)

	CreateQuestionSet(ctx context.Context, set *QuestionSet) error
	CreateQuestion(ctx context.Context, question *Question) error
	CreateOption(ctx context.Context, option *Option) error

	// DeleteDivisionByName removes a division and, through cascading foreign
	// keys, everything beneath it. It returns the number of divisions deleted.
	DeleteDivisionByName(ctx context.Context, name string) (int64, error)
}

// TransactionManager runs fn inside a single database transaction, committing
// when fn returns nil and rolling back otherwise.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
