package service

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mcq-catalog/internal/cache"
	"mcq-catalog/internal/domain"

	"go.uber.org/zap"
)

const questionSetFileExt = ".json"

// ImportService loads question-set files into the catalog.
type ImportService interface {
	// ImportDirectory imports every .json file under root, one transaction
	// per file. It stops at the first error; files committed before it stay.
	ImportDirectory(ctx context.Context, root string) (*domain.ImportResult, error)
	// PurgeDivision deletes a division and, by cascade, everything under it.
	PurgeDivision(ctx context.Context, name string) (int64, error)
}

// importService implements ImportService
type importService struct {
	repo      domain.ImportRepository
	txManager domain.TransactionManager
	cache     domain.Cache // optional; flushed after writes
	layout    PathLayout
	out       io.Writer
	logger    *zap.Logger
}

// NewImportService creates a new instance of importService. readCache may be
// nil. Each imported file is reported to out as "Imported: <path>".
func NewImportService(
	repo domain.ImportRepository,
	txManager domain.TransactionManager,
	readCache domain.Cache,
	layout PathLayout,
	out io.Writer,
	logger *zap.Logger,
) ImportService {
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &importService{
		repo:      repo,
		txManager: txManager,
		cache:     readCache,
		layout:    layout,
		out:       out,
		logger:    logger,
	}
}

// ImportDirectory implements ImportService
func (s *importService) ImportDirectory(ctx context.Context, root string) (*domain.ImportResult, error) {
	start := time.Now()
	result := &domain.ImportResult{}

	info, err := os.Stat(root)
	if err != nil {
		return result, fmt.Errorf("cannot read import root: %w", err)
	}
	if !info.IsDir() {
		return result, fmt.Errorf("import root %s is not a directory", root)
	}

	s.logger.Info("Starting question import", zap.String("root", root))

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), questionSetFileExt) {
			return nil
		}

		result.FilesSeen++
		cls, ok := s.layout.Parse(path)
		if !ok {
			result.FilesSkipped++
			s.logger.Debug("Skipping file outside the division/group/subject layout", zap.String("path", path))
			return nil
		}
		return s.importFile(ctx, path, cls, result)
	})

	if result.FilesImported > 0 {
		s.flushCache(ctx)
	}

	s.logger.Info("Question import finished",
		zap.Int("files_seen", result.FilesSeen),
		zap.Int("files_imported", result.FilesImported),
		zap.Int("files_skipped", result.FilesSkipped),
		zap.Int("question_sets", result.QuestionSets),
		zap.Int("questions", result.Questions),
		zap.Int("options", result.Options),
		zap.Int("count_mismatches", result.CountMismatches),
		zap.Int("label_mismatches", result.LabelMismatches),
		zap.Duration("elapsed", time.Since(start)),
		zap.Bool("completed", walkErr == nil),
	)
	return result, walkErr
}

// importFile parses path and writes its question set in one transaction.
// The file is parsed before the transaction opens so a malformed file writes nothing.
func (s *importService) importFile(ctx context.Context, path string, cls Classification, result *domain.ImportResult) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	set, err := ParseQuestionSetFile(data)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if set.HasCountMismatch() {
		s.logger.Warn("Declared question count differs from questions in file",
			zap.String("path", path),
			zap.Int("declared", set.QuestionCount),
			zap.Int("actual", set.ActualQuestionCount()),
		)
	}
	labelMismatches := 0
	for i, q := range set.Questions {
		if !q.CorrectLabelConsistent() {
			labelMismatches++
			s.logger.Warn("Correct option label disagrees with is_correct flags",
				zap.String("path", path),
				zap.Int("question_index", i),
			)
		}
	}

	options := 0
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		divisionID, err := s.repo.GetOrCreateDivision(txCtx, cls.Division)
		if err != nil {
			return err
		}
		groupID, err := s.repo.GetOrCreateGroup(txCtx, cls.Group)
		if err != nil {
			return err
		}
		subjectID, err := s.repo.GetOrCreateSubject(txCtx, divisionID, groupID, cls.Subject)
		if err != nil {
			return err
		}

		set.SubjectID = subjectID
		if err := s.repo.CreateQuestionSet(txCtx, set); err != nil {
			return err
		}
		for _, q := range set.Questions {
			q.SetID = set.ID
			if err := s.repo.CreateQuestion(txCtx, q); err != nil {
				return err
			}
			for _, opt := range q.Options {
				opt.QuestionID = q.ID
				if err := s.repo.CreateOption(txCtx, opt); err != nil {
					return err
				}
				options++
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", path, err)
	}

	result.FilesImported++
	result.QuestionSets++
	result.Questions += len(set.Questions)
	result.Options += options
	result.LabelMismatches += labelMismatches
	if set.HasCountMismatch() {
		result.CountMismatches++
	}

	fmt.Fprintf(s.out, "Imported: %s\n", path)
	s.logger.Info("Imported question set",
		zap.String("path", path),
		zap.String("division", cls.Division),
		zap.String("group", cls.Group),
		zap.String("subject", cls.Subject),
		zap.Int64("question_set_id", set.ID),
		zap.Int("questions", len(set.Questions)),
	)
	return nil
}

// PurgeDivision implements ImportService
func (s *importService) PurgeDivision(ctx context.Context, name string) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, domain.NewInvalidInputError("division name is required")
	}

	var deleted int64
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		n, err := s.repo.DeleteDivisionByName(txCtx, name)
		deleted = n
		return err
	})
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		s.flushCache(ctx)
	}
	s.logger.Info("Purged division", zap.String("division", name), zap.Int64("rows", deleted))
	return deleted, nil
}

func (s *importService) flushCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	// Rows are already committed; an interrupted run still flushes.
	ctx = context.WithoutCancel(ctx)
	prefix := cache.NamespacePrefix(cache.ServiceCatalog)
	n, err := s.cache.DeleteByPrefix(ctx, prefix)
	if err != nil {
		s.logger.Warn("Failed to flush read cache", zap.String("prefix", prefix), zap.Error(err))
		return
	}
	s.logger.Info("Flushed read cache", zap.String("prefix", prefix), zap.Int64("keys", n))
}
