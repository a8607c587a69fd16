package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"mcq-catalog/internal/cache"
	"mcq-catalog/internal/config"
	"mcq-catalog/internal/domain"
	"mcq-catalog/internal/dto"
	"mcq-catalog/internal/logger"
	"mcq-catalog/internal/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultQuestionSetTTL = 10 * time.Minute
	healthCheckTimeout    = 3 * time.Second

	HealthOK   = "ok"
	HealthDown = "down"
)

// CatalogService defines the read operations of the catalog API.
type CatalogService interface {
	ListDivisions(ctx context.Context) ([]dto.DivisionResponse, error)
	GetDivision(ctx context.Context, id int64) (*dto.DivisionResponse, error)
	ListGroups(ctx context.Context) ([]dto.GroupResponse, error)
	GetGroup(ctx context.Context, id int64) (*dto.GroupResponse, error)
	ListSubjects(ctx context.Context, q dto.SubjectQuery) ([]dto.SubjectResponse, error)
	GetSubject(ctx context.Context, id int64) (*dto.SubjectResponse, error)
	ListQuestionSets(ctx context.Context, q dto.QuestionSetQuery) ([]dto.QuestionSetResponse, error)
	GetQuestionSet(ctx context.Context, id int64) (*dto.QuestionSetDetailResponse, error)
	ListQuestions(ctx context.Context, q dto.QuestionQuery) ([]dto.QuestionResponse, error)
	GetQuestion(ctx context.Context, id int64) (*dto.QuestionResponse, error)
	Health(ctx context.Context) (*dto.HealthResponse, error)
}

// catalogService implements CatalogService
type catalogService struct {
	repo           domain.CatalogRepository
	cache          domain.Cache // nil when Redis is not configured
	questionSetTTL time.Duration
}

// NewCatalogService creates a new instance of catalogService. cache may be nil.
func NewCatalogService(repo domain.CatalogRepository, cache domain.Cache, cfg *config.Config) CatalogService {
	ttl := defaultQuestionSetTTL
	if cfg != nil {
		ttl = cfg.ParseTTLStringOrDefault(cfg.Cache.QuestionSetTTL, defaultQuestionSetTTL)
	}
	return &catalogService{
		repo:           repo,
		cache:          cache,
		questionSetTTL: ttl,
	}
}

// toServiceError turns repository errors into DomainErrors for the HTTP layer.
func toServiceError(err error, resource string, id int64) error {
	if errors.Is(err, domain.ErrRecordNotFound) {
		return domain.NewNotFoundError(resource, id)
	}
	return domain.NewInternalError("Failed to load "+resource, err)
}

// ListDivisions implements CatalogService
func (s *catalogService) ListDivisions(ctx context.Context) ([]dto.DivisionResponse, error) {
	divisions, err := s.repo.ListDivisions(ctx)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list divisions", err)
	}
	result := make([]dto.DivisionResponse, 0, len(divisions))
	for _, d := range divisions {
		result = append(result, dto.NewDivisionResponse(d))
	}
	return result, nil
}

// GetDivision implements CatalogService
func (s *catalogService) GetDivision(ctx context.Context, id int64) (*dto.DivisionResponse, error) {
	d, err := s.repo.GetDivision(ctx, id)
	if err != nil {
		return nil, toServiceError(err, "division", id)
	}
	resp := dto.NewDivisionResponse(d)
	return &resp, nil
}

// ListGroups implements CatalogService
func (s *catalogService) ListGroups(ctx context.Context) ([]dto.GroupResponse, error) {
	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list groups", err)
	}
	result := make([]dto.GroupResponse, 0, len(groups))
	for _, g := range groups {
		result = append(result, dto.NewGroupResponse(g))
	}
	return result, nil
}

// GetGroup implements CatalogService
func (s *catalogService) GetGroup(ctx context.Context, id int64) (*dto.GroupResponse, error) {
	g, err := s.repo.GetGroup(ctx, id)
	if err != nil {
		return nil, toServiceError(err, "group", id)
	}
	resp := dto.NewGroupResponse(g)
	return &resp, nil
}

// ListSubjects implements CatalogService
func (s *catalogService) ListSubjects(ctx context.Context, q dto.SubjectQuery) ([]dto.SubjectResponse, error) {
	subjects, err := s.repo.ListSubjects(ctx, domain.SubjectFilter{
		DivisionID: q.Division,
		GroupID:    q.Group,
		Search:     q.Search,
	})
	if err != nil {
		return nil, domain.NewInternalError("Failed to list subjects", err)
	}
	result := make([]dto.SubjectResponse, 0, len(subjects))
	for _, sub := range subjects {
		result = append(result, dto.NewSubjectResponse(sub))
	}
	return result, nil
}

// GetSubject implements CatalogService
func (s *catalogService) GetSubject(ctx context.Context, id int64) (*dto.SubjectResponse, error) {
	sub, err := s.repo.GetSubject(ctx, id)
	if err != nil {
		return nil, toServiceError(err, "subject", id)
	}
	resp := dto.NewSubjectResponse(sub)
	return &resp, nil
}

// ListQuestionSets implements CatalogService
func (s *catalogService) ListQuestionSets(ctx context.Context, q dto.QuestionSetQuery) ([]dto.QuestionSetResponse, error) {
	sets, err := s.repo.ListQuestionSets(ctx, domain.QuestionSetFilter{
		SubjectID: q.Subject,
		Search:    q.Search,
	})
	if err != nil {
		return nil, domain.NewInternalError("Failed to list question sets", err)
	}
	result := make([]dto.QuestionSetResponse, 0, len(sets))
	for _, qs := range sets {
		result = append(result, dto.NewQuestionSetResponse(qs))
	}
	return result, nil
}

// GetQuestionSet implements CatalogService. Detail responses are read through
// the cache when one is configured; cache failures fall back to the database.
func (s *catalogService) GetQuestionSet(ctx context.Context, id int64) (*dto.QuestionSetDetailResponse, error) {
	cacheKey := cache.GenerateCacheKey(cache.ServiceCatalog, cache.ObjectQuestionSet, strconv.FormatInt(id, 10))

	if cached := s.readQuestionSetCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	qs, err := s.repo.GetQuestionSet(ctx, id)
	if err != nil {
		return nil, toServiceError(err, "question set", id)
	}
	questions, err := s.repo.ListQuestionsBySet(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load questions of question set", err)
	}
	qs.Questions = questions

	resp := dto.NewQuestionSetDetailResponse(qs)
	s.writeQuestionSetCache(ctx, cacheKey, &resp)
	return &resp, nil
}

func (s *catalogService) readQuestionSetCache(ctx context.Context, key string) *dto.QuestionSetDetailResponse {
	if s.cache == nil {
		return nil
	}

	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			metrics.ObserveCache(cache.ObjectQuestionSet, metrics.CacheMiss)
			return nil
		}
		metrics.ObserveCache(cache.ObjectQuestionSet, metrics.CacheError)
		logger.Get().Warn("CatalogService: cache read failed, falling back to database",
			zap.String("key", key), zap.Error(err))
		return nil
	}

	var resp dto.QuestionSetDetailResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		metrics.ObserveCache(cache.ObjectQuestionSet, metrics.CacheError)
		logger.Get().Warn("CatalogService: discarding undecodable cache entry",
			zap.String("key", key), zap.Error(err))
		if delErr := s.cache.Delete(ctx, key); delErr != nil {
			logger.Get().Warn("CatalogService: failed to evict cache entry", zap.String("key", key), zap.Error(delErr))
		}
		return nil
	}
	metrics.ObserveCache(cache.ObjectQuestionSet, metrics.CacheHit)
	return &resp
}

func (s *catalogService) writeQuestionSetCache(ctx context.Context, key string, resp *dto.QuestionSetDetailResponse) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		logger.Get().Error("CatalogService: failed to encode question set for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, string(payload), s.questionSetTTL); err != nil {
		logger.Get().Warn("CatalogService: cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// ListQuestions implements CatalogService
func (s *catalogService) ListQuestions(ctx context.Context, q dto.QuestionQuery) ([]dto.QuestionResponse, error) {
	questions, err := s.repo.ListQuestions(ctx, domain.QuestionFilter{Search: q.Search})
	if err != nil {
		return nil, domain.NewInternalError("Failed to list questions", err)
	}
	result := make([]dto.QuestionResponse, 0, len(questions))
	for _, question := range questions {
		result = append(result, dto.NewQuestionResponse(question))
	}
	return result, nil
}

// GetQuestion implements CatalogService
func (s *catalogService) GetQuestion(ctx context.Context, id int64) (*dto.QuestionResponse, error) {
	question, err := s.repo.GetQuestion(ctx, id)
	if err != nil {
		return nil, toServiceError(err, "question", id)
	}
	resp := dto.NewQuestionResponse(question)
	return &resp, nil
}

// Health pings the database and, when configured, the cache concurrently.
// The response lists every check; the error is the first failure.
func (s *catalogService) Health(ctx context.Context) (*dto.HealthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	var mu sync.Mutex
	resp := &dto.HealthResponse{Status: HealthOK, Checks: map[string]string{}}
	record := func(name string, err error) error {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			resp.Checks[name] = HealthDown
			resp.Status = HealthDown
			return domain.NewInternalError(name+" unavailable", err)
		}
		resp.Checks[name] = HealthOK
		return nil
	}

	var g errgroup.Group
	g.Go(func() error { return record("database", s.repo.Ping(ctx)) })
	if s.cache != nil {
		g.Go(func() error { return record("cache", s.cache.Ping(ctx)) })
	}
	return resp, g.Wait()
}
