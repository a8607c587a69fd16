package handler

import (
	"mcq-catalog/internal/dto"
	"mcq-catalog/internal/logger"
	"mcq-catalog/internal/middleware"
	"mcq-catalog/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CatalogHandler handles the read-only catalog HTTP requests
type CatalogHandler struct {
	service   service.CatalogService
	validator *middleware.ValidationMiddleware
}

// NewCatalogHandler creates a new CatalogHandler instance
func NewCatalogHandler(service service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		service:   service,
		validator: middleware.NewValidationMiddleware(),
	}
}

// Register mounts the catalog routes on router (normally the /api group).
func (h *CatalogHandler) Register(router fiber.Router) {
	v := h.validator

	router.Get("/divisions", h.ListDivisions)
	router.Get("/divisions/:id", v.ValidateID(), h.GetDivision)
	router.Get("/groups", h.ListGroups)
	router.Get("/groups/:id", v.ValidateID(), h.GetGroup)
	router.Get("/subjects", v.ValidateSubjectQuery(), h.ListSubjects)
	router.Get("/subjects/:id", v.ValidateID(), h.GetSubject)
	router.Get("/question-sets", v.ValidateQuestionSetQuery(), h.ListQuestionSets)
	router.Get("/question-sets/:id", v.ValidateID(), h.GetQuestionSet)
	router.Get("/questions", v.ValidateSearch(), h.ListQuestions)
	router.Get("/questions/:id", v.ValidateID(), h.GetQuestion)
}

func idParam(c *fiber.Ctx) int64 {
	id, _ := c.Locals(middleware.LocalID).(int64)
	return id
}

// ListDivisions godoc
// @Summary List divisions
// @Tags divisions
// @Produce json
// @Success 200 {array} dto.DivisionResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /divisions [get]
func (h *CatalogHandler) ListDivisions(c *fiber.Ctx) error {
	divisions, err := h.service.ListDivisions(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(divisions)
}

// GetDivision godoc
// @Summary Get a division
// @Tags divisions
// @Produce json
// @Param id path int true "Division ID"
// @Success 200 {object} dto.DivisionResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /divisions/{id} [get]
func (h *CatalogHandler) GetDivision(c *fiber.Ctx) error {
	division, err := h.service.GetDivision(c.UserContext(), idParam(c))
	if err != nil {
		return err
	}
	return c.JSON(division)
}

// ListGroups godoc
// @Summary List groups
// @Tags groups
// @Produce json
// @Success 200 {array} dto.GroupResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /groups [get]
func (h *CatalogHandler) ListGroups(c *fiber.Ctx) error {
	groups, err := h.service.ListGroups(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(groups)
}

// GetGroup godoc
// @Summary Get a group
// @Tags groups
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {object} dto.GroupResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /groups/{id} [get]
func (h *CatalogHandler) GetGroup(c *fiber.Ctx) error {
	group, err := h.service.GetGroup(c.UserContext(), idParam(c))
	if err != nil {
		return err
	}
	return c.JSON(group)
}

// ListSubjects godoc
// @Summary List subjects
// @Description Filters are ANDed; search is a case-insensitive substring match on the name.
// @Tags subjects
// @Produce json
// @Param division query int false "Division ID"
// @Param group query int false "Group ID"
// @Param search query string false "Name contains"
// @Success 200 {array} dto.SubjectResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /subjects [get]
func (h *CatalogHandler) ListSubjects(c *fiber.Ctx) error {
	q, _ := c.Locals(middleware.LocalSubjectQuery).(dto.SubjectQuery)
	subjects, err := h.service.ListSubjects(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(subjects)
}

// GetSubject godoc
// @Summary Get a subject
// @Tags subjects
// @Produce json
// @Param id path int true "Subject ID"
// @Success 200 {object} dto.SubjectResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /subjects/{id} [get]
func (h *CatalogHandler) GetSubject(c *fiber.Ctx) error {
	subject, err := h.service.GetSubject(c.UserContext(), idParam(c))
	if err != nil {
		return err
	}
	return c.JSON(subject)
}

// ListQuestionSets godoc
// @Summary List question sets
// @Description Compact listing without questions.
// @Tags question-sets
// @Produce json
// @Param subject query int false "Subject ID"
// @Param search query string false "Title contains"
// @Success 200 {array} dto.QuestionSetResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /question-sets [get]
func (h *CatalogHandler) ListQuestionSets(c *fiber.Ctx) error {
	q, _ := c.Locals(middleware.LocalQuestionSetQuery).(dto.QuestionSetQuery)
	sets, err := h.service.ListQuestionSets(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(sets)
}

// GetQuestionSet godoc
// @Summary Get a question set with all questions and options
// @Tags question-sets
// @Produce json
// @Param id path int true "Question set ID"
// @Success 200 {object} dto.QuestionSetDetailResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /question-sets/{id} [get]
func (h *CatalogHandler) GetQuestionSet(c *fiber.Ctx) error {
	set, err := h.service.GetQuestionSet(c.UserContext(), idParam(c))
	if err != nil {
		return err
	}
	return c.JSON(set)
}

// ListQuestions godoc
// @Summary List questions
// @Tags questions
// @Produce json
// @Param search query string false "Question text contains"
// @Success 200 {array} dto.QuestionResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /questions [get]
func (h *CatalogHandler) ListQuestions(c *fiber.Ctx) error {
	search, _ := c.Locals(middleware.LocalSearch).(string)
	questions, err := h.service.ListQuestions(c.UserContext(), dto.QuestionQuery{Search: search})
	if err != nil {
		return err
	}
	return c.JSON(questions)
}

// GetQuestion godoc
// @Summary Get a question with its options
// @Tags questions
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} dto.QuestionResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /questions/{id} [get]
func (h *CatalogHandler) GetQuestion(c *fiber.Ctx) error {
	question, err := h.service.GetQuestion(c.UserContext(), idParam(c))
	if err != nil {
		return err
	}
	return c.JSON(question)
}

// Health godoc
// @Summary Liveness and dependency check
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /healthz [get]
func (h *CatalogHandler) Health(c *fiber.Ctx) error {
	resp, err := h.service.Health(c.UserContext())
	if err != nil {
		logger.Get().Warn("Health check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}
