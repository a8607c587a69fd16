package middleware

import (
	"mcq-catalog/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Locals keys written by ValidationMiddleware.
const (
	LocalID               = "validated_id"
	LocalSubjectQuery     = "validated_subject_query"
	LocalQuestionSetQuery = "validated_question_set_query"
	LocalSearch           = "validated_search"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateID validates the :id path parameter and stores it as int64.
func (vm *ValidationMiddleware) ValidateID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, errors := vm.validator.ValidateID("id", c.Params("id"))
		if len(errors) > 0 {
			return errors // handled by ErrorHandler
		}
		c.Locals(LocalID, id)
		return c.Next()
	}
}

// ValidateSubjectQuery validates ?division=&group=&search=.
func (vm *ValidationMiddleware) ValidateSubjectQuery() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, errors := vm.validator.ValidateSubjectQuery(c.Query("division"), c.Query("group"), c.Query("search"))
		if len(errors) > 0 {
			return errors
		}
		c.Locals(LocalSubjectQuery, q)
		return c.Next()
	}
}

// ValidateQuestionSetQuery validates ?subject=&search=.
func (vm *ValidationMiddleware) ValidateQuestionSetQuery() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, errors := vm.validator.ValidateQuestionSetQuery(c.Query("subject"), c.Query("search"))
		if len(errors) > 0 {
			return errors
		}
		c.Locals(LocalQuestionSetQuery, q)
		return c.Next()
	}
}

// ValidateSearch validates ?search= on its own.
func (vm *ValidationMiddleware) ValidateSearch() fiber.Handler {
	return func(c *fiber.Ctx) error {
		search := c.Query("search")
		if errors := vm.validator.ValidateSearch(search); len(errors) > 0 {
			return errors
		}
		c.Locals(LocalSearch, search)
		return c.Next()
	}
}
