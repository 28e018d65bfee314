package middleware

import (
	"study-byte/internal/domain"
	"study-byte/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const validatedRequestKey = "validated_request"

var requestValidator = validation.NewValidator()

// ValidateForm parses the request body (multipart, urlencoded or JSON) into a
// new T, validates it and stores it for the handler. A bodiless request
// yields the zero T, which selects every default.
func ValidateForm[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(T)
		if len(c.Body()) > 0 {
			if err := c.BodyParser(req); err != nil {
				return domain.NewError(domain.CodeInvalidInput, "Malformed request body", err)
			}
		}

		if errors := requestValidator.Validate(req); len(errors) > 0 {
			return errors // This will be handled by ErrorHandler middleware
		}

		// Store validated value in context for handlers to use
		c.Locals(validatedRequestKey, req)
		return c.Next()
	}
}

// ValidatedRequest returns the request stored by ValidateForm[T]. A handler
// mounted without it gets the zero T.
func ValidatedRequest[T any](c *fiber.Ctx) *T {
	if req, ok := c.Locals(validatedRequestKey).(*T); ok {
		return req
	}
	return new(T)
}
