package handlers

import (
	"errors"
	"fmt"

	"nexora/internal/catalog"
	"nexora/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

func validationFailed(c *fiber.Ctx, err error) error {
	errorMessages := make(map[string]string)
	var validationErrors validator.ValidationErrors
	var fieldErr *catalog.ValidationError
	switch {
	case errors.As(err, &validationErrors):
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
	case errors.As(err, &fieldErr):
		errorMessages[fieldErr.Field] = fieldErr.Message
	default:
		errorMessages["body"] = err.Error()
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  "Validation failed",
		"errors": errorMessages,
	})
}

// storeFailure writes a 500 carrying the store's message, details, hint and
// code. When summary is empty the store's own message is the error text.
func storeFailure(c *fiber.Ctx, summary string, err error) error {
	var storeErr *repositories.StoreError
	if !errors.As(err, &storeErr) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
			"type":  "Unexpected error",
		})
	}

	body := fiber.Map{
		"error":   storeErr.Message,
		"details": storeErr.Details,
		"hint":    storeErr.Hint,
		"code":    storeErr.Code,
	}
	if summary != "" {
		body["error"] = summary
		body["details"] = storeErr.Error()
	}
	return c.Status(fiber.StatusInternalServerError).JSON(body)
}
