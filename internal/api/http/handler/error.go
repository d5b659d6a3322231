package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/olopez/tasknest/internal/model"
)

// handleError maps domain errors to HTTP responses at the boundary.
func handleError(c fiber.Ctx, err error) error {
	return c.Status(errorStatus(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, model.ErrEmailTaken),
		errors.Is(err, model.ErrInvalidCredentials),
		errors.Is(err, model.ErrResetTokenInvalid):
		return fiber.StatusBadRequest

	case errors.Is(err, model.ErrInvalidToken):
		return fiber.StatusUnauthorized

	case errors.Is(err, model.ErrNotFound),
		errors.Is(err, model.ErrNoProfileImage):
		return fiber.StatusNotFound

	default:
		return fiber.StatusInternalServerError
	}
}

// errorStatusVerifyEmail downgrades invalid verification tokens to 400:
// the link is wrong or spent, nothing was being authenticated.
func errorStatusVerifyEmail(err error) int {
	if errors.Is(err, model.ErrInvalidToken) {
		return fiber.StatusBadRequest
	}
	return errorStatus(err)
}
