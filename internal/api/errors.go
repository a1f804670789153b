package api

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"

	"github.com/TNTKien/repo-timeline/internal/models"
)

var (
	errMissingRepo     = fmt.Errorf("%w: owner and repo are required", models.ErrInvalidRequest)
	errSessionNotFound = errors.New("session not found")
)

// writeError maps err onto the {error, details} failure body.
func writeError(c fiber.Ctx, err error) error {
	var upErr *models.UpstreamError
	switch {
	case errors.Is(err, errMissingRepo):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Missing owner or repo parameters",
			"details": err.Error(),
		})
	case errors.Is(err, models.ErrInvalidRequest):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request",
			"details": err.Error(),
		})
	case errors.Is(err, errSessionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "session not found",
			"details": c.Params("id"),
		})
	case errors.As(err, &upErr):
		status := fiber.StatusBadGateway
		if upErr.Status == fiber.StatusNotFound {
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(fiber.Map{
			"error":   "Failed to fetch repository data",
			"details": upErr.Detail,
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal server error",
			"details": err.Error(),
		})
	}
}
