package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"orderdesk/internal/domain"
	applog "orderdesk/internal/log"
)

func statusFor(code string) int {
	switch code {
	case domain.CodeNotFound:
		return fiber.StatusNotFound
	case domain.CodeValidation:
		return fiber.StatusBadRequest
	case domain.CodeOutOfStock, domain.CodeInvalidState, domain.CodeConflict, domain.CodeCapacityExceeded:
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// respondErr maps coded domain errors to JSON; anything else is logged and
// hidden behind a generic 500.
func respondErr(c *fiber.Ctx, action string, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return c.Status(statusFor(de.Code)).JSON(fiber.Map{"error": de})
	}
	applog.Error(c, action, err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fiber.Map{"code": "INTERNAL", "message": "something went wrong"},
	})
}
