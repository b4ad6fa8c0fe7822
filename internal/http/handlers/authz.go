package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "orderdesk/internal/log"
	"orderdesk/internal/services"
)

// RequireOwner authenticates the request via a bearer session token and puts
// the owner into Locals. Every route behind it is tenant-scoped.
func RequireOwner(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
		if token == "" || token == c.Get("Authorization") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": fiber.Map{"code": "UNAUTHORIZED", "message": "missing bearer token"},
			})
		}
		o, err := auth.CurrentOwner(c.Context(), token)
		if err != nil || o == nil {
			applog.Security(c, "access.denied", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": fiber.Map{"code": "UNAUTHORIZED", "message": "invalid session"},
			})
		}
		c.Locals("owner", o)
		c.Locals("owner_id", o.ID)
		return c.Next()
	}
}

func ownerID(c *fiber.Ctx) string {
	id, _ := c.Locals("owner_id").(string)
	return id
}
