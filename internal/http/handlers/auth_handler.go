package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "orderdesk/internal/log"
	"orderdesk/internal/services"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fiber.Map{"code": "VALIDATION_ERROR", "message": "malformed body"},
		})
	}
	token, owner, err := h.Auth.Login(c.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, services.ErrBadCreds) {
			applog.Security(c, "login.fail", map[string]any{"email": body.Email})
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": fiber.Map{"code": "UNAUTHORIZED", "message": err.Error()},
			})
		}
		return respondErr(c, "login.error", err)
	}
	applog.Audit(c, "login", map[string]any{"owner_id": owner.ID})
	return c.JSON(fiber.Map{"token": token, "owner": owner})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token := strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
	if token != "" && token != c.Get("Authorization") {
		_ = h.Auth.Logout(c.Context(), token)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
