package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "orderdesk/internal/log"
	"orderdesk/internal/services"
)

type CustomerHandler struct {
	Customers *services.CustomerService
}

func (h *CustomerHandler) List(c *fiber.Ctx) error {
	out, err := h.Customers.List(c.Context(), ownerID(c))
	if err != nil {
		return respondErr(c, "customer.list.fail", err)
	}
	return c.JSON(out)
}

func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	cust, err := h.Customers.Get(c.Context(), ownerID(c), c.Params("id"))
	if err != nil {
		return respondErr(c, "customer.get.fail", err)
	}
	return c.JSON(cust)
}

func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var in services.CustomerInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fiber.Map{"code": "VALIDATION_ERROR", "message": "malformed body"},
		})
	}
	cust, err := h.Customers.Create(c.Context(), ownerID(c), in)
	if err != nil {
		return respondErr(c, "customer.create.fail", err)
	}
	applog.Audit(c, "customer.create", map[string]any{"customer_id": cust.ID})
	return c.Status(fiber.StatusCreated).JSON(cust)
}

// Delete refuses while the customer still has orders.
func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	if err := h.Customers.Delete(c.Context(), ownerID(c), c.Params("id")); err != nil {
		return respondErr(c, "customer.delete.fail", err)
	}
	applog.Audit(c, "customer.delete", map[string]any{"customer_id": c.Params("id")})
	return c.SendStatus(fiber.StatusNoContent)
}
