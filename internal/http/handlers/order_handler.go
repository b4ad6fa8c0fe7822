package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "orderdesk/internal/log"
	"orderdesk/internal/repos"
	"orderdesk/internal/services"
	"orderdesk/internal/validate"
)

type OrderHandler struct {
	Orders *services.OrderService
}

func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in services.CreateOrderInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fiber.Map{"code": "VALIDATION_ERROR", "message": "malformed body"},
		})
	}
	in.Notes = validate.Notes(in.Notes)

	o, err := h.Orders.Create(c.Context(), ownerID(c), in)
	if err != nil {
		return respondErr(c, "order.create.fail", err)
	}
	applog.Audit(c, "order.create", map[string]any{
		"order_id":     o.ID,
		"order_number": o.OrderNumber,
		"total_cents":  o.TotalCents,
	})
	return c.Status(fiber.StatusCreated).JSON(o)
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fiber.Map{"code": "VALIDATION_ERROR", "message": "invalid order id"},
		})
	}
	o, err := h.Orders.Get(c.Context(), ownerID(c), id)
	if err != nil {
		return respondErr(c, "order.get.fail", err)
	}
	return c.JSON(o)
}

func (h *OrderHandler) List(c *fiber.Ctx) error {
	opts := repos.ListOptions{
		Q:          c.Query("q"),
		CustomerID: c.Query("customer_id"),
		SortBy:     c.Query("sort_by"),
		SortDir:    c.Query("sort_dir"),
		Page:       validate.Page(c.Query("page")),
		Limit:      validate.Limit(c.Query("limit")),
	}
	res, err := h.Orders.List(c.Context(), ownerID(c), opts)
	if err != nil {
		return respondErr(c, "order.list.fail", err)
	}
	return c.JSON(res)
}

func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fiber.Map{"code": "VALIDATION_ERROR", "message": "malformed body"},
		})
	}
	o, err := h.Orders.UpdateStatus(c.Context(), ownerID(c), c.Params("id"), body.Status)
	if err != nil {
		return respondErr(c, "order.status.fail", err)
	}
	applog.Audit(c, "order.status", map[string]any{"order_id": o.ID, "status": o.Status})
	return c.JSON(o)
}

func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	o, err := h.Orders.Cancel(c.Context(), ownerID(c), c.Params("id"))
	if err != nil {
		return respondErr(c, "order.cancel.fail", err)
	}
	applog.Audit(c, "order.cancel", map[string]any{"order_id": o.ID, "order_number": o.OrderNumber})
	return c.JSON(o)
}

func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	if err := h.Orders.Delete(c.Context(), ownerID(c), c.Params("id")); err != nil {
		return respondErr(c, "order.delete.fail", err)
	}
	applog.Audit(c, "order.delete", map[string]any{"order_id": c.Params("id")})
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *OrderHandler) Stats(c *fiber.Ctx) error {
	period := c.Query("period", "month")
	stats, err := h.Orders.Stats(c.Context(), ownerID(c), period)
	if err != nil {
		return respondErr(c, "order.stats.fail", err)
	}
	return c.JSON(stats)
}
