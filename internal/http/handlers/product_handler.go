package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "orderdesk/internal/log"
	"orderdesk/internal/services"
	"orderdesk/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	out, err := h.Catalog.List(c.Context(), ownerID(c))
	if err != nil {
		return respondErr(c, "product.list.fail", err)
	}
	return c.JSON(out)
}

// Get resolves by ID or SKU; ID wins when both match.
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	key, ok := validate.SKU(c.Params("key"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fiber.Map{"code": "VALIDATION_ERROR", "message": "invalid product id or sku"},
		})
	}
	p, err := h.Catalog.Lookup(c.Context(), ownerID(c), key)
	if err != nil {
		return respondErr(c, "product.get.fail", err)
	}
	return c.JSON(p)
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fiber.Map{"code": "VALIDATION_ERROR", "message": "malformed body"},
		})
	}
	p, err := h.Catalog.CreateProduct(c.Context(), ownerID(c), in)
	if err != nil {
		return respondErr(c, "product.create.fail", err)
	}
	applog.Audit(c, "product.create", map[string]any{"product_id": p.ID, "sku": p.SKU})
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fiber.Map{"code": "VALIDATION_ERROR", "message": "malformed body"},
		})
	}
	p, err := h.Catalog.UpdateProduct(c.Context(), ownerID(c), c.Params("key"), in)
	if err != nil {
		return respondErr(c, "product.update.fail", err)
	}
	applog.Audit(c, "product.update", map[string]any{"product_id": p.ID, "sku": p.SKU, "stock": p.Stock})
	return c.JSON(p)
}
