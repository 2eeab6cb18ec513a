package handlers

import (
	"strings"

	applog "ferremas/internal/log"
	"ferremas/internal/services"
	"ferremas/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// List serves the resolved catalog. A remote failure is invisible here: the
// resolver silently degrades to local data and this stays a 200.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	if q := strings.TrimSpace(c.Query("q")); q != "" || c.Query("category") != "" {
		prods, err := h.Catalog.Search(strings.ToLower(q), c.Query("category"))
		if err != nil {
			applog.Error(c, "products.search.fail", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load products"})
		}
		return c.JSON(prods)
	}
	prods, err := h.Catalog.Products()
	if err != nil {
		applog.Error(c, "products.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load products"})
	}
	return c.JSON(prods)
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product"})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	p, err := h.Catalog.GetProduct(id)
	if err != nil || p.ID == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	return c.JSON(p)
}
