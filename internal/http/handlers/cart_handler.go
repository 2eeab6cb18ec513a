package handlers

import (
	"ferremas/internal/services"
	"ferremas/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	Cart *services.CartService
}

type cartReq struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

func (h *CartHandler) parseProduct(c *fiber.Ctx) (cartReq, bool) {
	var req cartReq
	if err := c.BodyParser(&req); err != nil {
		return cartReq{}, false
	}
	if _, ok := validate.ID(req.ProductID); !ok {
		return cartReq{}, false
	}
	return req, true
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	req, ok := h.parseProduct(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing or invalid productId"})
	}
	if err := h.Cart.Add(req.ProductID, validate.Qty(req.Qty)); err != nil {
		if err == services.ErrOutOfStock {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "product out of stock"})
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	return h.View(c)
}

func (h *CartHandler) Increment(c *fiber.Ctx) error {
	req, ok := h.parseProduct(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing or invalid productId"})
	}
	if err := h.Cart.Increment(req.ProductID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not update cart"})
	}
	return h.View(c)
}

// Decrement floors at 1; the response simply reflects the unchanged cart.
func (h *CartHandler) Decrement(c *fiber.Ctx) error {
	req, ok := h.parseProduct(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing or invalid productId"})
	}
	if err := h.Cart.Decrement(req.ProductID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not update cart"})
	}
	return h.View(c)
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	req, ok := h.parseProduct(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing or invalid productId"})
	}
	if err := h.Cart.Remove(req.ProductID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not update cart"})
	}
	return h.View(c)
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	if err := h.Cart.Clear(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not clear cart"})
	}
	return h.View(c)
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	cv, err := h.Cart.View()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load cart"})
	}
	return c.JSON(cv)
}
