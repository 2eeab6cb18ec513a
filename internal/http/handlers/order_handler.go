package handlers

import (
	"errors"

	"ferremas/internal/domain"
	applog "ferremas/internal/log"
	"ferremas/internal/repos"
	"ferremas/internal/services"
	"ferremas/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	Cart     *services.CartService
	Checkout *services.CheckoutService
}

type checkoutReq struct {
	CustomerRut     string  `json:"customerRut"`
	CustomerName    string  `json:"customerName"`
	ShippingAddress string  `json:"shippingAddress"`
	PaymentMethod   string  `json:"paymentMethod"`
	Courier         string  `json:"courier"`
	Subtotal        float64 `json:"subtotal"`
	Discount        float64 `json:"discount"`
	ShippingCost    float64 `json:"shippingCost"`
	Total           float64 `json:"total"`
}

// Place validates the checkout form field by field, then hands the engine a
// clean parameter set. Persistence failures surface as 500 with the cart
// intact for retry; the empty-cart and total-mismatch cases are 400s.
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var req checkoutReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}

	fieldErrs := fiber.Map{}
	rut, ok := validate.Rut(req.CustomerRut)
	if !ok {
		fieldErrs["customerRut"] = "invalid rut"
	}
	name, ok := validate.Name(req.CustomerName)
	if !ok {
		fieldErrs["customerName"] = "name required"
	}
	address, ok := validate.Address(req.ShippingAddress)
	if !ok {
		fieldErrs["shippingAddress"] = "shipping address required"
	}
	pm, ok := domain.ParsePaymentMethod(req.PaymentMethod)
	if !ok {
		fieldErrs["paymentMethod"] = "unknown payment method"
	}
	courier, ok := domain.ParseCourier(req.Courier)
	if !ok {
		fieldErrs["courier"] = "unknown courier"
	}
	if !validate.Amount(req.Subtotal) || !validate.Amount(req.Discount) ||
		!validate.Amount(req.ShippingCost) || !validate.Amount(req.Total) {
		fieldErrs["amounts"] = "amounts must be non-negative"
	}
	if len(fieldErrs) > 0 {
		applog.Security(c, "validation.fail", map[string]any{"form": "checkout"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fieldErrs})
	}

	orderID, err := h.Checkout.FinalizeCheckout(services.CheckoutParams{
		CustomerRut:     rut,
		CustomerName:    name,
		ShippingAddress: address,
		PaymentMethod:   pm,
		Courier:         courier,
		Subtotal:        req.Subtotal,
		Discount:        req.Discount,
		ShippingCost:    req.ShippingCost,
		Total:           req.Total,
	})
	switch {
	case errors.Is(err, services.ErrEmptyCart):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cart is empty"})
	case errors.Is(err, domain.ErrTotalMismatch):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, repos.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "insufficient stock, cart preserved"})
	case err != nil:
		applog.Error(c, "order.place.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not place order, cart preserved"})
	}

	applog.Audit(c, "order.place", map[string]any{"order_id": orderID, "total": req.Total})
	o, err := h.Checkout.Order(orderID)
	if err != nil {
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": orderID})
	}
	return c.Status(fiber.StatusCreated).JSON(o)
}

func (h *OrderHandler) View(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
	}
	o, err := h.Checkout.Order(oid)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
	}
	// Owner or admin only.
	u, _ := c.Locals("user").(*domain.User)
	if u == nil || (u.Rut != o.CustomerRut && !u.IsAdmin()) {
		applog.Security(c, "access.denied.order", map[string]any{"order_id": oid})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
	}
	return c.JSON(o)
}

// History lists orders for the current user, newest first.
func (h *OrderHandler) History(c *fiber.Ctx) error {
	u, _ := c.Locals("user").(*domain.User)
	if u == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
	}
	orders, err := h.Checkout.ListOrders(u.Rut)
	if err != nil {
		applog.Error(c, "orders.history.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load orders"})
	}
	return c.JSON(orders)
}
