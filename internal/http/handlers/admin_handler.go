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

type AdminHandler struct {
	Catalog  *services.CatalogService
	Checkout *services.CheckoutService
	Auth     *services.AuthService
	Users    *repos.UserRepo
}

// GET /admin/orders
func (h *AdminHandler) Orders(c *fiber.Ctx) error {
	ords, err := h.Checkout.ListOrders("")
	if err != nil {
		applog.Error(c, "admin.orders.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load orders"})
	}
	return c.JSON(ords)
}

type statusReq struct {
	Status string `json:"status"`
}

// PATCH /admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing id"})
	}
	var req statusReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}
	status, ok := domain.ParseStatus(req.Status)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown status"})
	}

	err := h.Checkout.UpdateOrderStatus(id, status)
	switch {
	case errors.Is(err, repos.ErrOrderNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
	case errors.Is(err, services.ErrBadTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		applog.Error(c, "admin.orders.update.fail", err, map[string]any{"order_id": id})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not update status"})
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "status": status})
	return c.JSON(fiber.Map{"ok": true})
}

type productReq struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	Stock       int     `json:"stock"`
}

func (r productReq) validate() (domain.Product, fiber.Map) {
	fieldErrs := fiber.Map{}
	name, ok := validate.Name(r.Name)
	if !ok {
		fieldErrs["name"] = "name required"
	}
	if r.Price < 0 {
		fieldErrs["price"] = "price must be non-negative"
	}
	if r.Stock < 0 {
		fieldErrs["stock"] = "stock must be non-negative"
	}
	if len(fieldErrs) > 0 {
		return domain.Product{}, fieldErrs
	}
	return domain.Product{
		ID:          r.ID,
		Name:        name,
		Description: r.Description,
		Price:       r.Price,
		Image:       r.Image,
		Category:    r.Category,
		Stock:       r.Stock,
	}, nil
}

// POST /admin/products
func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	var req productReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}
	p, fieldErrs := req.validate()
	if fieldErrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fieldErrs})
	}
	id, err := h.Catalog.CreateProduct(p)
	if err != nil {
		applog.Error(c, "admin.products.create.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not create product"})
	}
	applog.Audit(c, "admin.products.create", map[string]any{"product_id": id})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// PUT /admin/products/:id
func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing id"})
	}
	var req productReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}
	p, fieldErrs := req.validate()
	if fieldErrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fieldErrs})
	}
	p.ID = id
	if err := h.Catalog.UpdateProduct(p); err != nil {
		applog.Error(c, "admin.products.update.fail", err, map[string]any{"product_id": id})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "could not update product"})
	}
	applog.Audit(c, "admin.products.update", map[string]any{"product_id": id})
	return c.JSON(fiber.Map{"ok": true})
}

// DELETE /admin/products/:id
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing id"})
	}
	if err := h.Catalog.DeleteProduct(id); err != nil {
		applog.Error(c, "admin.products.delete.fail", err, map[string]any{"product_id": id})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not delete product"})
	}
	applog.Audit(c, "admin.products.delete", map[string]any{"product_id": id})
	return c.JSON(fiber.Map{"ok": true})
}

// DELETE /admin/products
func (h *AdminHandler) ClearProducts(c *fiber.Ctx) error {
	if err := h.Catalog.ClearProducts(); err != nil {
		applog.Error(c, "admin.products.clear.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not clear products"})
	}
	applog.Audit(c, "admin.products.clear", nil)
	return c.JSON(fiber.Map{"ok": true})
}

// GET /admin/users
func (h *AdminHandler) UsersPage(c *fiber.Ctx) error {
	users, err := h.Users.List()
	if err != nil {
		applog.Error(c, "admin.users.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load users"})
	}
	return c.JSON(users)
}

// DELETE /admin/users/:id
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing id"})
	}
	if err := h.Auth.DeleteAccount(id); err != nil {
		applog.Error(c, "admin.users.delete.fail", err, map[string]any{"user_id": id})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not delete user"})
	}
	applog.Audit(c, "admin.users.delete", map[string]any{"user_id": id})
	return c.JSON(fiber.Map{"ok": true})
}
