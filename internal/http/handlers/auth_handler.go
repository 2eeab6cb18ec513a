package handlers

import (
	"time"

	"ferremas/internal/domain"
	applog "ferremas/internal/log"
	"ferremas/internal/services"
	"ferremas/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false, // enable true behind TLS
		})
	}
	return sid
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}
	email, ok := validate.Email(req.Email)
	if !ok {
		applog.Security(c, "auth.login.fail", map[string]any{"reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid email or password"})
	}
	u, err := h.Auth.Login(sid, email, req.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": email})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid email or password"})
	}
	applog.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.JSON(u)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	_ = h.Auth.Logout(sid)
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	applog.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.JSON(fiber.Map{"ok": true})
}

type registerReq struct {
	Rut      string `json:"rut"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Comuna   string `json:"comuna"`
	Region   string `json:"region"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}

	fieldErrs := fiber.Map{}
	rut, ok := validate.Rut(req.Rut)
	if !ok {
		fieldErrs["rut"] = "invalid rut"
	}
	email, ok := validate.Email(req.Email)
	if !ok {
		fieldErrs["email"] = "invalid email"
	}
	name, ok := validate.Name(req.Name)
	if !ok {
		fieldErrs["name"] = "name required"
	}
	username, ok := validate.ID(req.Username)
	if !ok {
		fieldErrs["username"] = "invalid username"
	}
	if !validate.Password(req.Password) {
		fieldErrs["password"] = "password too weak"
	}
	if len(fieldErrs) > 0 {
		applog.Security(c, "validation.fail", map[string]any{"form": "register"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fieldErrs})
	}

	id, err := h.Auth.Register(domain.User{
		Rut:      rut,
		Name:     name,
		Surname:  req.Surname,
		Username: username,
		Email:    email,
		Phone:    req.Phone,
		Address:  req.Address,
		Comuna:   req.Comuna,
		Region:   req.Region,
	}, req.Password)
	if err == services.ErrUserTaken {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		applog.Error(c, "auth.register.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not register"})
	}
	applog.Audit(c, "auth.register", map[string]any{"user_id": id})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}
