package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"ferremas/internal/config"
	"ferremas/internal/http/handlers"
	applog "ferremas/internal/log"
	"ferremas/internal/remote"
	"ferremas/internal/repos"
	"ferremas/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	notes := repos.NewNotify()

	// Remote service client; nil means pure local mode.
	var rc *remote.Client
	if cfg.APIBaseURL != "" {
		rc = remote.NewClient(cfg.APIBaseURL, cfg.APITimeout)
	} else {
		log.Println("[remote] API_BASE_URL not set, running local-only")
	}
	mirror := services.NewMirror(2, 64)
	defer mirror.Close()

	// Auth wiring
	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo, Remote: rc, Mirror: mirror}
	authH := &handlers.AuthHandler{Auth: authSvc}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			// Avoid leaking internals
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "something went wrong, please try again",
			})
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, notes, rc, mirror, authSvc)
	api := app.Group("/api/v1")

	// Catalog
	api.Get("/products", deps.ProductHandler.List)
	api.Get("/products/:id", deps.ProductHandler.Detail)

	// Cart
	api.Get("/cart", deps.CartHandler.View)
	api.Post("/cart", deps.CartHandler.Add)
	api.Post("/cart/increment", deps.CartHandler.Increment)
	api.Post("/cart/decrement", deps.CartHandler.Decrement)
	api.Post("/cart/remove", deps.CartHandler.Remove)
	api.Delete("/cart", deps.CartHandler.Clear)

	// Checkout & orders
	api.Post("/checkout", handlers.RequireUser(authSvc), deps.OrderHandler.Place)
	api.Get("/orders", handlers.RequireUser(authSvc), deps.OrderHandler.History)
	api.Get("/orders/:id", handlers.RequireUser(authSvc), deps.OrderHandler.View)

	// Auth (login throttled)
	api.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, try again later"})
		},
	}), authH.Login)
	api.Post("/logout", authH.Logout)
	api.Post("/register", authH.Register)

	// Admin
	admin := api.Group("/admin", handlers.RequireAdmin(authSvc))
	admin.Get("/orders", deps.AdminHandler.Orders)
	admin.Patch("/orders/:id/status", deps.AdminHandler.UpdateOrderStatus)
	admin.Post("/products", deps.AdminHandler.CreateProduct)
	admin.Put("/products/:id", deps.AdminHandler.UpdateProduct)
	admin.Delete("/products/:id", deps.AdminHandler.DeleteProduct)
	admin.Delete("/products", deps.AdminHandler.ClearProducts)
	admin.Get("/users", deps.AdminHandler.UsersPage)
	admin.Delete("/users/:id", deps.AdminHandler.DeleteUser)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
