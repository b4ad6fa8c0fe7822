package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"orderdesk/internal/config"
	"orderdesk/internal/http/handlers"
	applog "orderdesk/internal/log"
	"orderdesk/internal/repos"
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

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fiber.Map{"code": "INTERNAL", "message": "something went wrong"},
			})
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": fiber.Map{"code": "RATE_LIMITED", "message": "rate limit exceeded, retry soon"},
			})
		},
	}))

	deps := handlers.NewDeps(db, cfg)

	// Auth (login throttled)
	app.Post("/api/v1/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": fiber.Map{"code": "RATE_LIMITED", "message": "too many attempts"},
			})
		},
	}), deps.AuthHandler.Login)
	app.Post("/api/v1/logout", deps.AuthHandler.Logout)

	// Tenant-scoped API
	api := app.Group("/api/v1", handlers.RequireOwner(deps.Auth))

	api.Post("/orders", deps.OrderHandler.Create)
	api.Get("/orders", deps.OrderHandler.List)
	api.Get("/orders/stats", deps.OrderHandler.Stats)
	api.Get("/orders/:id", deps.OrderHandler.Get)
	api.Post("/orders/:id/status", deps.OrderHandler.UpdateStatus)
	api.Post("/orders/:id/cancel", deps.OrderHandler.Cancel)
	api.Delete("/orders/:id", deps.OrderHandler.Delete)

	api.Get("/products", deps.ProductHandler.List)
	api.Post("/products", deps.ProductHandler.Create)
	api.Get("/products/:key", deps.ProductHandler.Get)
	api.Put("/products/:key", deps.ProductHandler.Update)

	api.Get("/customers", deps.CustomerHandler.List)
	api.Post("/customers", deps.CustomerHandler.Create)
	api.Get("/customers/:id", deps.CustomerHandler.Get)
	api.Delete("/customers/:id", deps.CustomerHandler.Delete)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": fiber.Map{"code": "NOT_FOUND", "message": "no such route"},
		})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
