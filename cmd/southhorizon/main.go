package main

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"southhorizon/internal/config"
	"southhorizon/internal/http/handlers"
	applog "southhorizon/internal/log"
	"southhorizon/internal/repos"
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

	deps := handlers.NewDeps(db, cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			// Avoid leaking internals
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Something went wrong. Please try again.",
			})
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(handlers.SessionMiddleware(deps.Auth))
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/healthz")
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "header:X-Csrf-Token",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "security check failed, refresh and retry"})
		},
	}))

	// ---------- Routes ----------
	api := app.Group("/api")

	// Session & auth (login throttled)
	api.Get("/auth/me", deps.AuthHandler.Me)
	api.Post("/auth/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, try again later"})
		},
	}), deps.AuthHandler.Login)
	api.Post("/auth/register", deps.AuthHandler.Register)
	api.Post("/auth/phone", deps.AuthHandler.PhoneLogin)
	api.Post("/auth/phone/verify", deps.AuthHandler.VerifyOtp)
	api.Post("/auth/google", deps.AuthHandler.GoogleOAuth)
	api.Post("/auth/logout", deps.AuthHandler.Logout)

	// Catalog (public)
	api.Get("/products", deps.ProductHandler.List)
	api.Get("/products/:id", deps.ProductHandler.Detail)
	api.Get("/categories", deps.ProductHandler.Categories)
	api.Get("/availability", deps.ProductHandler.Availability)

	// Cart
	cart := api.Group("/cart", handlers.RequireUser())
	cart.Get("/", deps.CartHandler.View)
	cart.Get("/count", deps.CartHandler.Count)
	cart.Post("/", deps.CartHandler.Add)
	cart.Put("/items/:id", deps.CartHandler.UpdateItem)
	cart.Delete("/items/:id", deps.CartHandler.RemoveItem)
	cart.Post("/apply-coupon", deps.CouponHandler.Apply)
	cart.Delete("/coupon", deps.CouponHandler.Remove)

	// Coupons
	api.Get("/coupons", handlers.RequireUser(), deps.CouponHandler.Available)
	api.Get("/coupons/validate/:code", handlers.RequireUser(), deps.CouponHandler.Validate)

	// Profile addresses
	addr := api.Group("/profile/addresses", handlers.RequireUser())
	addr.Get("/", deps.AddressHandler.List)
	addr.Post("/", deps.AddressHandler.Create)
	addr.Put("/:id", deps.AddressHandler.Update)
	addr.Delete("/:id", deps.AddressHandler.Delete)
	addr.Put("/:id/default", deps.AddressHandler.SetDefault)

	// Checkout
	co := api.Group("/checkout", handlers.RequireUser())
	co.Post("/", deps.CheckoutHandler.Begin)
	co.Get("/", deps.CheckoutHandler.State)
	co.Put("/address/:id", deps.CheckoutHandler.SelectAddress)
	co.Post("/address", deps.CheckoutHandler.AddAddress)
	co.Post("/coupon", deps.CheckoutHandler.ApplyCoupon)
	co.Delete("/coupon", deps.CheckoutHandler.RemoveCoupon)
	co.Post("/place-order", deps.CheckoutHandler.PlaceOrder)
	co.Post("/payment-result", deps.CheckoutHandler.PaymentResult)

	// Orders
	orders := api.Group("/orders", handlers.RequireUser())
	orders.Get("/", deps.OrderHandler.List)
	orders.Get("/search", deps.OrderHandler.Search)
	orders.Get("/:id", deps.OrderHandler.Detail)
	orders.Get("/:id/history", deps.OrderHandler.StatusHistory)
	orders.Post("/:id/cancel", deps.OrderHandler.Cancel)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error {
		status := fiber.Map{"ok": true, "upstream": "up"}
		if err := deps.Upstream.Health(c.Context()); err != nil {
			status["upstream"] = "down"
		}
		return c.JSON(status)
	})
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
