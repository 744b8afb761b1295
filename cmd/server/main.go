// Package main is the entry point for the application.
// It initializes all dependencies, sets up the HTTP server,
// and starts the application.
package main

import (
	"context"
	"log"
	"time"

	"pesaflow/internal/config"
	"pesaflow/internal/repositories"
	"pesaflow/internal/routes"
	"pesaflow/internal/services/mpesa"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// main initializes and starts the HTTP server.
// It performs the following setup:
// - Loads configuration
// - Initializes database connection
// - Builds the mobile-money gateway client
// - Configures routes and the stuck-payment sweeper
// - Starts the HTTP server
func main() {
	// Load environment variables
	config.LoadEnv()

	// Initialize databases (PostgreSQL + Redis)
	if err := repositories.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	defer func() {
		if repositories.DB != nil {
			sqlDB, err := repositories.DB.DB()
			if err != nil {
				log.Printf("⚠️ Failed to get database instance: %v", err)
			} else if err := sqlDB.Close(); err != nil {
				log.Printf("⚠️ Failed to close database connection: %v", err)
			}
		}

		if repositories.CacheService != nil {
			if err := repositories.CacheService.Close(); err != nil {
				log.Printf("⚠️ Failed to close Redis connection: %v", err)
			}
		}
	}()

	// Mobile-money gateway client
	gateway := mpesa.NewClient(mpesa.Config{
		ConsumerKey:       config.GetEnv("MPESA_CONSUMER_KEY", ""),
		ConsumerSecret:    config.GetEnv("MPESA_CONSUMER_SECRET", ""),
		Passkey:           config.GetEnv("MPESA_PASSKEY", ""),
		Shortcode:         config.GetEnv("MPESA_SHORTCODE", ""),
		InitiatorName:     config.GetEnv("MPESA_INITIATOR_NAME", ""),
		InitiatorPassword: config.GetEnv("MPESA_INITIATOR_PASSWORD", ""),
		Sandbox:           config.GetEnv("MPESA_ENV", "sandbox") != "production",
		CallbackBaseURL:   config.GetEnv("MPESA_CALLBACK_BASE_URL", "http://localhost:3000"),
	})

	// Create Fiber app
	app := fiber.New()

	// CORS middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: true,
	}))

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Use("/api/register", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	}))

	app.Use("/api/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	}))

	// Routes
	paymentService := routes.SetupRoutes(app, routes.Deps{
		DB:        repositories.DB,
		Gateway:   gateway,
		Registrar: gateway,
	})

	// Periodically resolve initiated payments whose callback never arrived.
	sweepInterval := config.GetDurationEnv("PAYMENT_SWEEP_INTERVAL", 5*time.Minute)
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			resolved, err := paymentService.SweepStuckPayments(ctx)
			cancel()
			if err != nil {
				log.Printf("Payment sweep failed: %v", err)
				continue
			}
			if resolved > 0 {
				log.Printf("Payment sweep resolved %d stuck payments", resolved)
			}
		}
	}()

	// Start server
	log.Fatal(app.Listen(":" + config.GetEnv("PORT", "3000")))
}
