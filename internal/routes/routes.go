// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"pesaflow/internal/handlers"
	"pesaflow/internal/middleware"
	"pesaflow/internal/models"
	"pesaflow/internal/repositories"
	"pesaflow/internal/services/access"
	"pesaflow/internal/services/auth"
	"pesaflow/internal/services/business"
	"pesaflow/internal/services/invoice"
	"pesaflow/internal/services/notification"
	"pesaflow/internal/services/payment"
	"pesaflow/internal/services/transaction"
	"pesaflow/internal/services/user"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Deps carries the pieces routes cannot build themselves.
type Deps struct {
	DB        *gorm.DB
	Gateway   payment.Gateway
	Registrar handlers.C2BRegistrar
}

// SetupRoutes configures all application routes and returns the payment
// service so the caller can run the background sweeper against it.
// Routes are grouped by functionality with appropriate middleware.
func SetupRoutes(app *fiber.App, deps Deps) payment.Service {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(deps.DB, repositories.CacheService)
	businessRepo := repositories.NewBusinessRepository(deps.DB)
	membershipRepo := repositories.NewMembershipRepository(deps.DB)
	paymentRepo := repositories.NewPaymentRepository(deps.DB)
	invoiceRepo := repositories.NewInvoiceRepository(deps.DB)
	transactionRepo := repositories.NewTransactionRepository(deps.DB)
	notificationRepo := repositories.NewNotificationRepository(deps.DB)

	// Initialize services
	authService := auth.NewService(userRepo)
	userService := user.NewService(userRepo)
	accessService := access.NewService(userRepo, membershipRepo, businessRepo, repositories.CacheService)
	businessService := business.NewService(businessRepo, membershipRepo, accessService)
	paymentService := payment.NewService(paymentRepo, deps.Gateway, accessService)
	invoiceService := invoice.NewService(invoiceRepo, accessService)
	transactionService := transaction.NewService(transactionRepo, accessService)
	notificationService := notification.NewService(notificationRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	businessHandler := handlers.NewBusinessHandler(businessService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to PesaFlow API",
			"version": "1.0.0",
			"docs":    "/api",
		})
	})
	app.Get("/health", handlers.HealthCheck)

	api := app.Group("/api")

	// Public endpoints (no auth required)
	api.Post("/register", authHandler.RegisterUser)
	api.Post("/login", authHandler.LoginUser)
	api.Post("/refresh", authHandler.RefreshToken)

	// Gateway webhooks are public: the gateway cannot send a bearer token.
	api.Post("/mpesa/callback", paymentHandler.MpesaCallback)
	api.Post("/mpesa/b2c/result", paymentHandler.MpesaB2CResult)
	api.Post("/mpesa/b2c/timeout", paymentHandler.MpesaB2CTimeout)

	// Protected routes with auth middleware
	authMiddleware := middleware.NewAuthMiddleware(userRepo)
	protected := api.Use(authMiddleware.Handler)

	// User account routes
	protected.Get("/me", userHandler.GetProfile)
	protected.Put("/me", userHandler.UpdateProfile)
	protected.Post("/change-password", authHandler.ChangePassword)
	protected.Post("/logout", authHandler.LogoutUser)

	// Business and membership routes
	businesses := protected.Group("/businesses")
	businesses.Post("/", businessHandler.CreateBusiness)
	businesses.Get("/", businessHandler.ListBusinesses)
	businesses.Get("/:id", businessHandler.GetBusiness)
	businesses.Get("/:id/members", businessHandler.ListMembers)
	businesses.Post("/:id/members", businessHandler.AddMember)
	businesses.Delete("/:id/members/:membershipId", businessHandler.RemoveMember)

	// Payment routes
	payments := protected.Group("/payments")
	payments.Post("/mpesa", middleware.HasPermission(models.PermissionPaymentWrite), paymentHandler.InitiateMpesaPayment)
	payments.Post("/mpesa/b2c", middleware.HasPermission(models.PermissionPaymentWrite), paymentHandler.SendB2CPayment)
	payments.Get("/mpesa", paymentHandler.ListPayments)
	payments.Get("/mpesa/:id", paymentHandler.GetPayment)

	// Invoice routes
	invoices := protected.Group("/invoices")
	invoices.Post("/", middleware.HasPermission(models.PermissionInvoiceWrite), invoiceHandler.CreateInvoice)
	invoices.Get("/", invoiceHandler.ListInvoices)
	invoices.Get("/:id", invoiceHandler.GetInvoice)
	invoices.Post("/:id/send", middleware.HasPermission(models.PermissionInvoiceWrite), invoiceHandler.SendInvoice)
	invoices.Post("/:id/pay", middleware.HasPermission(models.PermissionInvoiceWrite), invoiceHandler.MarkInvoicePaid)
	invoices.Post("/:id/cancel", middleware.HasPermission(models.PermissionInvoiceWrite), invoiceHandler.CancelInvoice)

	// Ledger routes
	transactions := protected.Group("/transactions")
	transactions.Post("/", middleware.HasPermission(models.PermissionTransactionWrite), transactionHandler.RecordTransaction)
	transactions.Get("/", transactionHandler.ListTransactions)
	transactions.Get("/:id", transactionHandler.GetTransaction)

	// Notification routes
	notifications := protected.Group("/notifications")
	notifications.Get("/", notificationHandler.ListNotifications)
	notifications.Get("/unread-count", notificationHandler.UnreadNotificationCount)
	notifications.Post("/:id/read", notificationHandler.MarkNotificationRead)
	notifications.Post("/read-all", notificationHandler.MarkAllNotificationsRead)

	// Platform administration
	admin := protected.Group("/admin", middleware.SuperAdminOnly)
	mpesaAdminHandler := handlers.NewMpesaAdminHandler(deps.Registrar)
	admin.Post("/mpesa/c2b-urls", mpesaAdminHandler.RegisterC2BURLs)

	return paymentService
}
