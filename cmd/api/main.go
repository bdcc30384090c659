package main

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"orangerides_backend/internal/controller"
	"orangerides_backend/internal/middleware"
	"orangerides_backend/internal/model"
	"orangerides_backend/pkg/config"
	"orangerides_backend/pkg/cron"
	"orangerides_backend/pkg/database"
	"orangerides_backend/pkg/email"
	"orangerides_backend/pkg/notify"
	"orangerides_backend/pkg/paystack"
	"orangerides_backend/pkg/plan"
	"orangerides_backend/pkg/seed"
	"orangerides_backend/pkg/subscription"
	"orangerides_backend/pkg/utils/location"
	"orangerides_backend/pkg/utils/storage"
)

func setupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Auth Routes
	auth := api.Group("/auth")
	auth.Post("/register", controller.Register)
	auth.Post("/register-owner", controller.RegisterOwner)
	auth.Post("/login", controller.Login)

	// Public marketplace routes
	api.Get("/browse", controller.BrowseListings)
	publicOwners := api.Group("/o")
	publicOwners.Get("/:username", controller.ListOwnerListings)
	publicOwners.Get("/:username/:listing_slug", controller.GetListingBySlug)

	// Public listing interactions
	api.Post("/listings/:slug/view", controller.RecordListingView)
	api.Post("/listings/:slug/inquiries", controller.CreateInquiry)

	// Fleet updates signup, gated on the owner's plan
	api.Post("/owners/:owner_id/fleet/subscribe",
		middleware.CheckFeatureAccess(subscription.FleetUpdates), controller.SubscribeToFleet)

	// Location routes
	api.Get("/locations/countries", controller.GetCountries)
	api.Get("/locations/states/:country_code", controller.GetStates)
	api.Get("/locations/cities/:state_code", controller.GetCities)

	// Protected Routes
	protected := api.Group("/", middleware.AuthMiddleware())
	protected.Get("/me", controller.GetMe)

	// Protected listing routes with quota checks
	listings := protected.Group("/listings")
	listings.Get("/my", controller.ListMyListings)
	listings.Post("/", middleware.CheckListingQuota(), controller.CreateListing)
	listings.Put("/:id", middleware.CheckListingOwnership(), controller.UpdateListing)
	listings.Delete("/:id", middleware.CheckListingOwnership(), controller.DeleteListing)
	listings.Post("/:id/images", middleware.CheckListingOwnership(), middleware.CheckImageLimit(), controller.UploadListingImage)
	listings.Delete("/:id/images/:image_id", middleware.CheckListingOwnership(), controller.DeleteUploadedImage)
	listings.Get("/:id/stats", controller.GetListingStats)

	// Dashboard routes
	dashboard := api.Group("/dashboard", middleware.AuthMiddleware())
	dashboard.Get("/stats", controller.GetOwnerDashboardStats)

	// Protected inquiry routes
	inquiries := protected.Group("/inquiries")
	inquiries.Get("/", controller.GetMyInquiries)
	inquiries.Put("/:id/status", controller.UpdateInquiryStatus)
	inquiries.Put("/:id/read", controller.MarkInquiryAsRead)

	// Fleet subscriber list for the owner
	protected.Get("/fleet/subscribers", controller.ListFleetSubscribers)

	// Settings routes
	settings := api.Group("/settings", middleware.AuthMiddleware())
	settings.Put("/profile", controller.UpdateProfile)
	settings.Put("/password", controller.ChangePassword)
	settings.Put("/business", controller.UpdateBusinessProfile)
	settings.Post("/logo", controller.UploadBusinessLogo)

	// Subscription routes
	subscriptions := api.Group("/subscriptions")
	subscriptions.Get("/plans", controller.ListPlans)

	subProtected := subscriptions.Use(middleware.AuthMiddleware())
	subProtected.Post("/select", controller.SelectPlan)
	subProtected.Post("/cancel", controller.CancelSubscription)
	subProtected.Get("/my", controller.GetMySubscription)

	// Payment provider callbacks
	api.Get("/payments/verify/:reference", middleware.AuthMiddleware(), controller.VerifyPayment)
	api.Post("/payments/webhook", controller.HandlePaymentWebhook)

	// Admin routes
	admin := api.Group("/admin", middleware.AuthMiddleware(), middleware.RequireAdmin())
	admin.Get("/listings/pending", controller.ListPendingListings)
	admin.Put("/listings/:id/approve", controller.ApproveListing)
	admin.Put("/listings/:id/reject", controller.RejectListing)
	admin.Put("/listings/:id/suspend", controller.SuspendListing)
	admin.Get("/owners", controller.ListOwners)
	admin.Put("/owners/:id/approve", controller.ApproveOwner)
	admin.Put("/owners/:id/suspend", controller.SuspendOwner)
	admin.Get("/notifications", controller.ListNotifications)
	admin.Put("/notifications/:id/read", controller.MarkNotificationRead)
	admin.Put("/notifications/read-all", controller.MarkAllNotificationsRead)
}

func main() {
	cfg := config.Load()

	if err := email.InitEmailService(os.Getenv("RESEND_API_KEY")); err != nil {
		log.Printf("Email service disabled: %v", err)
	}

	if err := location.Init(); err != nil {
		log.Fatal("Could not initialize location data:", err)
	}

	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is not set in .env")
	}

	database.InitDB(cfg.Database.URL)
	err := database.MigrateDatabase(
		&model.User{},
		&model.Owner{},
		&model.Subscription{},
		&model.Listing{},
		&model.ListingImage{},
		&model.ListingFeature{},
		&model.ListingView{},
		&model.ListingStats{},
		&model.Inquiry{},
		&model.FleetSubscriber{},
		&model.AdminNotification{},
		&model.LoginHistory{},
	)
	if err != nil {
		log.Printf("Migration warning: %v", err)
	}

	seed.SeedAdminUser(database.GetDB())

	if err := storage.InitStorage(); err != nil {
		log.Printf("Image storage disabled: %v", err)
	}

	catalog := plan.NewCatalog()
	sink := notify.NewSink(database.GetDB())
	activator := subscription.NewActivator(database.GetDB(), catalog, sink)
	gateway := paystack.NewFromEnv()

	middleware.Init(catalog)
	controller.InitAuthController(sink)
	controller.InitListingController(catalog, sink)
	controller.InitSubscriptionController(catalog, activator, gateway, cfg.Paystack.DemoMode)
	controller.InitPaymentController(catalog, activator, gateway, sink)
	controller.InitNotificationController(sink)

	cron.InitSubscriptionExpiryCron()
	if email.GlobalEmailService != nil {
		cron.InitListingStatsCron(email.GlobalEmailService)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New())

	setupRoutes(app)

	log.Printf("Server is running on port %s", cfg.Server.Port)
	log.Fatal(app.Listen(":" + cfg.Server.Port))
}
