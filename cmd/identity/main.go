package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"electromart/internal/config"
	"electromart/internal/identity/handlers"
	"electromart/internal/identity/middleware"
	"electromart/internal/identity/models"
	"electromart/internal/identity/repositories"
	"electromart/internal/identity/services"
	"electromart/pkg/syncwire"
)

func main() {
	cfg := config.LoadIdentity()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	userRepo := repositories.NewGORMUserRepository(db)

	syncClient := syncwire.NewClient(cfg.Sync.StoreBaseURL, cfg.Sync.SharedSecret, syncwire.DefaultRetryPolicy())
	notifier := services.NewSyncNotifier(syncClient)

	authService := services.NewAuthService(userRepo, notifier, cfg.JWTSecret)
	adminService := services.NewAdminService(userRepo, notifier)

	authHandler := handlers.NewAuthHandler(authService, userRepo)
	adminHandler := handlers.NewAdminHandler(adminService)
	syncHandler := handlers.NewInternalSyncHandler(adminService, cfg.Sync.SharedSecret)

	app := fiber.New()
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Authorization, Accept",
		AllowMethods: "GET, POST, PUT, DELETE, PATCH, OPTIONS",
	}))

	// Internal channel, authenticated by the shared secret only.
	syncHandler.RegisterRoutes(app)

	authHandler.RegisterRoutes(app)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	protected := app.Group("", middleware.AuthRequired(authService))
	authHandler.RegisterProtectedRoutes(protected)

	adminOnly := protected.Group("", middleware.AdminRequired(userRepo))
	adminHandler.RegisterRoutes(adminOnly)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting user-management service on %s", cfg.Port)
		if err := app.Listen(cfg.Port); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down user-management service...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
