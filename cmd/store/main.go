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
	"electromart/internal/store/handlers"
	"electromart/internal/store/middleware"
	"electromart/internal/store/models"
	"electromart/internal/store/seed"
	"electromart/internal/store/services"
	"electromart/pkg/rabbitmq"
	"electromart/pkg/syncwire"
)

func main() {
	cfg := config.LoadStore()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Brand{},
		&models.BrandRequest{},
		&models.SyncedUser{},
		&models.Product{},
		&models.ProductPhoto{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Printf("RabbitMQ unavailable, order events disabled: %v", err)
		} else {
			defer mq.Close()
			publisher = mq
		}
	}

	// Role pushes run on the caller's request path, so they get a single
	// attempt. The identity service converges on its next push anyway.
	reverseClient := syncwire.NewClient(cfg.Sync.UserBaseURL, cfg.Sync.SharedSecret, syncwire.NoRetry())
	roleNotifier := services.NewReverseSyncClient(reverseClient)

	logos := services.NewLogoStore()
	userSync := services.NewUserSyncService(db)
	authz := services.NewAuthzService(db)
	brandService := services.NewBrandService(db, roleNotifier)
	requestService := services.NewBrandRequestService(db, logos, roleNotifier)
	productService := services.NewProductService(db, authz)
	orderService := services.NewOrderService(db, publisher)

	syncHandler := handlers.NewSyncHandler(userSync)
	brandHandler := handlers.NewBrandHandler(brandService, requestService, authz)
	productHandler := handlers.NewProductHandler(productService, authz)
	orderHandler := handlers.NewOrderHandler(orderService, authz)
	publicHandler := handlers.NewPublicHandler(brandService)

	app := fiber.New(fiber.Config{BodyLimit: 20 * 1024 * 1024})
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Authorization, Accept",
		AllowMethods: "GET, POST, PUT, DELETE, PATCH, OPTIONS",
	}))

	// Internal channel, authenticated by the shared secret only.
	internal := app.Group("/internal", middleware.InternalAuth(cfg.Sync.SharedSecret))
	syncHandler.RegisterRoutes(internal)

	// Public routes go first; everything registered after the protected
	// group passes through the JWT middleware.
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	brandHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)
	publicHandler.RegisterRoutes(app)

	protected := app.Group("", middleware.AuthRequired(cfg.JWTSecret))
	brandHandler.RegisterProtectedRoutes(protected)
	productHandler.RegisterProtectedRoutes(protected)
	orderHandler.RegisterProtectedRoutes(protected)

	adminOnly := protected.Group("", middleware.AdminRequired(authz))
	brandHandler.RegisterAdminRoutes(adminOnly)
	orderHandler.RegisterAdminRoutes(adminOnly)

	go func() {
		if err := seed.NewSeeder(db, cfg.Seed, requestService).Run(); err != nil {
			log.Printf("Seeder failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting electronics-store service on %s", cfg.Port)
		if err := app.Listen(cfg.Port); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down electronics-store service...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
