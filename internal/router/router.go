package router

import (
	"log"
	"os"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/volunhub/backend/internal/handlers"
	"github.com/volunhub/backend/internal/middleware"
	"github.com/volunhub/backend/internal/models"
	"github.com/volunhub/backend/internal/realtime"
	"github.com/volunhub/backend/internal/repositories"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Logger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies.
// firebaseAuthClient may be nil when federated login is not configured.
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client, firebaseAuthClient *auth.Client) {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Message{},
		&models.Notification{},
		&models.Application{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	messageRepo := repositories.NewPostgresMessageRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)
	applicationRepo := repositories.NewPostgresApplicationRepository(pgdb)
	opportunityRepo := repositories.NewMongoOpportunityRepository(mgClient.Database("volunhub"))

	// --- Realtime gateway (websocket, token-authenticated handshake) ---
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "supersecretjwtkey"
	}
	gateway := realtime.NewGateway(realtime.NewRegistry(), userRepo, messageRepo, notificationRepo, jwtSecret)
	gateway.RegisterRoutes(e)
	log.Println("Realtime chat gateway configured.")

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// User profile and dashboard routes
	userHandler := handlers.NewUserHandler(userRepo, opportunityRepo, applicationRepo)
	userHandler.RegisterUserRoutes(api)
	log.Println("User routes configured.")

	// Opportunity routes
	opportunityHandler := handlers.NewOpportunityHandler(opportunityRepo, applicationRepo, userRepo)
	opportunityHandler.RegisterOpportunityRoutes(api)
	log.Println("Opportunity routes configured.")

	// Application routes
	applicationHandler := handlers.NewApplicationHandler(applicationRepo, opportunityRepo, userRepo, messageRepo, notificationRepo, gateway)
	applicationHandler.RegisterApplicationRoutes(api)
	log.Println("Application routes configured.")

	// Message routes
	messageHandler := handlers.NewMessageHandler(messageRepo, userRepo)
	messageHandler.RegisterMessageRoutes(api)
	log.Println("Message routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	log.Println("All routes configured.")
}
