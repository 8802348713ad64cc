package router

import (
	"firebase.google.com/go/v4/auth"
	"github.com/blastrhq/blastr/internal/handlers"
	"github.com/blastrhq/blastr/internal/logger"
	"github.com/blastrhq/blastr/internal/middleware"
	"github.com/blastrhq/blastr/internal/models"
	"github.com/blastrhq/blastr/internal/repositories"
	"github.com/blastrhq/blastr/pkg/config"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, cfg *config.Config, pgdb *gorm.DB, mgClient *mongo.Client, firebaseAuthClient *auth.Client, log logger.Logger) error {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Favourite{},
	)
	if err != nil {
		return err
	}
	log.Info("PostgreSQL auto-migrations completed")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	blastRepo := repositories.NewMongoBlastRepository(mgClient.Database(cfg.MongoDatabase))
	favouriteRepo := repositories.NewPostgresFavouriteRepository(pgdb)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient, cfg.JWTSecret)
	authHandler.RegisterAuthRoutes(authGroup)

	// --- Public routes: feeds and listings accept anonymous viewers,
	// but pick up the viewer identity when a token is present ---
	public := e.Group("/api/v1")
	public.Use(middleware.OptionalJWTAuthMiddleware(cfg.JWTSecret))

	feedHandler := handlers.NewFeedHandler(blastRepo, userRepo)
	feedHandler.RegisterFeedRoutes(public)

	listingHandler := handlers.NewListingHandler(blastRepo, userRepo, favouriteRepo)
	listingHandler.RegisterListingRoutes(public)

	blastHandler := handlers.NewBlastHandler(blastRepo, userRepo)
	blastHandler.RegisterPublicBlastRoutes(public)

	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterPublicUserRoutes(public)

	statsHandler := handlers.NewStatsHandler(blastRepo)
	statsHandler.RegisterStatsRoutes(public)

	// --- Protected routes (require authentication) ---
	api := e.Group("/api/v1")
	switch cfg.AuthBackend {
	case "firebase":
		api.Use(middleware.FirebaseAuthMiddleware(firebaseAuthClient, userRepo))
		log.Info("Firebase authentication middleware applied", logger.String("group", "/api/v1"))
	default:
		api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
		log.Info("JWT authentication middleware applied", logger.String("group", "/api/v1"))
	}

	blastHandler.RegisterBlastRoutes(api)

	toggleHandler := handlers.NewToggleHandler(blastRepo, favouriteRepo)
	toggleHandler.RegisterToggleRoutes(api)

	userHandler.RegisterProfileRoutes(api)

	log.Info("All routes configured")
	return nil
}
