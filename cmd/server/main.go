package main

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"github.com/blastrhq/blastr/internal/logger"
	"github.com/blastrhq/blastr/internal/router"
	"github.com/blastrhq/blastr/pkg/config"
	"github.com/blastrhq/blastr/pkg/firebase"
	"github.com/blastrhq/blastr/pkg/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log := logger.New(cfg.LogLevel, cfg.Env == "development")
	defer func() { _ = log.Sync() }()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to initialize databases", logger.Error(err))
	}
	defer db.CloseDB()
	log.Info("Database connections established")

	// Firebase is optional; without credentials the JWT backend serves
	// all authentication.
	var firebaseAuthClient *auth.Client
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(context.Background(), cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatal("Failed to initialize Firebase", logger.Error(err))
		}
		firebaseAuthClient = firebaseApp.AuthClient
		log.Info("Firebase auth client initialized")
	} else if cfg.AuthBackend == "firebase" {
		log.Fatal("AUTH_BACKEND=firebase requires FIREBASE_CREDENTIALS_PATH")
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Validator
	e.Validator = validators.NewValidator()

	// Setup routes and dependencies
	if err := router.SetupRoutes(e, cfg, db.Postgres, db.Mongo, firebaseAuthClient, log); err != nil {
		log.Fatal("Failed to set up routes", logger.Error(err))
	}

	// Start server
	log.Info("Starting server", logger.String("port", cfg.Port))
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal("Server stopped", logger.Error(err))
	}
}
