package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/nahid71/vibegram/backend/internal/realtime"
	"github.com/nahid71/vibegram/backend/internal/router"
	"github.com/nahid71/vibegram/backend/pkg/config"
	"github.com/nahid71/vibegram/backend/pkg/firebase"
	"github.com/nahid71/vibegram/backend/pkg/logger"
	"github.com/nahid71/vibegram/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(logger.Config{Development: cfg.Env == "development"})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		zlog.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Initialize Firebase (optional, for Firebase ID-token login)
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		zlog.Fatalf("Failed to initialize Firebase: %v", err)
	}

	// Per-user realtime rooms for notification delivery
	hub := realtime.NewHub(zlog)

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Validator
	e.Validator = validators.NewValidator()

	// Setup routes and dependencies
	opts := router.Options{
		Postgres:      db.Postgres,
		Mongo:         db.Mongo,
		MongoDatabase: cfg.MongoDatabase,
		Hub:           hub,
		StoryTTL:      cfg.StoryTTL,
		JWTSecret:     cfg.JWTSecret,
		Log:           zlog,
	}
	if firebaseApp != nil {
		opts.FirebaseAuth = firebaseApp.AuthClient
	}
	if err := router.SetupRoutes(e, opts); err != nil {
		zlog.Fatalf("Failed to setup routes: %v", err)
	}

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
