package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/pipcrest/tradejournal/backend/internal/router"
	"github.com/pipcrest/tradejournal/backend/pkg/config"
	"github.com/pipcrest/tradejournal/backend/pkg/firebase"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Load environment variables from .env before the config reads them
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, assuming environment variables are set.")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB(cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Firebase
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, log)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Setup global middleware
	router.SetupMiddleware(e, log)

	// Setup routes and dependencies
	stopFeed, err := router.SetupRoutes(ctx, e, cfg, db.Postgres, db.Mongo, firebaseApp.AuthClient, firebaseApp.MessagingClient, log)
	if err != nil {
		log.Fatalf("Failed to set up routes: %v", err)
	}
	defer stopFeed()

	// Start server
	log.Fatal(e.Start(":" + cfg.Port))
}
