package main

import (
	"log"
	"os"

	"teamhub-backend/internal/api"
	"teamhub-backend/internal/config"
	"teamhub-backend/internal/database"
	"teamhub-backend/internal/digest"
	"teamhub-backend/internal/email"
	"teamhub-backend/internal/push"
	"teamhub-backend/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize configuration
	cfg := config.New()

	// Check if we're in demo mode (no database)
	demoMode := os.Getenv("DEMO_MODE") == "true"

	var stores api.Stores
	if demoMode {
		log.Println("Running in DEMO MODE - using in-memory stores, no database required")
		stores = api.Stores{
			Users:         store.NewMemoryUserStore(),
			Notifications: store.NewMemoryNotificationStore(),
			Messages:      store.NewMemoryMessageStore(),
			Reminders:     store.NewMemoryReminderStore(),
			SendLog:       store.NewMemorySendLogStore(),
		}
	} else {
		// Initialize database connection
		db, err := database.NewConnection(cfg)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		defer db.Close()

		// Run database migrations
		if err := database.RunMigrations(db); err != nil {
			log.Fatal("Failed to run migrations:", err)
		}

		stores = api.Stores{
			Users:         store.NewPostgresUserStore(db),
			Notifications: store.NewPostgresNotificationStore(db),
			Messages:      store.NewPostgresMessageStore(db),
			Reminders:     store.NewPostgresReminderStore(db),
			SendLog:       store.NewPostgresSendLogStore(db),
		}
	}

	// Push gateway (disabled when PUSH_REDIS_ADDR is unset)
	gateway := push.NewGateway(cfg)
	if !gateway.Enabled() {
		log.Println("Push transport not configured; clients will rely on polling")
	}

	// Digest composer
	sender := email.NewSender(cfg)
	composer := digest.NewComposer(stores.Reminders, stores.SendLog, sender)

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// Setup API routes
	server := api.NewServer(stores, gateway, composer, cfg)
	api.SetupRoutes(router, server, cfg)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
