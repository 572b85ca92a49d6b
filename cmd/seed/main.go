package main

import (
	"context"
	"log"
	"time"

	"teamhub-backend/internal/config"
	"teamhub-backend/internal/database"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize configuration
	cfg := config.New()

	// Initialize database connection
	db, err := database.NewConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	ctx := context.Background()

	// Create users
	users := []struct {
		Email    string
		Password string
		Name     string
		Role     string
	}{
		{"alice@example.com", "password123", "Alice Member", "member"},
		{"bob@example.com", "password123", "Bob Member", "member"},
		{"admin@example.com", "password123", "Dana Admin", "admin"},
	}

	for _, u := range users {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)

		_, err := db.Pool.Exec(ctx, `
			INSERT INTO users (email, password_hash, name, role, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $5)
			ON CONFLICT (email) DO NOTHING
		`, u.Email, string(hashedPassword), u.Name, u.Role, time.Now())

		if err != nil {
			log.Printf("Failed to create user %s: %v\n", u.Email, err)
		} else {
			log.Printf("User %s created (or already exists)\n", u.Email)
		}
	}

	// Create a few reminders so the digest has something due
	reminders := []struct {
		Title    string
		Priority string
		DueIn    time.Duration
	}{
		{"Renew TLS certificates", "high", -24 * time.Hour},
		{"Review pending invites", "medium", -2 * time.Hour},
		{"Archive finished projects", "low", 48 * time.Hour},
	}

	for _, r := range reminders {
		_, err := db.Pool.Exec(ctx, `
			INSERT INTO reminders (title, priority, reminder_date)
			VALUES ($1, $2, $3)
		`, r.Title, r.Priority, time.Now().Add(r.DueIn))

		if err != nil {
			log.Printf("Failed to create reminder %q: %v\n", r.Title, err)
		} else {
			log.Printf("Reminder %q created\n", r.Title)
		}
	}

	log.Println("Seeding completed successfully!")
}
