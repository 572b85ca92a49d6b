// Command watch logs in against a running server and follows one user's
// unread notification state, printing every poll result and push event.
// It is both a dev tool and the reference consumer of the sync engine.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"teamhub-backend/internal/config"
	"teamhub-backend/internal/push"
	"teamhub-backend/internal/syncengine"

	"github.com/joho/godotenv"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080/api/v1", "API base URL")
	emailFlag := flag.String("email", "alice@example.com", "login email")
	password := flag.String("password", "password123", "login password")
	interval := flag.Duration("interval", 30*time.Second, "poll interval")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.New()

	token, userID, err := login(*baseURL, *emailFlag, *password)
	if err != nil {
		fmt.Println("Login failed:", err)
		return
	}
	fmt.Println("Login successful, watching notifications for", userID)

	client := &http.Client{Timeout: 10 * time.Second}
	source := func(ctx context.Context) (int, error) {
		return fetchUnreadCount(ctx, client, *baseURL, token)
	}

	gateway := push.NewGateway(cfg)

	engine := syncengine.New(source, gateway, userID, syncengine.Options{
		Interval: *interval,
		OnCount: func(count int) {
			fmt.Printf("[poll] unread count: %d\n", count)
		},
		OnNew: func(count, delta int) {
			fmt.Printf("[poll] %d new notification(s), unread now %d\n", delta, count)
		},
		OnEvent: func(ev push.Event) {
			fmt.Printf("[push] %s: %s\n", ev.Name, string(ev.Payload))
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	engine.Start(ctx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	fmt.Println("Shutting down...")
	engine.Stop()
}

func login(baseURL, email, password string) (token, userID string, err error) {
	loginBody := map[string]string{
		"email":    email,
		"password": password,
	}
	jsonBody, _ := json.Marshal(loginBody)

	resp, err := http.Post(baseURL+"/auth/login", "application/json", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", "", fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	var loginResp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return "", "", err
	}
	return loginResp.Token, loginResp.User.ID, nil
}

func fetchUnreadCount(ctx context.Context, client *http.Client, baseURL, token string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/notifications/unread-count", nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	var countResp struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&countResp); err != nil {
		return 0, err
	}
	return countResp.Count, nil
}
