package api

import (
	"errors"
	"net/http"

	"teamhub-backend/internal/auth"
	"teamhub-backend/internal/config"
	"teamhub-backend/internal/digest"
	"teamhub-backend/internal/middleware"
	"teamhub-backend/internal/models"
	"teamhub-backend/internal/push"
	"teamhub-backend/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Stores bundles the durable record stores the server depends on. Demo
// mode and tests supply the in-memory implementations.
type Stores struct {
	Users         store.UserStore
	Notifications store.NotificationStore
	Messages      store.MessageStore
	Reminders     store.ReminderStore
	SendLog       store.SendLogStore
}

type Server struct {
	stores     Stores
	gateway    *push.Gateway
	composer   *digest.Composer
	jwtManager *auth.JWTManager
	config     *config.Config
}

func NewServer(stores Stores, gateway *push.Gateway, composer *digest.Composer, cfg *config.Config) *Server {
	return &Server{
		stores:     stores,
		gateway:    gateway,
		composer:   composer,
		jwtManager: auth.NewJWTManager(cfg),
		config:     cfg,
	}
}

// Auth Handlers
func (s *Server) Register(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Hash password
	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Name:         req.Name,
		Role:         req.Role,
	}

	if err := s.stores.Users.Create(c.Request.Context(), &user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	token, err := s.jwtManager.GenerateToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, models.LoginResponse{User: user, Token: token})
}

func (s *Server) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.stores.Users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	// Check password
	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := s.jwtManager.GenerateToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{User: user, Token: token})
}

func (s *Server) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := s.stores.Users.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// currentUserID resolves the caller's identity from the auth middleware.
// Requests without one are rejected; handlers never read a recipient id
// from the request itself.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw := middleware.GetUserID(c)
	if raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user identity"})
		return uuid.Nil, false
	}
	return userID, true
}
