package api

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"teamhub-backend/internal/models"
	"teamhub-backend/internal/push"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FanoutResult reports the best-effort side effects of creating a
// notification. Producers log it; they never surface it as the primary
// action's failure.
type FanoutResult struct {
	Notification *models.Notification
	StoreErr     error
	PushErr      error
}

func (r FanoutResult) Stored() bool { return r.StoreErr == nil }

// fanout writes a notification record and then publishes the push event.
// Either step may fail independently: a store failure means the record is
// only discoverable once a retry or reconciliation recreates it, a push
// failure means clients find the record on their next poll tick.
func (s *Server) fanout(ctx context.Context, n *models.Notification) FanoutResult {
	result := FanoutResult{Notification: n}

	if err := s.stores.Notifications.Create(ctx, n); err != nil {
		result.StoreErr = err
		return result
	}

	if err := s.gateway.NotifyUser(ctx, n.RecipientID.String(), push.EventNotificationCreated, n); err != nil {
		result.PushErr = err
	}
	return result
}

func logFanout(action string, result FanoutResult) {
	if result.StoreErr != nil {
		log.Printf("Notification fan-out for %s failed to store: %v", action, result.StoreErr)
	}
	if result.PushErr != nil {
		log.Printf("Notification fan-out for %s failed to push (poll will deliver): %v", action, result.PushErr)
	}
}

// GetNotifications returns the caller's notifications, newest first.
func (s *Server) GetNotifications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	notifications, err := s.stores.Notifications.ListForRecipient(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// GetUnreadCount is the poll endpoint; it must stay a cheap count query.
func (s *Server) GetUnreadCount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	count, err := s.stores.Notifications.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch unread count"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

type markReadRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1"`
}

// MarkRead transitions the given notifications to read. Ids that are
// already read or belong to another user are silently skipped.
func (s *Server) MarkRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := s.stores.Notifications.MarkRead(c.Request.Context(), userID, req.IDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (s *Server) MarkAllRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	updated, err := s.stores.Notifications.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

type notifyRequest struct {
	RecipientID uuid.UUID  `json:"recipient_id" binding:"required"`
	Category    string     `json:"category" binding:"required"`
	Title       string     `json:"title" binding:"required"`
	Body        string     `json:"body"`
	ProjectID   *uuid.UUID `json:"project_id"`
	Link        *string    `json:"link"`
}

// Notify is the internal fan-out API used by other services and jobs to
// surface project updates and milestone events.
func (s *Server) Notify(c *gin.Context) {
	var req notifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}

	notification := models.Notification{
		RecipientID: req.RecipientID,
		ProjectID:   req.ProjectID,
		Category:    req.Category,
		Title:       req.Title,
		Body:        req.Body,
		Link:        req.Link,
	}

	result := s.fanout(c.Request.Context(), &notification)
	logFanout("notify", result)
	if !result.Stored() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Notification store unavailable"})
		return
	}

	c.JSON(http.StatusCreated, notification)
}
