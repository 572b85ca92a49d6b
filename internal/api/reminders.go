package api

import (
	"errors"
	"log"
	"net/http"

	"teamhub-backend/internal/digest"
	"teamhub-backend/internal/middleware"
	"teamhub-backend/internal/models"
	"teamhub-backend/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DigestCheck opportunistically runs the reminder digest dispatch when an
// administrator loads any admin page. There is no background scheduler;
// the send-log's atomic day claim makes concurrent page loads safe, and
// after the first dispatch of the day every further check is one indexed
// read. Failures are logged and never fail the request.
func (s *Server) DigestCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := middleware.GetEmail(c)
		if email != "" {
			outcome, err := s.composer.TryDispatch(c.Request.Context(), email)
			switch {
			case err != nil:
				log.Printf("Digest check for %s failed: %v", email, err)
			case outcome.Status == digest.StatusSent:
				log.Printf("Digest sent to %s (%d due)", email, outcome.DueCount)
			case outcome.Status == digest.StatusDispatchFailed:
				log.Printf("Digest to %s claimed the day but failed to send: %v", email, outcome.Err)
			}
		}
		c.Next()
	}
}

// GetDigestStatus reports the admin's send-log entry and current due count.
func (s *Server) GetDigestStatus(c *gin.Context) {
	email := middleware.GetEmail(c)
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	status, err := s.composer.Status(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch digest status"})
		return
	}

	c.JSON(http.StatusOK, status)
}

// Reminder Handlers
func (s *Server) GetReminders(c *gin.Context) {
	reminders, err := s.stores.Reminders.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reminders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reminders": reminders})
}

func (s *Server) CreateReminder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reminder := models.Reminder{
		Title:        req.Title,
		Notes:        req.Notes,
		Priority:     req.Priority,
		ReminderDate: req.ReminderDate,
		CreatedBy:    &userID,
	}

	if err := s.stores.Reminders.Create(c.Request.Context(), &reminder); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reminder"})
		return
	}

	c.JSON(http.StatusCreated, reminder)
}

func (s *Server) UpdateReminder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reminder id"})
		return
	}

	var req models.UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reminder := models.Reminder{
		ID:           id,
		Title:        req.Title,
		Notes:        req.Notes,
		Priority:     req.Priority,
		ReminderDate: req.ReminderDate,
	}

	if err := s.stores.Reminders.Update(c.Request.Context(), &reminder); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update reminder"})
		return
	}

	c.JSON(http.StatusOK, reminder)
}

func (s *Server) DeleteReminder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reminder id"})
		return
	}

	if err := s.stores.Reminders.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete reminder"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reminder deleted"})
}

func (s *Server) CompleteReminder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reminder id"})
		return
	}

	if err := s.stores.Reminders.Complete(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete reminder"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reminder completed"})
}
