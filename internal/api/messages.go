package api

import (
	"net/http"

	"teamhub-backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SendMessage stores a direct message and fans out a notification to the
// receiver. The message is the primary action: it succeeds even when the
// notification write or push publish fails, and those failures are only
// logged. Clients still converge on the unread state via polling.
func (s *Server) SendMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid receiver id"})
		return
	}

	sender, err := s.stores.Users.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown sender"})
		return
	}

	if _, err := s.stores.Users.GetByID(c.Request.Context(), receiverID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Receiver not found"})
		return
	}

	message := models.Message{
		SenderID:   userID.String(),
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
	}

	if err := s.stores.Messages.Create(c.Request.Context(), &message); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	// Best-effort fan-out; never fails the message send.
	notification := models.Notification{
		RecipientID: receiverID,
		Category:    models.CategoryMessage,
		Title:       "New message from " + sender.Name,
		Body:        req.Content,
	}
	logFanout("message", s.fanout(c.Request.Context(), &notification))

	message.SenderName = sender.Name
	c.JSON(http.StatusCreated, message)
}

// GetMessages returns the conversation between the caller and another user.
func (s *Server) GetMessages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	otherID := c.Query("with")
	if otherID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'with' parameter"})
		return
	}

	messages, err := s.stores.Messages.ListConversation(c.Request.Context(), userID.String(), otherID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
