package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification categories.
const (
	CategoryProjectUpdate = "project_update"
	CategoryMessage       = "message"
	CategoryMilestone     = "milestone"
	CategoryGeneral       = "general"
)

type Notification struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	RecipientID uuid.UUID  `json:"recipient_id" db:"recipient_id"`
	ProjectID   *uuid.UUID `json:"project_id,omitempty" db:"project_id"`
	Category    string     `json:"category" db:"category"`
	Title       string     `json:"title" db:"title"`
	Body        string     `json:"body" db:"body"`
	Link        *string    `json:"link,omitempty" db:"link"`
	IsRead      bool       `json:"is_read" db:"is_read"`
	ReadAt      *time.Time `json:"read_at,omitempty" db:"read_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

func ValidCategory(category string) bool {
	switch category {
	case CategoryProjectUpdate, CategoryMessage, CategoryMilestone, CategoryGeneral:
		return true
	}
	return false
}
