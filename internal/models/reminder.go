package models

import (
	"time"

	"github.com/google/uuid"
)

// Reminder priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

type Reminder struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Title        string     `json:"title" db:"title"`
	Notes        string     `json:"notes" db:"notes"`
	Priority     string     `json:"priority" db:"priority"`
	ReminderDate time.Time  `json:"reminder_date" db:"reminder_date"`
	IsCompleted  bool       `json:"is_completed" db:"is_completed"`
	CreatedBy    *uuid.UUID `json:"created_by,omitempty" db:"created_by"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

type CreateReminderRequest struct {
	Title        string    `json:"title" binding:"required,max=500"`
	Notes        string    `json:"notes"`
	Priority     string    `json:"priority" binding:"required,oneof=high medium low"`
	ReminderDate time.Time `json:"reminder_date" binding:"required"`
}

type UpdateReminderRequest struct {
	Title        string    `json:"title" binding:"required,max=500"`
	Notes        string    `json:"notes"`
	Priority     string    `json:"priority" binding:"required,oneof=high medium low"`
	ReminderDate time.Time `json:"reminder_date" binding:"required"`
}

func (r *Reminder) IsDue(now time.Time) bool {
	return !r.IsCompleted && !r.ReminderDate.After(now)
}
