package models

import "time"

// ReminderSendLog records the last calendar day a reminder digest was
// dispatched to a recipient. One row per recipient email; last_sent_date
// only ever moves forward.
type ReminderSendLog struct {
	RecipientEmail string    `json:"recipient_email" db:"recipient_email"`
	LastSentDate   string    `json:"last_sent_date" db:"last_sent_date"`
	PendingCount   int       `json:"pending_count" db:"pending_count"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// DayOf formats a timestamp as the day-granularity key stored in the log.
func DayOf(t time.Time) string {
	return t.Format("2006-01-02")
}
