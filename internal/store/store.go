package store

import (
	"context"
	"errors"
	"time"

	"teamhub-backend/internal/models"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record or recipient does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a unique constraint is violated.
	ErrConflict = errors.New("record already exists")
	// ErrUnavailable wraps transient store failures. Callers on the
	// fan-out path log it and continue; it never aborts the primary action.
	ErrUnavailable = errors.New("store unavailable")
)

// NotificationStore owns the notifications write path. Read-state
// transitions are one-directional: unread to read, never back.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]models.Notification, error)
	UnreadCount(ctx context.Context, recipientID uuid.UUID) (int, error)
	// MarkRead transitions the given ids to read, but only rows that are
	// unread and owned by recipientID. Unknown, already-read, or foreign
	// ids are ignored. Returns the number of rows transitioned.
	MarkRead(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) (int, error)
	// MarkAllRead is atomic with respect to concurrent UnreadCount reads:
	// an observer sees the full pre- or post-transition count, never a
	// partial one.
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int, error)
}

// ReminderStore holds the admin reminders the digest is composed from.
type ReminderStore interface {
	Create(ctx context.Context, r *models.Reminder) error
	List(ctx context.Context) ([]models.Reminder, error)
	Get(ctx context.Context, id uuid.UUID) (models.Reminder, error)
	Update(ctx context.Context, r *models.Reminder) error
	Delete(ctx context.Context, id uuid.UUID) error
	Complete(ctx context.Context, id uuid.UUID) error
	// ListDue returns incomplete reminders whose date is at or before now.
	ListDue(ctx context.Context, now time.Time) ([]models.Reminder, error)
}

// MessageStore persists direct messages. Sending one is the canonical
// producer that triggers notification fan-out.
type MessageStore interface {
	Create(ctx context.Context, m *models.Message) error
	ListConversation(ctx context.Context, userID, otherID string, limit int) ([]models.Message, error)
}

// UserStore backs the identity provider: account creation and lookups.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.User, error)
}

// SendLogStore enforces the at-most-one-digest-per-day invariant.
type SendLogStore interface {
	// Get returns the send log row for a recipient, or ErrNotFound if the
	// recipient has never been sent a digest.
	Get(ctx context.Context, recipientEmail string) (models.ReminderSendLog, error)
	// ClaimDay atomically records day as the last sent date for the
	// recipient, but only if it is not already recorded. It reports
	// whether the caller won the claim. This is a single conditional
	// write, not a read-then-write pair: of any number of concurrent
	// callers for the same recipient and day, exactly one wins.
	ClaimDay(ctx context.Context, recipientEmail, day string, pendingCount int) (bool, error)
}
