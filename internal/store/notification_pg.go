package store

import (
	"context"
	"fmt"

	"teamhub-backend/internal/database"
	"teamhub-backend/internal/models"

	"github.com/google/uuid"
)

type PostgresNotificationStore struct {
	db *database.Database
}

func NewPostgresNotificationStore(db *database.Database) *PostgresNotificationStore {
	return &PostgresNotificationStore{db: db}
}

func (s *PostgresNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (recipient_id, project_id, category, title, body, link)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, is_read, created_at
	`

	err := s.db.QueryRow(ctx, query, n.RecipientID, n.ProjectID, n.Category, n.Title, n.Body, n.Link).Scan(
		&n.ID, &n.IsRead, &n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: create notification: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresNotificationStore) ListForRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
		SELECT id, recipient_id, project_id, category, title, body, link, is_read, read_at, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, recipientID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list notifications: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(
			&n.ID, &n.RecipientID, &n.ProjectID, &n.Category, &n.Title, &n.Body,
			&n.Link, &n.IsRead, &n.ReadAt, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scan notification: %v", ErrUnavailable, err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate notifications: %v", ErrUnavailable, err)
	}

	return notifications, nil
}

// UnreadCount is a COUNT query, not list-then-filter; it is hit on every
// client poll tick.
func (s *PostgresNotificationStore) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(
		ctx,
		"SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND is_read = FALSE",
		recipientID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: unread count: %v", ErrUnavailable, err)
	}
	return count, nil
}

func (s *PostgresNotificationStore) MarkRead(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	// The recipient_id predicate keeps one user from touching another
	// user's notifications; already-read rows fall out of the match.
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = NOW()
		WHERE recipient_id = $1 AND id = ANY($2) AND is_read = FALSE
	`

	tag, err := s.db.Exec(ctx, query, recipientID, ids)
	if err != nil {
		return 0, fmt.Errorf("%w: mark read: %v", ErrUnavailable, err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresNotificationStore) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int, error) {
	// A single UPDATE statement; concurrent unread-count reads see the
	// state before or after it commits, never in between.
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = NOW()
		WHERE recipient_id = $1 AND is_read = FALSE
	`

	tag, err := s.db.Exec(ctx, query, recipientID)
	if err != nil {
		return 0, fmt.Errorf("%w: mark all read: %v", ErrUnavailable, err)
	}
	return int(tag.RowsAffected()), nil
}
