package store

import (
	"context"
	"fmt"

	"teamhub-backend/internal/database"
	"teamhub-backend/internal/models"
)

type PostgresMessageStore struct {
	db *database.Database
}

func NewPostgresMessageStore(db *database.Database) *PostgresMessageStore {
	return &PostgresMessageStore{db: db}
}

func (s *PostgresMessageStore) Create(ctx context.Context, m *models.Message) error {
	query := `
		INSERT INTO messages (sender_id, receiver_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, is_read, created_at
	`

	err := s.db.QueryRow(ctx, query, m.SenderID, m.ReceiverID, m.Content).Scan(
		&m.ID, &m.IsRead, &m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: create message: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresMessageStore) ListConversation(ctx context.Context, userID, otherID string, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT id, sender_id, receiver_id, content, is_read, created_at
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := s.db.Query(ctx, query, userID, otherID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list conversation: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan message: %v", ErrUnavailable, err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate messages: %v", ErrUnavailable, err)
	}

	return messages, nil
}
