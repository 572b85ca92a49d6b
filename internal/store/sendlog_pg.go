package store

import (
	"context"
	"errors"
	"fmt"

	"teamhub-backend/internal/database"
	"teamhub-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

type PostgresSendLogStore struct {
	db *database.Database
}

func NewPostgresSendLogStore(db *database.Database) *PostgresSendLogStore {
	return &PostgresSendLogStore{db: db}
}

func (s *PostgresSendLogStore) Get(ctx context.Context, recipientEmail string) (models.ReminderSendLog, error) {
	var entry models.ReminderSendLog

	query := `
		SELECT recipient_email, to_char(last_sent_date, 'YYYY-MM-DD'), pending_count, updated_at
		FROM reminder_send_log
		WHERE recipient_email = $1
	`

	err := s.db.QueryRow(ctx, query, recipientEmail).Scan(
		&entry.RecipientEmail, &entry.LastSentDate, &entry.PendingCount, &entry.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return entry, ErrNotFound
	}
	if err != nil {
		return entry, fmt.Errorf("%w: get send log: %v", ErrUnavailable, err)
	}
	return entry, nil
}

// ClaimDay is the concurrency guard for digest dispatch. The WHERE clause
// on the upsert makes the whole check-and-claim a single atomic statement:
// a row is written only when last_sent_date differs from the claimed day,
// so of two simultaneous callers exactly one sees a row affected.
func (s *PostgresSendLogStore) ClaimDay(ctx context.Context, recipientEmail, day string, pendingCount int) (bool, error) {
	query := `
		INSERT INTO reminder_send_log (recipient_email, last_sent_date, pending_count, updated_at)
		VALUES ($1, $2::date, $3, NOW())
		ON CONFLICT (recipient_email) DO UPDATE
		SET last_sent_date = EXCLUDED.last_sent_date,
		    pending_count = EXCLUDED.pending_count,
		    updated_at = NOW()
		WHERE reminder_send_log.last_sent_date IS DISTINCT FROM EXCLUDED.last_sent_date
	`

	tag, err := s.db.Exec(ctx, query, recipientEmail, day, pendingCount)
	if err != nil {
		return false, fmt.Errorf("%w: claim day: %v", ErrUnavailable, err)
	}
	return tag.RowsAffected() > 0, nil
}
