package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"teamhub-backend/internal/database"
	"teamhub-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PostgresReminderStore struct {
	db *database.Database
}

func NewPostgresReminderStore(db *database.Database) *PostgresReminderStore {
	return &PostgresReminderStore{db: db}
}

const reminderColumns = "id, title, notes, priority, reminder_date, is_completed, created_by, created_at, updated_at"

func scanReminder(row pgx.Row, r *models.Reminder) error {
	return row.Scan(
		&r.ID, &r.Title, &r.Notes, &r.Priority, &r.ReminderDate,
		&r.IsCompleted, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt,
	)
}

func (s *PostgresReminderStore) Create(ctx context.Context, r *models.Reminder) error {
	query := `
		INSERT INTO reminders (title, notes, priority, reminder_date, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_completed, created_at, updated_at
	`

	err := s.db.QueryRow(ctx, query, r.Title, r.Notes, r.Priority, r.ReminderDate, r.CreatedBy).Scan(
		&r.ID, &r.IsCompleted, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: create reminder: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresReminderStore) List(ctx context.Context) ([]models.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders ORDER BY reminder_date ASC`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list reminders: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	return collectReminders(rows)
}

func (s *PostgresReminderStore) Get(ctx context.Context, id uuid.UUID) (models.Reminder, error) {
	var r models.Reminder

	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE id = $1`
	err := scanReminder(s.db.QueryRow(ctx, query, id), &r)
	if errors.Is(err, pgx.ErrNoRows) {
		return r, ErrNotFound
	}
	if err != nil {
		return r, fmt.Errorf("%w: get reminder: %v", ErrUnavailable, err)
	}
	return r, nil
}

func (s *PostgresReminderStore) Update(ctx context.Context, r *models.Reminder) error {
	query := `
		UPDATE reminders
		SET title = $2, notes = $3, priority = $4, reminder_date = $5, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := s.db.Exec(ctx, query, r.ID, r.Title, r.Notes, r.Priority, r.ReminderDate)
	if err != nil {
		return fmt.Errorf("%w: update reminder: %v", ErrUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresReminderStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM reminders WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("%w: delete reminder: %v", ErrUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresReminderStore) Complete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE reminders SET is_completed = TRUE, updated_at = NOW() WHERE id = $1`

	tag, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%w: complete reminder: %v", ErrUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresReminderStore) ListDue(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM reminders
		WHERE is_completed = FALSE AND reminder_date <= $1
		ORDER BY priority, reminder_date ASC
	`

	rows, err := s.db.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("%w: list due reminders: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	return collectReminders(rows)
}

func collectReminders(rows pgx.Rows) ([]models.Reminder, error) {
	reminders := []models.Reminder{}
	for rows.Next() {
		var r models.Reminder
		if err := scanReminder(rows, &r); err != nil {
			return nil, fmt.Errorf("%w: scan reminder: %v", ErrUnavailable, err)
		}
		reminders = append(reminders, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate reminders: %v", ErrUnavailable, err)
	}
	return reminders, nil
}
