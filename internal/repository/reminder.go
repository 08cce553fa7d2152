package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/remindkit/reminderd/internal/database"
	"github.com/remindkit/reminderd/internal/models"
)

const reminderColumns = `id, user_id, title, description, trigger_time, repeat_type,
	repeat_interval, repeat_until, tags, is_active, completed_at, created_at`

type ReminderRepository struct {
	db *database.DB
}

func NewReminderRepository(db *database.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// Save inserts a new reminder record. Records are never updated in place
// except through Complete and Deactivate; superseded occurrences stay in the
// table as the chain's audit trail.
func (r *ReminderRepository) Save(ctx context.Context, reminder *models.Reminder) error {
	if reminder.ID == uuid.Nil {
		reminder.ID = uuid.New()
	}
	if reminder.Tags == nil {
		reminder.Tags = []string{}
	}
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO reminders (id, user_id, title, description, trigger_time, repeat_type,
			repeat_interval, repeat_until, tags, is_active, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING created_at`,
		reminder.ID, reminder.UserID, reminder.Title, reminder.Description, reminder.TriggerTime,
		reminder.RepeatType, reminder.RepeatInterval, reminder.RepeatUntil, reminder.Tags,
		reminder.IsActive, reminder.CompletedAt,
	).Scan(&reminder.CreatedAt)
}

// Due returns pending reminders whose trigger time falls inside [from, to],
// ordered by trigger time.
func (r *ReminderRepository) Due(ctx context.Context, from, to time.Time) ([]*models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reminderColumns+`
		 FROM reminders
		 WHERE is_active = TRUE AND completed_at IS NULL
		   AND trigger_time >= $1 AND trigger_time <= $2
		 ORDER BY trigger_time ASC`,
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReminders(rows)
}

// CompletedRecurring returns completed recurring reminders whose completion
// time is at or after since, newest first so the auditor continues a broken
// chain from its latest occurrence.
func (r *ReminderRepository) CompletedRecurring(ctx context.Context, since time.Time) ([]*models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reminderColumns+`
		 FROM reminders
		 WHERE is_active = FALSE AND repeat_type <> 'none'
		   AND completed_at IS NOT NULL AND completed_at >= $1
		 ORDER BY completed_at DESC`,
		since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReminders(rows)
}

// ActiveInChain reports whether the chain identified by (user, title,
// repeat type) has a pending record.
func (r *ReminderRepository) ActiveInChain(ctx context.Context, userID uuid.UUID, title string, rt models.RepeatType) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM reminders
			WHERE user_id = $1 AND title = $2 AND repeat_type = $3
			  AND is_active = TRUE AND completed_at IS NULL
		 )`,
		userID, title, rt,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Complete marks a reminder sent. The completed_at IS NULL guard keeps the
// transition one-way: a completed record can never re-enter the pending set.
func (r *ReminderRepository) Complete(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders SET is_active = FALSE, completed_at = $1
		 WHERE id = $2 AND completed_at IS NULL`,
		at, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("complete reminder %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *ReminderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Reminder, error) {
	reminder := &models.Reminder{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE id = $1`,
		id,
	).Scan(
		&reminder.ID, &reminder.UserID, &reminder.Title, &reminder.Description,
		&reminder.TriggerTime, &reminder.RepeatType, &reminder.RepeatInterval,
		&reminder.RepeatUntil, &reminder.Tags, &reminder.IsActive,
		&reminder.CompletedAt, &reminder.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get reminder %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return reminder, nil
}

// ListActive returns a user's pending reminders ordered by trigger time.
func (r *ReminderRepository) ListActive(ctx context.Context, userID uuid.UUID) ([]*models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reminderColumns+`
		 FROM reminders
		 WHERE user_id = $1 AND is_active = TRUE AND completed_at IS NULL
		 ORDER BY trigger_time ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReminders(rows)
}

// Deactivate cancels a pending reminder without completing it.
func (r *ReminderRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders SET is_active = FALSE WHERE id = $1 AND completed_at IS NULL`,
		id,
	)
	return err
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanReminders(rows rowScanner) ([]*models.Reminder, error) {
	var reminders []*models.Reminder
	for rows.Next() {
		reminder := &models.Reminder{}
		if err := rows.Scan(
			&reminder.ID, &reminder.UserID, &reminder.Title, &reminder.Description,
			&reminder.TriggerTime, &reminder.RepeatType, &reminder.RepeatInterval,
			&reminder.RepeatUntil, &reminder.Tags, &reminder.IsActive,
			&reminder.CompletedAt, &reminder.CreatedAt,
		); err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}
