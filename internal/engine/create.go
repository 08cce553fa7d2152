package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/remindkit/reminderd/internal/models"
)

var (
	ErrEmptyTitle               = errors.New("reminder title is required")
	ErrRepeatUntilBeforeTrigger = errors.New("repeat_until must be after trigger_time")
)

// CreateParams describes a new reminder chain. RepeatInterval values other
// than 1 are reserved; 0 is normalized to 1.
type CreateParams struct {
	UserID         uuid.UUID
	Title          string
	Description    string
	TriggerTime    time.Time
	RepeatType     models.RepeatType
	RepeatInterval int
	RepeatUntil    *time.Time
	Tags           []string
}

// CreateReminder validates and persists a new reminder, then nudges the poll
// loop so a reminder due inside the current window fires without waiting out
// the tick. This is the only entry point for new chains.
func (e *Engine) CreateReminder(ctx context.Context, p CreateParams) (*models.Reminder, error) {
	if p.Title == "" {
		return nil, ErrEmptyTitle
	}
	rt, err := models.ParseRepeatType(string(p.RepeatType))
	if err != nil {
		return nil, err
	}
	if p.RepeatUntil != nil && !p.RepeatUntil.After(p.TriggerTime) {
		return nil, ErrRepeatUntilBeforeTrigger
	}

	interval := p.RepeatInterval
	if interval <= 0 {
		interval = 1
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	reminder := &models.Reminder{
		ID:             uuid.New(),
		UserID:         p.UserID,
		Title:          p.Title,
		Description:    p.Description,
		TriggerTime:    p.TriggerTime,
		RepeatType:     rt,
		RepeatInterval: interval,
		RepeatUntil:    p.RepeatUntil,
		Tags:           tags,
		IsActive:       true,
		CreatedAt:      e.now(),
	}

	if err := e.store.Save(ctx, reminder); err != nil {
		return nil, fmt.Errorf("save reminder: %w", err)
	}

	e.log.Info().
		Str("reminder_id", reminder.ID.String()).
		Str("user_id", p.UserID.String()).
		Time("trigger_time", p.TriggerTime).
		Str("repeat_type", string(rt)).
		Msg("reminder created")

	e.Notify()
	return reminder, nil
}
