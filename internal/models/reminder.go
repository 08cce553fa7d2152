package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RepeatType is the recurrence cadence of a reminder. It is a closed set;
// use ParseRepeatType to validate external input.
type RepeatType string

const (
	RepeatNone    RepeatType = "none"
	RepeatDaily   RepeatType = "daily"
	RepeatWeekly  RepeatType = "weekly"
	RepeatMonthly RepeatType = "monthly"
	RepeatYearly  RepeatType = "yearly"
)

var ErrInvalidRepeatType = errors.New("invalid repeat type")

// ParseRepeatType validates a repeat type string. An empty string is
// treated as "none".
func ParseRepeatType(s string) (RepeatType, error) {
	if s == "" {
		return RepeatNone, nil
	}
	switch rt := RepeatType(s); rt {
	case RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly:
		return rt, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRepeatType, s)
}

func (rt RepeatType) Valid() bool {
	_, err := ParseRepeatType(string(rt))
	return err == nil
}

// Recurring reports whether this repeat type produces successor occurrences.
func (rt RepeatType) Recurring() bool {
	switch rt {
	case RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly:
		return true
	}
	return false
}

type Reminder struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	TriggerTime    time.Time  `json:"trigger_time"`
	RepeatType     RepeatType `json:"repeat_type"`
	RepeatInterval int        `json:"repeat_interval"` // reserved, always 1 for now
	RepeatUntil    *time.Time `json:"repeat_until"`
	Tags           []string   `json:"tags"`
	IsActive       bool       `json:"is_active"`
	CompletedAt    *time.Time `json:"completed_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (r *Reminder) IsRecurring() bool {
	return r.RepeatType.Recurring()
}

// Pending reports whether the record can still fire.
func (r *Reminder) Pending() bool {
	return r.IsActive && r.CompletedAt == nil
}

// Successor returns the next occurrence in this reminder's chain, scheduled
// at next. The returned record is a fresh pending reminder carrying the same
// content and repeat rule.
func (r *Reminder) Successor(next time.Time, createdAt time.Time) *Reminder {
	tags := make([]string, len(r.Tags))
	copy(tags, r.Tags)
	return &Reminder{
		ID:             uuid.New(),
		UserID:         r.UserID,
		Title:          r.Title,
		Description:    r.Description,
		TriggerTime:    next,
		RepeatType:     r.RepeatType,
		RepeatInterval: r.RepeatInterval,
		RepeatUntil:    r.RepeatUntil,
		Tags:           tags,
		IsActive:       true,
		CreatedAt:      createdAt,
	}
}
