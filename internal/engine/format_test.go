package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/remindkit/reminderd/internal/models"
)

func TestFormatMessage(t *testing.T) {
	r := &models.Reminder{
		Title:       "Call the dentist",
		Description: "Ask about the appointment",
		TriggerTime: ts("2025-06-01T09:00:00Z"),
		Tags:        []string{"health", "calls"},
	}
	now := ts("2025-06-01T10:15:00Z")

	text := formatMessage(r, now)

	assert.Contains(t, text, "⏰ Reminder")
	assert.Contains(t, text, "📝 Call the dentist")
	assert.Contains(t, text, "Ask about the appointment")
	assert.Contains(t, text, "🕐 Reminder sent at: 10:15 AM")
	assert.Contains(t, text, "🎯 Originally scheduled for: 09:00 AM")
	assert.Contains(t, text, "🏷️ #health #calls")
}

func TestFormatMessageOnTime(t *testing.T) {
	r := &models.Reminder{
		Title:       "Standup",
		TriggerTime: ts("2025-06-01T09:00:10Z"),
	}
	now := ts("2025-06-01T09:00:40Z") // same clock minute

	text := formatMessage(r, now)

	assert.NotContains(t, text, "Originally scheduled for")
	assert.NotContains(t, text, "🏷️")
	assert.NotContains(t, text, "\n\n\n")
}

func TestFormatMessageNoDescription(t *testing.T) {
	r := &models.Reminder{
		Title:       "Standup",
		TriggerTime: ts("2025-06-01T09:00:00Z"),
	}

	text := formatMessage(r, ts("2025-06-01T09:00:00Z"))

	assert.Equal(t, "⏰ Reminder\n\n📝 Standup\n\n🕐 Reminder sent at: 09:00 AM", text)
}

func TestFormatClockIs12Hour(t *testing.T) {
	r := &models.Reminder{
		Title:       "Evening recap",
		TriggerTime: ts("2025-06-01T21:30:00Z"),
	}

	text := formatMessage(r, ts("2025-06-01T21:30:00Z"))

	assert.Contains(t, text, "09:30 PM")
}
