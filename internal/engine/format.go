package engine

import (
	"strings"
	"time"

	"github.com/remindkit/reminderd/internal/models"
)

const clockLayout = "03:04 PM"

// formatMessage renders the notification text for a reminder. The
// "originally scheduled for" line only appears when the send drifted to a
// different clock minute than the scheduled one.
func formatMessage(r *models.Reminder, now time.Time) string {
	var b strings.Builder

	b.WriteString("⏰ Reminder\n\n")
	b.WriteString("📝 " + r.Title)

	if r.Description != "" {
		b.WriteString("\n\n" + r.Description)
	}

	sentAt := now.Format(clockLayout)
	b.WriteString("\n\n🕐 Reminder sent at: " + sentAt)

	scheduledAt := r.TriggerTime.Format(clockLayout)
	if scheduledAt != sentAt {
		b.WriteString("\n🎯 Originally scheduled for: " + scheduledAt)
	}

	if len(r.Tags) > 0 {
		tags := make([]string, len(r.Tags))
		for i, tag := range r.Tags {
			tags[i] = "#" + tag
		}
		b.WriteString("\n\n🏷️ " + strings.Join(tags, " "))
	}

	return b.String()
}
