package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/remindkit/reminderd/internal/models"
)

// ConsoleNotifier writes notifications to the log instead of a messaging
// platform. Used for local development and the diagnose command.
type ConsoleNotifier struct {
	log zerolog.Logger
}

func NewConsoleNotifier(log zerolog.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{log: log}
}

func (n *ConsoleNotifier) Send(_ context.Context, user *models.User, text string) error {
	n.log.Info().
		Str("user_id", user.ID.String()).
		Str("recipient", user.PhoneNumber).
		Msg(text)
	return nil
}
