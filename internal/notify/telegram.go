package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/remindkit/reminderd/internal/models"
)

type TelegramNotifier struct {
	api *tgbotapi.BotAPI
}

func NewTelegramNotifier(token string) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram API: %w", err)
	}
	return &TelegramNotifier{api: api}, nil
}

// Send delivers the text to the user's Telegram chat. The Bot API client
// has no context support of its own, so the call runs in a goroutine and
// the result races against ctx expiry; a timed-out send must not stall the
// poll loop.
func (n *TelegramNotifier) Send(ctx context.Context, user *models.User, text string) error {
	if user.ChatID == 0 {
		return fmt.Errorf("user %s has no telegram chat", user.ID)
	}

	msg := tgbotapi.NewMessage(user.ChatID, text)

	done := make(chan error, 1)
	go func() {
		_, err := n.api.Send(msg)
		done <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("telegram send to chat %d: %w", user.ChatID, err)
		}
		return nil
	}
}
