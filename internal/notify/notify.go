// Package notify delivers formatted reminder text to users. The engine owns
// formatting; implementations own transport.
package notify

import (
	"context"

	"github.com/remindkit/reminderd/internal/models"
)

type Notifier interface {
	Send(ctx context.Context, user *models.User, text string) error
}
