package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	Platform    string    `json:"platform"`
	ChatID      int64     `json:"chat_id"` // telegram chat, 0 when unused
	CreatedAt   time.Time `json:"created_at"`
}
