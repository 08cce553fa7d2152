package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/remindkit/reminderd/internal/database"
	"github.com/remindkit/reminderd/internal/models"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, phone_number, platform, chat_id, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.PhoneNumber, &user.Platform, &user.ChatID, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetOrCreate(ctx context.Context, phoneNumber, platform string, chatID int64) (*models.User, error) {
	user := &models.User{}
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO users (id, phone_number, platform, chat_id) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (phone_number) DO UPDATE SET platform = EXCLUDED.platform, chat_id = EXCLUDED.chat_id
		 RETURNING id, phone_number, platform, chat_id, created_at`,
		uuid.New(), phoneNumber, platform, chatID,
	).Scan(&user.ID, &user.PhoneNumber, &user.Platform, &user.ChatID, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}
