package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/remindkit/reminderd/internal/engine"
	"github.com/remindkit/reminderd/internal/models"
	"github.com/remindkit/reminderd/internal/repository"
)

// ReminderDirectory is the read/cancel surface of the reminder store used by
// the management API.
type ReminderDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Reminder, error)
	ListActive(ctx context.Context, userID uuid.UUID) ([]*models.Reminder, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type UserRegistry interface {
	GetOrCreate(ctx context.Context, phoneNumber, platform string, chatID int64) (*models.User, error)
}

type createReminderRequest struct {
	UserID      uuid.UUID  `json:"user_id" binding:"required"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TriggerTime time.Time  `json:"trigger_time" binding:"required"`
	RepeatType  string     `json:"repeat_type"`
	RepeatUntil *time.Time `json:"repeat_until"`
	Tags        []string   `json:"tags"`
}

func (s *Server) createReminder(c *gin.Context) {
	var body createReminderRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}

	reminder, err := s.engine.CreateReminder(c.Request.Context(), engine.CreateParams{
		UserID:      body.UserID,
		Title:       body.Title,
		Description: body.Description,
		TriggerTime: body.TriggerTime,
		RepeatType:  models.RepeatType(body.RepeatType),
		RepeatUntil: body.RepeatUntil,
		Tags:        body.Tags,
	})
	switch {
	case errors.Is(err, engine.ErrEmptyTitle),
		errors.Is(err, engine.ErrRepeatUntilBeforeTrigger),
		errors.Is(err, models.ErrInvalidRepeatType):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, reminder)
}

type registerUserRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Platform    string `json:"platform"`
	ChatID      int64  `json:"chat_id"`
}

func (s *Server) registerUser(c *gin.Context) {
	var body registerUserRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	if body.Platform == "" {
		body.Platform = "telegram"
	}

	user, err := s.users.GetOrCreate(c.Request.Context(), body.PhoneNumber, body.Platform, body.ChatID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (s *Server) listReminders(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	reminders, err := s.reminders.ListActive(c.Request.Context(), userID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if reminders == nil {
		reminders = []*models.Reminder{}
	}

	c.JSON(http.StatusOK, gin.H{"reminders": reminders})
}

func (s *Server) cancelReminder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid reminder id"})
		return
	}

	reminder, err := s.reminders.GetByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "reminder not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !reminder.Pending() {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "reminder already completed"})
		return
	}

	if err := s.reminders.Deactivate(c.Request.Context(), id); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
