package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remindkit/reminderd/internal/engine"
	"github.com/remindkit/reminderd/internal/models"
	"github.com/remindkit/reminderd/internal/repository"
)

// memStore backs both the engine and the management API in tests.
type memStore struct {
	mu        sync.Mutex
	reminders map[uuid.UUID]*models.Reminder
}

func newMemStore() *memStore {
	return &memStore{reminders: make(map[uuid.UUID]*models.Reminder)}
}

func (s *memStore) Save(_ context.Context, r *models.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.reminders[r.ID] = &cp
	return nil
}

func (s *memStore) Due(_ context.Context, _, _ time.Time) ([]*models.Reminder, error) {
	return nil, nil
}

func (s *memStore) CompletedRecurring(_ context.Context, _ time.Time) ([]*models.Reminder, error) {
	return nil, nil
}

func (s *memStore) ActiveInChain(_ context.Context, _ uuid.UUID, _ string, _ models.RepeatType) (bool, error) {
	return false, nil
}

func (s *memStore) Complete(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reminders[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.IsActive = false
	completedAt := at
	r.CompletedAt = &completedAt
	return nil
}

func (s *memStore) GetByID(_ context.Context, id uuid.UUID) (*models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reminders[id]
	if !ok {
		return nil, fmt.Errorf("get reminder %s: %w", id, repository.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (s *memStore) ListActive(_ context.Context, userID uuid.UUID) ([]*models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Reminder
	for _, r := range s.reminders {
		if r.UserID == userID && r.Pending() {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memStore) Deactivate(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.reminders[id]; ok && r.CompletedAt == nil {
		r.IsActive = false
	}
	return nil
}

type memUsers struct {
	users map[uuid.UUID]*models.User
}

func (u *memUsers) Get(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := u.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
	}
	return user, nil
}

func (u *memUsers) GetOrCreate(_ context.Context, phoneNumber, platform string, chatID int64) (*models.User, error) {
	for _, user := range u.users {
		if user.PhoneNumber == phoneNumber {
			return user, nil
		}
	}
	user := &models.User{ID: uuid.New(), PhoneNumber: phoneNumber, Platform: platform, ChatID: chatID}
	u.users[user.ID] = user
	return user, nil
}

type noopNotifier struct{}

func (noopNotifier) Send(_ context.Context, _ *models.User, _ string) error { return nil }

type fakePinger struct{ err error }

func (p fakePinger) Ping(_ context.Context) error { return p.err }

func newTestServer(t *testing.T) (*Server, *memStore, *memUsers) {
	t.Helper()
	store := newMemStore()
	users := &memUsers{users: make(map[uuid.UUID]*models.User)}
	eng := engine.New(store, users, noopNotifier{}, engine.Config{}, zerolog.Nop())
	srv := New(":0", eng, store, users, fakePinger{}, zerolog.Nop())
	return srv, store, users
}

func do(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w := do(srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthUnhealthy(t *testing.T) {
	store := newMemStore()
	users := &memUsers{users: make(map[uuid.UUID]*models.User)}
	eng := engine.New(store, users, noopNotifier{}, engine.Config{}, zerolog.Nop())
	srv := New(":0", eng, store, users, fakePinger{err: errors.New("connection refused")}, zerolog.Nop())

	w := do(srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStatus(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w := do(srv, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	var status engine.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.False(t, status.Running)
}

func TestCreateReminderEndpoint(t *testing.T) {
	srv, store, users := newTestServer(t)
	user, err := users.GetOrCreate(context.Background(), "+15550100", "telegram", 42)
	require.NoError(t, err)

	body := fmt.Sprintf(`{
		"user_id": %q,
		"title": "stretch",
		"trigger_time": "2030-06-01T08:00:00Z",
		"repeat_type": "daily",
		"tags": ["health"]
	}`, user.ID)

	w := do(srv, http.MethodPost, "/reminders", body)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Reminder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "stretch", created.Title)
	assert.True(t, created.IsActive)

	saved, err := store.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RepeatDaily, saved.RepeatType)
}

func TestCreateReminderRejectsInvalidRepeatType(t *testing.T) {
	srv, _, users := newTestServer(t)
	user, err := users.GetOrCreate(context.Background(), "+15550100", "telegram", 42)
	require.NoError(t, err)

	body := fmt.Sprintf(`{
		"user_id": %q,
		"title": "bad",
		"trigger_time": "2030-06-01T08:00:00Z",
		"repeat_type": "hourly"
	}`, user.ID)

	w := do(srv, http.MethodPost, "/reminders", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListReminders(t *testing.T) {
	srv, store, _ := newTestServer(t)
	userID := uuid.New()

	require.NoError(t, store.Save(context.Background(), &models.Reminder{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       "standup",
		TriggerTime: time.Now().Add(time.Hour),
		RepeatType:  models.RepeatDaily,
		IsActive:    true,
	}))

	w := do(srv, http.MethodGet, "/users/"+userID.String()+"/reminders", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Reminders []*models.Reminder `json:"reminders"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Reminders, 1)
	assert.Equal(t, "standup", resp.Reminders[0].Title)
}

func TestCancelReminder(t *testing.T) {
	srv, store, _ := newTestServer(t)

	r := &models.Reminder{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Title:       "standup",
		TriggerTime: time.Now().Add(time.Hour),
		RepeatType:  models.RepeatNone,
		IsActive:    true,
	}
	require.NoError(t, store.Save(context.Background(), r))

	w := do(srv, http.MethodDelete, "/reminders/"+r.ID.String(), "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	got, err := store.GetByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestCancelReminderNotFound(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w := do(srv, http.MethodDelete, "/reminders/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
