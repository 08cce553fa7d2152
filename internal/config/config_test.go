package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URI", "postgres://localhost/reminders")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/reminders", cfg.DatabaseURI)
	assert.Equal(t, "telegram", cfg.Notifier)
	assert.Equal(t, time.Minute, cfg.PollInterval)
	assert.Equal(t, time.Hour, cfg.LookBack)
	assert.Equal(t, time.Hour, cfg.AuditInterval)
	assert.Equal(t, 32*24*time.Hour, cfg.AuditLookBack)
	assert.Equal(t, 30*time.Second, cfg.DispatchTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "30s")
	t.Setenv("LOOK_BACK", "2h")
	t.Setenv("NOTIFIER", "console")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, 2*time.Hour, cfg.LookBack)
	assert.Equal(t, "console", cfg.Notifier)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "every minute")

	_, err := Load()
	assert.Error(t, err)
}
