package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "helpdesk-api", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, 5*time.Second, cfg.App.StoreTimeout())
	assert.Equal(t, 10*time.Second, cfg.Notification.SendTimeout())
	assert.True(t, cfg.Postgres.RunMigrations)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9999")
	t.Setenv("STORE_TIMEOUT_SECONDS", "2")
	t.Setenv("NOTIFY_LINK_BASE_URL", "https://help.example.org")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "15")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9999", cfg.App.Addr())
	assert.Equal(t, 2*time.Second, cfg.App.StoreTimeout())
	assert.Equal(t, "https://help.example.org", cfg.Notification.LinkBaseURL)
	assert.Equal(t, 15, cfg.Auth.AccessTokenTTLMinutes)
}

func TestInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	_, err := Load()
	assert.Error(t, err)
}

func TestTimeoutFloors(t *testing.T) {
	app := AppConfig{StoreTimeoutSeconds: -1}
	assert.Equal(t, 5*time.Second, app.StoreTimeout())

	notify := NotificationConfig{SendTimeoutSeconds: 0}
	assert.Equal(t, 10*time.Second, notify.SendTimeout())
}
