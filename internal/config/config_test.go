package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("FIREBASE_PROJECT_ID", "vibewise-test")
	t.Setenv("FIREBASE_API_KEY", "api-key")
	t.Setenv("GOOGLE_OAUTH_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_OAUTH_CLIENT_SECRET", "client-secret")
	t.Setenv("GOOGLE_OAUTH_REDIRECT_URL", "http://localhost:8080/api/v1/auth/google/callback")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "debug", cfg.GinMode)
	assert.Equal(t, DeliveryFirebase, cfg.MagicLinkDelivery)
	assert.Equal(t, 24*time.Hour, cfg.MagicLinkEmailTTL)
	assert.Equal(t, 5, cfg.MagicLinkRatePerMinute)
	assert.Equal(t, "vibewise.auth.events", cfg.AuthEventsQueue)
	assert.False(t, cfg.SeedTransactional)
	assert.False(t, cfg.IsRelease())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("GIN_MODE", "release")
	t.Setenv("SEED_TRANSACTIONAL", "true")
	t.Setenv("MAGIC_LINK_EMAIL_TTL", "30m")
	t.Setenv("REDIS_DB", "3")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsRelease())
	assert.True(t, cfg.SeedTransactional)
	assert.Equal(t, 30*time.Minute, cfg.MagicLinkEmailTTL)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestLoadConfig_MissingProjectID(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("FIREBASE_PROJECT_ID", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FIREBASE_PROJECT_ID")
}

func TestLoadConfig_SMTPDeliveryRequiresCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MAGIC_LINK_DELIVERY", DeliverySMTP)

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP_HOST")

	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USER", "user")
	t.Setenv("SMTP_PASS", "pass")
	t.Setenv("SMTP_SENDER", "noreply@example.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DeliverySMTP, cfg.MagicLinkDelivery)
}

func TestLoadConfig_UnknownDelivery(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MAGIC_LINK_DELIVERY", "pigeon")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAGIC_LINK_DELIVERY")
}

func TestLoadConfig_FromFile(t *testing.T) {
	setRequiredEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("PORT: \"7070\"\nCLIENT_URL: http://localhost:5173\n"), 0o600))
	t.Setenv("PATH_CONFIG", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "http://localhost:5173", cfg.ClientURL)
}

func TestEncryptionKeyBytes(t *testing.T) {
	cfg := &Config{}
	key, err := cfg.EncryptionKeyBytes()
	require.NoError(t, err)
	assert.Nil(t, key)

	cfg.EncryptionKey = base64.StdEncoding.EncodeToString([]byte("short"))
	_, err = cfg.EncryptionKeyBytes()
	assert.Error(t, err)

	raw := make([]byte, 32)
	cfg.EncryptionKey = base64.StdEncoding.EncodeToString(raw)
	key, err = cfg.EncryptionKeyBytes()
	require.NoError(t, err)
	assert.Len(t, key, 32)
}
