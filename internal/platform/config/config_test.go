package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("SESSION_MAX_AGE", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":3001", cfg.Server.Addr)
	assert.Equal(t, "http://localhost:8181/api", cfg.Backend.BaseURL)
	assert.Equal(t, "http://localhost:8181/health/json", cfg.Backend.HealthURL)
	assert.Equal(t, 30*time.Minute, cfg.Session.MaxAge)
	assert.Equal(t, 30*time.Second, cfg.Backend.RequestTimeout)
	assert.False(t, cfg.Session.SecureCookie)
	assert.Empty(t, cfg.Audit.Brokers)
}

func TestFromEnvProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("SESSION_SECRET", "")

	_, err := FromEnv()
	require.Error(t, err)
}

func TestFromEnvRejectsShortSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("SESSION_SECRET", "too-short")

	_, err := FromEnv()
	require.Error(t, err)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("API_BASE_URL", "https://api.example.com/api/")
	t.Setenv("SESSION_MAX_AGE", "600")
	t.Setenv("AUDIT_KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/api", cfg.Backend.BaseURL)
	assert.Equal(t, "https://api.example.com/health/json", cfg.Backend.HealthURL)
	assert.Equal(t, 10*time.Minute, cfg.Session.MaxAge)
	assert.True(t, cfg.Session.SecureCookie)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Audit.Brokers)
}

func TestHealthURLFromBase(t *testing.T) {
	assert.Equal(t, "http://h/health/json", HealthURLFromBase("http://h/api"))
	assert.Equal(t, "http://h/health/json", HealthURLFromBase("http://h/api/"))
	assert.Equal(t, "http://h/v2/health/json", HealthURLFromBase("http://h/v2"))
}
