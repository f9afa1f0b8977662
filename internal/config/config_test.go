package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverMySQL, cfg.DBDriver)
	assert.Equal(t, 5, cfg.RateLimitMax)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.ArchiveRetention)
	assert.Equal(t, time.Hour, cfg.ExpiryInterval)
	assert.Equal(t, 8*time.Second, cfg.DBOpTimeout)
	assert.Equal(t, BackendMemory, cfg.RateLimitBackend)
	assert.Equal(t, BackendAsync, cfg.SinkBackend)
	assert.Equal(t, 5, cfg.CatalogSearchLimit)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_DSN", "file:test.db")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_BACKEND", "redis")
	t.Setenv("WORKER_CONCURRENCY", "500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "file:test.db", cfg.DBDSN)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, BackendRedis, cfg.RateLimitBackend)
	assert.Equal(t, 50, cfg.WorkerConcurrency)
}

func TestLoad_RejectsUnknownBackends(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	t.Setenv("SINK_BACKEND", "kafka")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER")
	assert.Contains(t, err.Error(), "SINK_BACKEND")
}

func TestLoad_RejectsDefaultSecretWithAdminLogin(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "a-real-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "a-real-secret", cfg.JWTSecret)
}

func TestLoad_ClientRateLimit(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.ClientRateLimitMax)

	t.Setenv("CLIENT_RATE_LIMIT_MAX", "-1")
	_, err = Load()
	assert.ErrorContains(t, err, "CLIENT_RATE_LIMIT_MAX")
}
