package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("TURSO_DATABASE_URL", "libsql://wallet-demo.turso.io")
	t.Setenv("TURSO_AUTH_TOKEN", "token-123")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("IS_PROD", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := FromEnv()

	assert.Equal(t, "libsql://wallet-demo.turso.io", cfg.DatabaseURL)
	assert.Equal(t, "token-123", cfg.AuthToken)
	assert.Equal(t, "9090", cfg.AppPort)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.True(t, cfg.IsProd)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"TURSO_DATABASE_URL", "TURSO_AUTH_TOKEN", "APP_PORT", "REDIS_ADDR", "REDIS_DB", "IS_PROD", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()

	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.False(t, cfg.IsProd)
}
