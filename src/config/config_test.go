package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("SECRET_KEY", "")
	for _, key := range []string{"PORT", "MAX_CONTENT_LENGTH", "SESSION_LIFETIME_HOURS", "AUTO_MIGRATE"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, int64(16*1024*1024), cfg.MaxContentLength)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionLifetime)
	assert.False(t, cfg.IsProduction())
	assert.True(t, cfg.AutoMigrate)
	assert.Len(t, cfg.SecretKey, 48, "development mode generates a throwaway key")
	assert.True(t, cfg.SecretGenerated())
	require.NoError(t, cfg.Validate())
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "Production")
	t.Setenv("SECRET_KEY", "")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Empty(t, cfg.SecretKey)
	assert.Error(t, cfg.Validate())
}

func TestLoad_ShortSecretRejected(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SECRET_KEY", "too-short")

	cfg := Load()

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 characters")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SECRET_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_LIFETIME_HOURS", "24")
	t.Setenv("AUTO_MIGRATE", "no")
	t.Setenv("ALLOWED_ORIGINS", "https://scan.example.com, ,https://ops.example.com")
	t.Setenv("LOGIN_RATE_LIMIT", "not-a-number")

	cfg := Load()

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.SessionLifetime)
	assert.False(t, cfg.AutoMigrate)
	assert.Equal(t, []string{"https://scan.example.com", "https://ops.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, 10, cfg.LoginRateLimit, "unparsable values fall back to the default")
	assert.False(t, cfg.SecretGenerated())
	require.NoError(t, cfg.Validate())
}

func TestValidate_PoolSizing(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_MAX_CONNS", "4")
	t.Setenv("DB_MIN_CONNS", "8")

	cfg := Load()
	assert.Equal(t, 4, cfg.DBMaxConns)
	assert.Error(t, cfg.Validate())

	cfg.DBMinConns = 2
	assert.NoError(t, cfg.Validate())
}
