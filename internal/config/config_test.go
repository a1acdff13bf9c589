// internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

const testSecret = "0123456789abcdef0123456789abcdef"

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{"JWT_SECRET": testSecret}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.False(t, cfg.Debug)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, "HS256", cfg.Auth.JWTAlgorithm)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenTTL)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, 20, cfg.Pagination.DefaultPageSize)
	assert.Equal(t, 100, cfg.Pagination.MaxPageSize)
	assert.Equal(t, 100, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
}

func TestFromLookup_Overrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"JWT_SECRET":                  testSecret,
		"JWT_ALGORITHM":               "HS512",
		"ACCESS_TOKEN_EXPIRE_MINUTES": "5",
		"REFRESH_TOKEN_EXPIRE_DAYS":   "1",
		"ALLOWED_ORIGINS":             "https://a.example, https://b.example",
		"DEBUG":                       "true",
		"RATE_LIMIT_WINDOW":           "30s",
		"DB_AUTO_MIGRATE":             "1",
	}))
	require.NoError(t, err)

	assert.Equal(t, "HS512", cfg.Auth.JWTAlgorithm)
	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.Auth.RefreshTokenTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.Debug)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
}

func TestFromLookup_Invalid(t *testing.T) {
	t.Run("MissingSecret", func(t *testing.T) {
		_, err := FromLookup(lookupFrom(map[string]string{}))
		assert.ErrorContains(t, err, "JWT_SECRET is required")
	})

	t.Run("ShortSecretAllowedInDebug", func(t *testing.T) {
		_, err := FromLookup(lookupFrom(map[string]string{"JWT_SECRET": "short", "DEBUG": "true"}))
		assert.NoError(t, err)
	})

	t.Run("ShortSecret", func(t *testing.T) {
		_, err := FromLookup(lookupFrom(map[string]string{"JWT_SECRET": "short"}))
		assert.ErrorContains(t, err, "at least 32 bytes")
	})

	t.Run("BadNumber", func(t *testing.T) {
		_, err := FromLookup(lookupFrom(map[string]string{"JWT_SECRET": testSecret, "DB_PORT": "abc"}))
		assert.ErrorContains(t, err, "invalid DB_PORT")
	})

	t.Run("UnsupportedAlgorithm", func(t *testing.T) {
		_, err := FromLookup(lookupFrom(map[string]string{"JWT_SECRET": testSecret, "JWT_ALGORITHM": "RS256"}))
		assert.ErrorContains(t, err, "unsupported JWT_ALGORITHM")
	})

	t.Run("PageSizeBounds", func(t *testing.T) {
		_, err := FromLookup(lookupFrom(map[string]string{
			"JWT_SECRET":        testSecret,
			"DEFAULT_PAGE_SIZE": "50",
			"MAX_PAGE_SIZE":     "10",
		}))
		assert.ErrorContains(t, err, "DEFAULT_PAGE_SIZE <= MAX_PAGE_SIZE")
	})

	t.Run("BcryptCost", func(t *testing.T) {
		_, err := FromLookup(lookupFrom(map[string]string{"JWT_SECRET": testSecret, "BCRYPT_COST": "40"}))
		assert.ErrorContains(t, err, "BCRYPT_COST")
	})

	t.Run("NegativeRateLimit", func(t *testing.T) {
		_, err := FromLookup(lookupFrom(map[string]string{"JWT_SECRET": testSecret, "RATE_LIMIT_REQUESTS": "-1"}))
		assert.ErrorContains(t, err, "rate limit")
	})

	t.Run("RateLimitWithoutWindow", func(t *testing.T) {
		_, err := FromLookup(lookupFrom(map[string]string{"JWT_SECRET": testSecret, "RATE_LIMIT_WINDOW": "0s"}))
		assert.ErrorContains(t, err, "rate limit")
	})
}

func TestFromLookup_RateLimitDisabled(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"JWT_SECRET":          testSecret,
		"RATE_LIMIT_REQUESTS": "0",
		"RATE_LIMIT_WINDOW":   "0s",
	}))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.RateLimit.Requests)
}
