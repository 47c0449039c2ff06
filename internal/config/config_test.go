package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiredFields(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/intervue")
	t.Setenv("JWT_SECRET", "test-secret")
	for _, key := range []string{"PORT", "LOG_LEVEL", "JWT_EXPIRY_HOURS", "LLM_TIMEOUT_SECONDS", "SIGNUP_BONUS_MINUTES"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 72, cfg.JWTExpiryHours)
	assert.Equal(t, 30, cfg.LLMTimeoutSeconds)
	assert.Equal(t, 10, cfg.SignupBonusMinutes)
}

func TestLoad_OriginsParsing(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/intervue")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://app.example.com", "https://staging.example.com"}, cfg.AllowedOrigins)
}
