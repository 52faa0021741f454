package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "wizard-test-secret-key"

func TestNewJWTConfig_DefaultValues(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("JWT_EXPIRATION_HOURS", "")
	t.Setenv("JWT_ISSUER", "")
	t.Setenv("JWT_AUDIENCE", "")
	t.Setenv("JWT_LEEWAY", "")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, testSecret, cfg.Secret)
	assert.Equal(t, 24, cfg.ExpirationHours, "should use default expiration of 24 hours")
	assert.Equal(t, 24*time.Hour, cfg.TokenLifetime())
	assert.Equal(t, 30*time.Second, cfg.Leeway)
	assert.Empty(t, cfg.Issuer)
	assert.Empty(t, cfg.Audience)
}

func TestNewJWTConfig_CustomValues(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("JWT_EXPIRATION_HOURS", "168")
	t.Setenv("JWT_ISSUER", "accounts.jobboard.kr")
	t.Setenv("JWT_AUDIENCE", "profile-wizard")
	t.Setenv("JWT_LEEWAY", "2m")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, 168, cfg.ExpirationHours)
	assert.Equal(t, "accounts.jobboard.kr", cfg.Issuer)
	assert.Equal(t, "profile-wizard", cfg.Audience)
	assert.Equal(t, 2*time.Minute, cfg.Leeway)
}

func TestNewJWTConfig_Errors(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		expiration string
		leeway     string
		errMsg     string
	}{
		{name: "missing secret", secret: "", expiration: "24", errMsg: "JWT_SECRET"},
		{name: "short secret", secret: "short", expiration: "24", errMsg: "JWT_SECRET"},
		{name: "non-numeric expiration", secret: testSecret, expiration: "invalid", errMsg: "JWT_EXPIRATION_HOURS"},
		{name: "zero expiration", secret: testSecret, expiration: "0", errMsg: "JWT_EXPIRATION_HOURS"},
		{name: "negative expiration", secret: testSecret, expiration: "-1", errMsg: "JWT_EXPIRATION_HOURS"},
		{name: "float expiration", secret: testSecret, expiration: "12.5", errMsg: "JWT_EXPIRATION_HOURS"},
		{name: "unparseable leeway", secret: testSecret, expiration: "24", leeway: "soon", errMsg: "JWT_LEEWAY"},
		{name: "negative leeway", secret: testSecret, expiration: "24", leeway: "-5s", errMsg: "JWT_LEEWAY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", tt.secret)
			t.Setenv("JWT_EXPIRATION_HOURS", tt.expiration)
			t.Setenv("JWT_LEEWAY", tt.leeway)

			cfg, err := NewJWTConfig()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
