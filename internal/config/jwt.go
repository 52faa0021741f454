package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	defaultTokenHours  = 24
	defaultTokenLeeway = 30 * time.Second
	minSecretLength    = 16
)

// JWTConfig describes how worker tokens are verified. Tokens are minted by
// the job board's account service with a shared HS256 secret; the wizard
// only mints its own for the token command and tests.
type JWTConfig struct {
	Secret string
	// Issuer and Audience are checked when non-empty.
	Issuer   string
	Audience string
	// Leeway absorbs clock skew between the account service and this one.
	Leeway          time.Duration
	ExpirationHours int
}

// NewJWTConfig reads the token settings from the environment:
//
//	JWT_SECRET            shared signing secret, required
//	JWT_ISSUER            expected iss claim
//	JWT_AUDIENCE          expected aud claim
//	JWT_LEEWAY            clock skew tolerance (default 30s)
//	JWT_EXPIRATION_HOURS  lifetime of locally minted tokens (default 24)
func NewJWTConfig() (*JWTConfig, error) {
	cfg := &JWTConfig{
		Secret:          os.Getenv("JWT_SECRET"),
		Issuer:          os.Getenv("JWT_ISSUER"),
		Audience:        os.Getenv("JWT_AUDIENCE"),
		Leeway:          defaultTokenLeeway,
		ExpirationHours: defaultTokenHours,
	}
	if cfg.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	if v := os.Getenv("JWT_EXPIRATION_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %w", err)
		}
		cfg.ExpirationHours = hours
	}
	if v := os.Getenv("JWT_LEEWAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_LEEWAY: %w", err)
		}
		cfg.Leeway = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the secret strength and the token lifetimes.
func (c *JWTConfig) Validate() error {
	if len(c.Secret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minSecretLength)
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	if c.Leeway < 0 {
		return fmt.Errorf("JWT_LEEWAY must not be negative, got: %s", c.Leeway)
	}
	return nil
}

// TokenLifetime is how long a locally minted token stays valid.
func (c *JWTConfig) TokenLifetime() time.Duration {
	return time.Duration(c.ExpirationHours) * time.Hour
}
