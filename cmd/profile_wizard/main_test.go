package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/worker-profile-wizard/internal/config"
	"github.com/jonathan/worker-profile-wizard/internal/server"
)

// execute runs the root command in-process and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err := rootCmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestStepsCommand(t *testing.T) {
	out, err := execute(t, "steps", "--json=false")
	require.NoError(t, err)
	assert.Contains(t, out, "visa")
	assert.Contains(t, out, "visaType,visaSubType")

	out, err = execute(t, "steps", "--json")
	require.NoError(t, err)
	var rows []stepRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 8)
	assert.Equal(t, "preferences", rows[7].ID)
	assert.Contains(t, rows[7].Fields, "salaryType")
}

func TestTokenCommand(t *testing.T) {
	secret := "cli-test-secret-with-enough-length"
	t.Setenv("JWT_SECRET", secret)
	t.Setenv("JWT_ISSUER", "")
	userID := uuid.New()

	out, err := execute(t, "token", "--user", userID.String())
	require.NoError(t, err)

	var token string
	for _, line := range strings.Split(out, "\n") {
		if v, ok := strings.CutPrefix(line, "token: "); ok {
			token = v
		}
	}
	require.NotEmpty(t, token, out)

	claims, err := server.NewJWTService(&config.JWTConfig{Secret: secret, ExpirationHours: 1}).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)

	_, err = execute(t, "token", "--user", "worker-1")
	assert.ErrorContains(t, err, "invalid --user")
}

func TestTokenCommand_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := execute(t, "token", "--user", "")
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestMigrateCommand(t *testing.T) {
	out, err := execute(t, "migrate", "--print")
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE IF NOT EXISTS worker_profiles")

	t.Setenv("DATABASE_URL", "")
	_, err = execute(t, "migrate", "--print=false", "--config", "")
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestDemoCommand(t *testing.T) {
	out, err := execute(t, "demo", "--events")
	require.NoError(t, err)

	assert.Contains(t, out, "[1/8] Residency")
	assert.Contains(t, out, "[8/8] Preferences")
	assert.Contains(t, out, "Complete")
	assert.Contains(t, out, "progress=100%")
	assert.Contains(t, out, "Profile complete")
	assert.Contains(t, out, "Evaluation scored (0)")
	assert.Contains(t, out, "event profile.saved")
	assert.Contains(t, out, "saved at")
	assert.Contains(t, out, "E-9")
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"port": 9090, "log_level": "debug"}`), 0o644))
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("PORT", "")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL.Std())
	assert.True(t, filepath.IsAbs(cfg.ProfileSchema))

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
