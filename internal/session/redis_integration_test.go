package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/worker-profile-wizard/internal/wizard"
)

func setupRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/15"
	}
	store, err := NewRedisStore(context.Background(), url, time.Minute)
	if err != nil {
		t.Skipf("Skipping integration test: redis unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRedisStore_Integration_RoundTrip(t *testing.T) {
	store := setupRedisStore(t)
	ctx := context.Background()

	s := New(uuid.New(), time.Now().UTC())
	state, err := wizard.NewStateAt(wizard.StepVisa, wizard.StepResidency, wizard.StepIdentity)
	require.NoError(t, err)
	state, err = wizard.Reduce(state, wizard.UpdateField{Field: "deltaScore", Value: "72.5"})
	require.NoError(t, err)
	state, err = wizard.Reduce(state, wizard.ToggleWorkDay{Day: "SAT"})
	require.NoError(t, err)
	s.State = state

	require.NoError(t, store.Put(ctx, s))
	t.Cleanup(func() { _ = store.Delete(ctx, s.ID) })

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, wizard.StepVisa, got.State.CurrentStep)
	assert.True(t, got.State.CompletedSteps.Has(wizard.StepIdentity))
	require.NotNil(t, got.State.FormData.DeltaScore)
	assert.InDelta(t, 72.5, *got.State.FormData.DeltaScore, 0.001)
	assert.Equal(t, []string{"SAT"}, got.State.FormData.DesiredWorkDays)
}

func TestRedisStore_Integration_NotFound(t *testing.T) {
	store := setupRedisStore(t)
	_, err := store.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewRedisStore_BadURL(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "not a url", time.Minute)
	assert.Error(t, err)
}
