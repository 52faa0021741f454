package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(t *testing.T, cfg *Config) (*Limiter, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	l := NewLimiter(cfg)
	l.now = clock.Now
	t.Cleanup(l.Stop)
	return l, clock
}

func TestTokenBucket_TakeAndRefill(t *testing.T) {
	clock := newFakeClock()
	bucket := newTokenBucket(10, 1.0, clock.Now)

	for i := 0; i < 10; i++ {
		allowed, remaining, _ := bucket.take()
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 9-i, remaining)
	}

	allowed, _, reset := bucket.take()
	assert.False(t, allowed)
	assert.Equal(t, clock.Now().Add(10*time.Second), reset)

	clock.Advance(1100 * time.Millisecond)
	allowed, _, _ = bucket.take()
	assert.True(t, allowed)
	allowed, _, _ = bucket.take()
	assert.False(t, allowed)
}

func TestLimiter_DefaultLimit(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})

	for i := 0; i < 10; i++ {
		allowed, info := l.Allow("127.0.0.1", "/wizard/steps", "GET")
		require.True(t, allowed)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := l.Allow("127.0.0.1", "/wizard/steps", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Positive(t, info.RetryAfter)
}

func TestLimiter_WhitelistBlacklistDisabled(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"10.0.0.1": true},
		Blacklist:     map[string]bool{"10.0.0.66": true},
	})

	for i := 0; i < 50; i++ {
		allowed, info := l.Allow("10.0.0.1", "/wizard/steps", "GET")
		require.True(t, allowed)
		assert.Equal(t, 0, info.Limit)
	}

	allowed, _ := l.Allow("10.0.0.66", "/health", "GET")
	assert.False(t, allowed)

	off, _ := newTestLimiter(t, &Config{Enabled: false})
	for i := 0; i < 50; i++ {
		allowed, _ := off.Allow("127.0.0.1", "/wizard/sessions", "POST")
		require.True(t, allowed)
	}
}

func TestLimiter_RoutePatternSharesBucket(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/wizard/sessions/{id}/save", Method: "POST", Limit: 3, Window: time.Hour, Burst: 3},
		},
	})

	for i := 0; i < 3; i++ {
		path := fmt.Sprintf("/wizard/sessions/session-%d/save", i)
		allowed, info := l.Allow("127.0.0.1", path, "POST")
		require.True(t, allowed)
		assert.Equal(t, 3, info.Limit)
	}

	allowed, _ := l.Allow("127.0.0.1", "/wizard/sessions/another/save", "POST")
	assert.False(t, allowed, "saves across sessions share one budget")

	allowed, _ = l.Allow("127.0.0.2", "/wizard/sessions/another/save", "POST")
	assert.True(t, allowed, "other clients keep their own budget")

	allowed, info := l.Allow("127.0.0.1", "/wizard/sessions/another/next", "POST")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestLimiter_Burst(t *testing.T) {
	l, clock := newTestLimiter(t, &Config{
		Enabled: true,
		EndpointConfigs: []EndpointConfig{
			{Path: "/wizard/sessions", Method: "POST", Limit: 60, Window: time.Minute, Burst: 5},
		},
	})

	for i := 0; i < 5; i++ {
		allowed, _ := l.Allow("c", "/wizard/sessions", "POST")
		require.True(t, allowed)
	}
	allowed, _ := l.Allow("c", "/wizard/sessions", "POST")
	assert.False(t, allowed)

	clock.Advance(time.Second)
	allowed, _ = l.Allow("c", "/wizard/sessions", "POST")
	assert.True(t, allowed)
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Minute})

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("127.0.0.1", "/wizard/steps", "GET"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, allowed)
}

func TestLimiter_Sweep(t *testing.T) {
	l, clock := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
		IdleTimeout:   time.Minute,
	})

	for i := 0; i < 10; i++ {
		l.Allow(fmt.Sprintf("127.0.0.%d", i), "/wizard/steps", "GET")
	}
	require.Equal(t, 10, l.Len())

	clock.Advance(30 * time.Second)
	for i := 0; i < 5; i++ {
		l.Allow(fmt.Sprintf("127.0.0.%d", i), "/wizard/steps", "GET")
	}

	clock.Advance(45 * time.Second)
	l.sweep()
	assert.Equal(t, 5, l.Len())
}

func TestLimiter_StopTwice(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Second, CleanupInterval: time.Millisecond})
	l.Stop()
	l.Stop()
}

func TestNewLimiter_NilConfig(t *testing.T) {
	l, _ := newTestLimiter(t, nil)

	allowed, info := l.Allow("127.0.0.1", "/wizard/steps", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	tests := []struct {
		name     string
		path     string
		method   string
		wantPath string
		wantNil  bool
	}{
		{name: "health unlimited", path: "/health", method: "GET", wantPath: "/health"},
		{name: "metrics unlimited", path: "/metrics", method: "GET", wantPath: "/metrics"},
		{name: "create session", path: "/wizard/sessions", method: "POST", wantPath: "/wizard/sessions"},
		{name: "save", path: "/wizard/sessions/abc/save", method: "POST", wantPath: "/wizard/sessions/{id}/save"},
		{name: "upload", path: "/wizard/sessions/abc/uploads/arc", method: "POST", wantPath: "/wizard/sessions/{id}/uploads/{kind}"},
		{name: "fields", path: "/wizard/sessions/abc/fields", method: "PATCH", wantPath: "/wizard/sessions/{id}/fields"},
		{name: "prev falls to prefix", path: "/wizard/sessions/abc/prev", method: "POST", wantPath: "/wizard/sessions/"},
		{name: "delete experience", path: "/wizard/sessions/abc/experiences/x", method: "DELETE", wantPath: "/wizard/sessions/"},
		{name: "reads use default", path: "/wizard/sessions/abc", method: "GET", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantPath, got.Path)
		})
	}

	unlimited := MatchEndpoint("/health", "GET", nil)
	assert.Equal(t, 0, unlimited.Limit)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2")

	cfg := LoadConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 42, cfg.DefaultLimit)
	assert.True(t, cfg.Whitelist["10.0.0.2"])
	assert.NotEmpty(t, cfg.EndpointConfigs)

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	assert.False(t, LoadConfig().Enabled)
}

func TestLoadConfig_NonPositiveWindow(t *testing.T) {
	for _, v := range []string{"0s", "-1m"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", v)
			t.Setenv("RATE_LIMIT_CLEANUP_INTERVAL", v)
			cfg := LoadConfig()
			assert.Equal(t, time.Minute, cfg.DefaultWindow)
			assert.Equal(t, 5*time.Minute, cfg.CleanupInterval)
		})
	}
}

func TestNewLimiter_ZeroWindowStillLimits(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled:      true,
		DefaultLimit: 2,
		EndpointConfigs: []EndpointConfig{
			{Path: "/wizard/sessions/{id}/save", Method: "POST", Limit: 1},
		},
	})

	for i := 0; i < 2; i++ {
		allowed, _ := l.Allow("10.0.0.9", "/wizard/steps", "GET")
		require.True(t, allowed, "request %d", i+1)
	}
	allowed, info := l.Allow("10.0.0.9", "/wizard/steps", "GET")
	assert.False(t, allowed)
	assert.Positive(t, info.RetryAfter)

	allowed, _ = l.Allow("10.0.0.9", "/wizard/sessions/abc/save", "POST")
	assert.True(t, allowed)
	allowed, _ = l.Allow("10.0.0.9", "/wizard/sessions/abc/save", "POST")
	assert.False(t, allowed)
}
