package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllow_Burst(t *testing.T) {
	tests := []struct {
		name    string
		burst   int
		calls   int
		allowed int
	}{
		{"within burst", 3, 3, 3},
		{"beyond burst", 2, 5, 2},
		{"single token", 1, 4, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(1, tt.burst)
			t.Cleanup(rl.Stop)

			allowed := 0
			for range tt.calls {
				if rl.Allow("203.0.113.7") {
					allowed++
				}
			}
			assert.Equal(t, tt.allowed, allowed)
		})
	}
}

func TestAllow_ClientsHaveSeparateBuckets(t *testing.T) {
	rl := New(1, 1)
	t.Cleanup(rl.Stop)

	require.True(t, rl.Allow("198.51.100.1"))
	assert.False(t, rl.Allow("198.51.100.1"))
	assert.True(t, rl.Allow("198.51.100.2"), "a second client must not share the first one's bucket")
	assert.Equal(t, 2, rl.Len())
}

func TestWait_StopsOnContextDeadline(t *testing.T) {
	rl := New(0.1, 1)
	t.Cleanup(rl.Stop)

	require.True(t, rl.Allow("client"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, rl.Wait(ctx, "client"))
}

func TestWait_ImmediateWithTokens(t *testing.T) {
	rl := New(1, 2)
	t.Cleanup(rl.Stop)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, rl.Wait(ctx, "client"))
}

func TestPerMinute_RetryAfter(t *testing.T) {
	rl := PerMinute(60, 2)
	t.Cleanup(rl.Stop)

	assert.Zero(t, rl.RetryAfter("login"), "untouched key has no wait")

	require.True(t, rl.Allow("login"))
	require.True(t, rl.Allow("login"))
	require.False(t, rl.Allow("login"))

	retry := rl.RetryAfter("login")
	assert.Greater(t, retry, time.Duration(0))
	assert.LessOrEqual(t, retry, time.Second)
}

func TestRetryAfter_DoesNotConsume(t *testing.T) {
	rl := PerMinute(60, 1)
	t.Cleanup(rl.Stop)

	for i := 0; i < 3; i++ {
		assert.Zero(t, rl.RetryAfter("register"))
	}
	assert.True(t, rl.Allow("register"), "asking for the wait must leave the token")
	assert.False(t, rl.Allow("register"))
}

func TestSweep_EvictsIdleKeys(t *testing.T) {
	rl := newLimiter(1, 1, time.Minute, time.Hour)
	t.Cleanup(rl.Stop)

	rl.Allow("idle")
	rl.Allow("active")
	require.Equal(t, 2, rl.Len())

	rl.mu.Lock()
	rl.entries["idle"].lastSeen = time.Now().Add(-2 * time.Minute)
	rl.mu.Unlock()

	rl.sweep(time.Now())
	assert.Equal(t, 1, rl.Len())
	assert.True(t, rl.Allow("idle"), "an evicted key starts with a full bucket")
}

func TestStop_Idempotent(t *testing.T) {
	rl := New(1, 1)
	rl.Stop()
	assert.NoError(t, rl.Shutdown())
}
