package issuer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewMemoryLimiter(3, time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	allow := func(key string) bool {
		ok, err := l.Allow(ctx, key)
		require.NoError(t, err)
		return ok
	}

	for i := 0; i < 3; i++ {
		assert.True(t, allow("10.0.0.1"))
	}
	assert.False(t, allow("10.0.0.1"))
	assert.True(t, allow("10.0.0.2"), "clients are limited independently")

	// one token back every window/limit
	now = now.Add(20 * time.Second)
	assert.True(t, allow("10.0.0.1"))
	assert.False(t, allow("10.0.0.1"))
}

func TestMemoryLimiter_EvictsIdle(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewMemoryLimiter(1, time.Minute)
	l.now = func() time.Time { return now }

	_, err := l.Allow(context.Background(), "a")
	require.NoError(t, err)
	require.Len(t, l.clients, 1)

	now = now.Add(5 * time.Minute)
	_, err = l.Allow(context.Background(), "b")
	require.NoError(t, err)
	assert.Len(t, l.clients, 1)
	assert.Contains(t, l.clients, "b")
}
