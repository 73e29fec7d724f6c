package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := Initialize("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestInitializeRejectsBadURL(t *testing.T) {
	_, err := Initialize("://nope")
	assert.Error(t, err)
}

func TestLockIsExclusiveUntilReleased(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	token, ok, err := c.AcquireLock(ctx, "expiry", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, token)

	_, ok, err = c.AcquireLock(ctx, "expiry", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.ReleaseLock(ctx, "expiry", token))
	_, ok, err = c.AcquireLock(ctx, "expiry", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.AcquireLock(ctx, "expiry", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "lock should expire after its ttl")
}

func TestStaleReleaseKeepsNewHoldersLock(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	first, ok, err := c.AcquireLock(ctx, "expiry", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Minute)
	second, ok, err := c.AcquireLock(ctx, "expiry", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEqual(t, first, second)

	// The first run finishes late and releases with its old token.
	require.NoError(t, c.ReleaseLock(ctx, "expiry", first))
	held, err := mr.Get("lock:expiry")
	require.NoError(t, err)
	assert.Equal(t, second, held)

	_, ok, err = c.AcquireLock(ctx, "expiry", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.ReleaseLock(ctx, "expiry", second))
	assert.False(t, mr.Exists("lock:expiry"))
}

func TestBroadcastProgressRoundTrip(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	_, err := c.GetBroadcastProgress(ctx, "b1")
	assert.Error(t, err)

	p := &BroadcastProgress{ID: "b1", Total: 3, Sent: 2, Failed: 1, Done: true}
	require.NoError(t, c.SetBroadcastProgress(ctx, p, time.Hour))

	got, err := c.GetBroadcastProgress(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 2, got.Sent)
	assert.True(t, got.Done)
}

func TestTempDataMiss(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	var out []string
	assert.ErrorIs(t, c.GetTempData(ctx, "plans", &out), ErrCacheMiss)

	require.NoError(t, c.SetTempData(ctx, "plans", []string{"a", "b"}, time.Minute))
	require.NoError(t, c.GetTempData(ctx, "plans", &out))
	assert.Equal(t, []string{"a", "b"}, out)

	require.NoError(t, c.DeleteTempData(ctx, "plans"))
	assert.ErrorIs(t, c.GetTempData(ctx, "plans", &out), ErrCacheMiss)
}
