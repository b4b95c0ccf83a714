package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/domora/config"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "lock:booking:b1:checkout", checkoutLockKey("b1"))
	assert.Equal(t, "webhook:stripe:event:evt_1", webhookEventKey("evt_1"))
}

func TestNewRedisCache(t *testing.T) {
	c := NewRedisCache(config.RedisConfig{Addr: "localhost:6379"}, time.Hour)
	assert.NotNil(t, c)
	assert.Equal(t, time.Hour, c.dedupTTL)
	assert.NoError(t, c.Close())
}

func newMiniCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	c := NewRedisCache(config.RedisConfig{Addr: srv.Addr()}, time.Hour)
	t.Cleanup(func() { _ = c.Close() })
	return c, srv
}

func TestCheckoutLock(t *testing.T) {
	c, srv := newMiniCache(t)
	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))

	ok, err := c.AcquireCheckoutLock(ctx, "bk-1", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.AcquireCheckoutLock(ctx, "bk-1", 30*time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "second holder must be refused")

	require.NoError(t, c.ReleaseCheckoutLock(ctx, "bk-1"))
	ok, err = c.AcquireCheckoutLock(ctx, "bk-1", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	srv.FastForward(31 * time.Second)
	ok, err = c.AcquireCheckoutLock(ctx, "bk-1", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "lock expires with its ttl")
}

func TestWebhookDedupe(t *testing.T) {
	c, srv := newMiniCache(t)
	ctx := context.Background()

	fresh, err := c.MarkEventProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = c.MarkEventProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, fresh)
	assert.Equal(t, time.Hour, srv.TTL(webhookEventKey("evt_1")))

	require.NoError(t, c.ForgetEvent(ctx, "evt_1"))
	fresh, err = c.MarkEventProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, fresh)
}

func TestRedisUnavailable(t *testing.T) {
	c, srv := newMiniCache(t)
	srv.Close()

	_, err := c.AcquireCheckoutLock(context.Background(), "bk-1", time.Second)
	assert.Error(t, err)
}
