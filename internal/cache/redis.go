package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/juju/errors"
	"github.com/redis/go-redis/v9"

	"github.com/Domenick1991/domora/config"
)

// RedisCache holds short-lived coordination keys: per-booking checkout locks
// and the ids of webhook events already processed.
type RedisCache struct {
	client   *redis.Client
	dedupTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, dedupTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:   redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		dedupTTL: dedupTTL,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) AcquireCheckoutLock(ctx context.Context, bookingID string, ttl time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, checkoutLockKey(bookingID), "locked", ttl).Result()
	return ok, errors.Annotatef(err, "lock checkout for booking %q", bookingID)
}

func (c *RedisCache) ReleaseCheckoutLock(ctx context.Context, bookingID string) error {
	return errors.Trace(c.client.Del(ctx, checkoutLockKey(bookingID)).Err())
}

// MarkEventProcessed records eventID and reports whether it was new.
func (c *RedisCache) MarkEventProcessed(ctx context.Context, eventID string) (bool, error) {
	ok, err := c.client.SetNX(ctx, webhookEventKey(eventID), "1", c.dedupTTL).Result()
	return ok, errors.Annotatef(err, "record webhook event %q", eventID)
}

// ForgetEvent removes eventID so a redelivery is processed again.
func (c *RedisCache) ForgetEvent(ctx context.Context, eventID string) error {
	return errors.Trace(c.client.Del(ctx, webhookEventKey(eventID)).Err())
}

func checkoutLockKey(bookingID string) string {
	return fmt.Sprintf("lock:booking:%s:checkout", bookingID)
}

func webhookEventKey(eventID string) string {
	return fmt.Sprintf("webhook:stripe:event:%s", eventID)
}
