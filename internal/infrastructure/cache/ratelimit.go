package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateCounter is a fixed-window counter. The window starts at the first hit.
type RateCounter struct {
	client *redis.Client
}

func NewRateCounter(client *redis.Client) *RateCounter {
	return &RateCounter{client: client}
}

// Hit increments key and reports the count so far and the time left in the window.
func (r *RateCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return count, window, err
		}
		return count, window, nil
	}
	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		return count, window, err
	}
	return count, ttl, nil
}
