package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisSlidingWindow enforces a rolling-window limit across processes by
// keeping execution timestamps in a Redis sorted set. Replicas of the same
// job kind share one key and therefore one budget.
type RedisSlidingWindow struct {
	client *redis.Client
	key    string
	max    int
	window time.Duration
}

// NewRedisSlidingWindow builds a Redis-backed rolling-window limiter keyed by
// name.
func NewRedisSlidingWindow(client *redis.Client, name string, max int, window time.Duration) *RedisSlidingWindow {
	return &RedisSlidingWindow{
		client: client,
		key:    "ratelimit:" + name,
		max:    max,
		window: window,
	}
}

func (r *RedisSlidingWindow) Wait(ctx context.Context) error {
	for {
		acquired, retryIn, err := r.tryAcquire(ctx)
		if err != nil {
			return err
		}
		if acquired {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryIn):
		}
	}
}

func (r *RedisSlidingWindow) tryAcquire(ctx context.Context) (bool, time.Duration, error) {
	now := time.Now()
	cutoff := now.Add(-r.window)

	pipe := r.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, r.key, "0", fmt.Sprintf("%d", cutoff.UnixNano()))
	countCmd := pipe.ZCard(ctx, r.key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("rate limit check failed: %w", err)
	}

	if countCmd.Val() >= int64(r.max) {
		// Wait roughly until the oldest entry rolls out of the window.
		oldest, err := r.client.ZRangeWithScores(ctx, r.key, 0, 0).Result()
		if err != nil || len(oldest) == 0 {
			return false, r.window / 10, nil
		}
		readyAt := time.Unix(0, int64(oldest[0].Score)).Add(r.window)
		retryIn := time.Until(readyAt)
		if retryIn < 50*time.Millisecond {
			retryIn = 50 * time.Millisecond
		}
		return false, retryIn, nil
	}

	err := r.client.ZAdd(ctx, r.key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: uuid.New().String(),
	}).Err()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit acquire failed: %w", err)
	}

	return true, 0, nil
}
