package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisQueue is a durable queue backed by a Redis list, with a companion
// sorted set for delayed (backoff) jobs. Jobs survive process restarts and
// are shared across replicas.
type RedisQueue struct {
	client *redis.Client
	key    string
	// delayedKey holds jobs scored by their ready-at time.
	delayedKey string
}

// NewRedisQueue builds a Redis-backed queue for one job kind.
func NewRedisQueue(client *redis.Client, kind Kind) *RedisQueue {
	key := "queue:" + string(kind)
	return &RedisQueue{
		client:     client,
		key:        key,
		delayedKey: key + ":delayed",
	}
}

func (q *RedisQueue) Push(ctx context.Context, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	if err := q.client.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("failed to push job %s: %w", job.ID, err)
	}

	return nil
}

func (q *RedisQueue) PushDelayed(ctx context.Context, job *Job, delay time.Duration) error {
	if delay <= 0 {
		return q.Push(ctx, job)
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	readyAt := time.Now().Add(delay)
	err = q.client.ZAdd(ctx, q.delayedKey, redis.Z{
		Score:  float64(readyAt.UnixNano()),
		Member: data,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", job.ID, err)
	}

	return nil
}

// Pop blocks until a job is available or the context is done. Due delayed
// jobs are promoted to the ready list before each blocking wait.
func (q *RedisQueue) Pop(ctx context.Context) (*Job, error) {
	for {
		if err := q.promoteDue(ctx); err != nil {
			return nil, err
		}

		res, err := q.client.BRPop(ctx, time.Second, q.key).Result()
		if errors.Is(err, redis.Nil) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			continue
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("failed to pop job: %w", err)
		}

		// BRPop returns [key, value].
		var job Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			return nil, fmt.Errorf("failed to unmarshal job: %w", err)
		}

		return &job, nil
	}
}

func (q *RedisQueue) promoteDue(ctx context.Context) error {
	now := fmt.Sprintf("%d", time.Now().UnixNano())

	due, err := q.client.ZRangeByScore(ctx, q.delayedKey, &redis.ZRangeBy{
		Min: "0",
		Max: now,
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to read delayed jobs: %w", err)
	}

	for _, member := range due {
		removed, err := q.client.ZRem(ctx, q.delayedKey, member).Result()
		if err != nil {
			return fmt.Errorf("failed to claim delayed job: %w", err)
		}
		// Another replica promoted it first.
		if removed == 0 {
			continue
		}
		if err := q.client.LPush(ctx, q.key, member).Err(); err != nil {
			return fmt.Errorf("failed to promote delayed job: %w", err)
		}
	}

	return nil
}

func (q *RedisQueue) Size(ctx context.Context) (int, error) {
	ready, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read queue size: %w", err)
	}
	delayed, err := q.client.ZCard(ctx, q.delayedKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read delayed size: %w", err)
	}
	return int(ready + delayed), nil
}

func (q *RedisQueue) Close() error {
	return nil
}
