package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"visitreg/internal/notify/models"
)

const defaultPollTimeout = 5 * time.Second

// RedisQueue keeps jobs as JSON in a Redis list so they survive restarts
// and can be drained by several server processes.
type RedisQueue struct {
	client      redis.Cmdable
	key         string
	pollTimeout time.Duration
}

type RedisOption func(*RedisQueue)

// WithPollTimeout bounds each BRPOP so Dequeue notices cancellation.
func WithPollTimeout(d time.Duration) RedisOption {
	return func(q *RedisQueue) {
		if d > 0 {
			q.pollTimeout = d
		}
	}
}

func NewRedisQueue(client redis.Cmdable, key string, opts ...RedisOption) *RedisQueue {
	q := &RedisQueue{client: client, key: key, pollTimeout: defaultPollTimeout}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *RedisQueue) Enqueue(ctx context.Context, job *models.Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("push job: %w", err)
	}
	return nil
}

// Dequeue pops the oldest job, blocking until one arrives or ctx is done.
// Entries that fail to decode are dropped with an error so the caller can
// log them; the next call continues with the following entry.
func (q *RedisQueue) Dequeue(ctx context.Context) (*models.Job, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := q.client.BRPop(ctx, q.pollTimeout, q.key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("pop job: %w", err)
		}
		// BRPOP replies with [key, value].
		var job models.Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			return nil, fmt.Errorf("decode job: %w", err)
		}
		return &job, nil
	}
}

func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}
