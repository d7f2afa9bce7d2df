package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	queuePkg "github.com/jwebster45206/adventure-engine/pkg/queue"
)

const requestsKey = "action-requests"

// RedisQueue is a Redis list shared by API replicas and worker processes
type RedisQueue struct {
	rdb    *redis.Client
	logger *slog.Logger
}

func NewRedisQueue(rdb *redis.Client, logger *slog.Logger) *RedisQueue {
	return &RedisQueue{rdb: rdb, logger: logger}
}

// Enqueue adds a request to the end of the queue
func (q *RedisQueue) Enqueue(ctx context.Context, req *queuePkg.Request) error {
	data, err := req.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize request: %w", err)
	}
	if err := q.rdb.RPush(ctx, requestsKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue request: %w", err)
	}
	return nil
}

// Dequeue blocks until a request is available or timeout passes
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*queuePkg.Request, error) {
	result, err := q.rdb.BLPop(ctx, timeout, requestsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Nothing arrived in time
		}
		return nil, fmt.Errorf("failed to dequeue request: %w", err)
	}

	// BLPop returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BLPop result: %v", result)
	}

	req, err := queuePkg.FromJSON([]byte(result[1]))
	if err != nil {
		q.logger.Error("Dropping unreadable queued request", "error", err)
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return req, nil
}

// Depth returns the number of queued requests
func (q *RedisQueue) Depth(ctx context.Context) (int, error) {
	count, err := q.rdb.LLen(ctx, requestsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get request queue depth: %w", err)
	}
	return int(count), nil
}
