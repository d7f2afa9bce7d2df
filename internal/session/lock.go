package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker serializes actions on a session across processes. The returned
// func releases the lock.
type Locker interface {
	Lock(ctx context.Context, id uuid.UUID) (func(), error)
}

const (
	lockTTL       = 30 * time.Second
	lockRetryWait = 25 * time.Millisecond
)

// releaseScript deletes the lock only if we still own it
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// RedisLocker holds a SETNX lock per session so an API replica and a queue
// worker never play the same session at once.
type RedisLocker struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client, logger *slog.Logger) *RedisLocker {
	return &RedisLocker{client: client, logger: logger, ttl: lockTTL}
}

func lockKey(id uuid.UUID) string {
	return "session-lock:" + id.String()
}

// Lock polls until the lock is free or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, id uuid.UUID) (func(), error) {
	key := lockKey(id)
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire session lock: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("timed out waiting for session lock: %w", ctx.Err())
		case <-time.After(lockRetryWait):
		}
	}

	return func() {
		// Release even if the caller's context is already cancelled
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Error("Failed to release session lock", "error", err, "session_id", id.String())
		}
	}, nil
}
