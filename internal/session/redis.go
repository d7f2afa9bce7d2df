package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// RedisStore keeps sessions in Redis with a sliding TTL: every save
// pushes the expiry out again.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// Ensure RedisStore implements Store interface
var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to redisURL (redis://host:port/db).
func NewRedisStore(redisURL string, ttl time.Duration, logger *slog.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return &RedisStore{
		client: redis.NewClient(opts),
		logger: logger,
		ttl:    ttl,
	}, nil
}

// Client exposes the underlying client so the event broadcaster can share it.
func (r *RedisStore) Client() *redis.Client {
	return r.client
}

func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Save(ctx context.Context, rec *Record) error {
	if rec == nil {
		return errors.New("record cannot be nil")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		r.logger.Error("Failed to marshal session", "session_id", rec.ID, "error", err)
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := r.client.Set(ctx, keyPrefix+rec.ID.String(), data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save session", "session_id", rec.ID, "error", err)
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, id uuid.UUID) (*Record, error) {
	data, err := r.client.Get(ctx, keyPrefix+id.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		r.logger.Error("Failed to load session", "session_id", id, "error", err)
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		r.logger.Error("Failed to unmarshal session", "session_id", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &rec, nil
}

func (r *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.client.Del(ctx, keyPrefix+id.String()).Result()
	if err != nil {
		r.logger.Error("Failed to delete session", "session_id", id, "error", err)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RedisStore) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection pings until Redis answers or attempts run out.
func (r *RedisStore) WaitForConnection(ctx context.Context, attempts int, delay time.Duration) error {
	for i := range attempts {
		err := r.Ping(ctx)
		if err == nil {
			r.logger.Info("Redis connection established")
			return nil
		}
		r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("redis did not become available after %d attempts", attempts)
}
