package queue

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	queuePkg "github.com/jwebster45206/adventure-engine/pkg/queue"
)

func setupTestRedis(t *testing.T) (*RedisQueue, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewRedisQueue(rdb, logger), mr
}

func queues(t *testing.T) map[string]Queue {
	redisQueue, _ := setupTestRedis(t)
	return map[string]Queue{
		"memory": NewMemoryQueue(8),
		"redis":  redisQueue,
	}
}

func TestQueue_FIFO(t *testing.T) {
	for name, q := range queues(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sessionID := uuid.New()
			inputs := []string{"touch symbols", "go to the library", "read hill house"}

			for _, input := range inputs {
				if err := q.Enqueue(ctx, queuePkg.NewRequest(sessionID, input, "test")); err != nil {
					t.Fatalf("Failed to enqueue request: %v", err)
				}
			}

			depth, err := q.Depth(ctx)
			if err != nil {
				t.Fatalf("Failed to get depth: %v", err)
			}
			if depth != len(inputs) {
				t.Errorf("Expected depth %d, got %d", len(inputs), depth)
			}

			for _, want := range inputs {
				req, err := q.Dequeue(ctx, time.Second)
				if err != nil {
					t.Fatalf("Failed to dequeue request: %v", err)
				}
				if req == nil {
					t.Fatalf("Expected request %q, got nothing", want)
				}
				if req.Input != want || req.SessionID != sessionID || req.Source != "test" {
					t.Errorf("Unexpected request: %+v", req)
				}
				if req.RequestID == "" {
					t.Error("Expected a request ID")
				}
			}
		})
	}
}

func TestQueue_DequeueTimeout(t *testing.T) {
	for name, q := range queues(t) {
		t.Run(name, func(t *testing.T) {
			req, err := q.Dequeue(context.Background(), time.Second)
			if err != nil {
				t.Fatalf("Expected no error on timeout, got %v", err)
			}
			if req != nil {
				t.Errorf("Expected no request, got %+v", req)
			}
		})
	}
}

func TestMemoryQueue_Full(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx := context.Background()

	if err := q.Enqueue(ctx, queuePkg.NewRequest(uuid.New(), "look", "test")); err != nil {
		t.Fatalf("Failed to enqueue request: %v", err)
	}
	err := q.Enqueue(ctx, queuePkg.NewRequest(uuid.New(), "look", "test"))
	if !errors.Is(err, ErrQueueFull) {
		t.Errorf("Expected ErrQueueFull, got %v", err)
	}
}

func TestMemoryQueue_DequeueCancelled(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := q.Dequeue(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRedisQueue_BadPayload(t *testing.T) {
	q, mr := setupTestRedis(t)

	if _, err := mr.Push(requestsKey, "not json"); err != nil {
		t.Fatalf("Failed to push payload: %v", err)
	}

	if _, err := q.Dequeue(context.Background(), time.Second); err == nil {
		t.Error("Expected parse error for bad payload")
	}
	depth, err := q.Depth(context.Background())
	if err != nil {
		t.Fatalf("Failed to get depth: %v", err)
	}
	if depth != 0 {
		t.Errorf("Bad payload should be dropped, depth %d", depth)
	}
}

func TestRedisQueue_Down(t *testing.T) {
	q, mr := setupTestRedis(t)
	mr.Close()

	err := q.Enqueue(context.Background(), queuePkg.NewRequest(uuid.New(), "look", "test"))
	if err == nil {
		t.Error("Expected error when redis is down")
	}
}
