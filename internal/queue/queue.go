// Package queue holds the action queue that feeds queue workers.
package queue

import (
	"context"
	"errors"
	"time"

	queuePkg "github.com/jwebster45206/adventure-engine/pkg/queue"
)

// ErrQueueFull is returned by a bounded queue that cannot take more work
var ErrQueueFull = errors.New("action queue is full")

// Queue is a FIFO of queued actions shared by the API and its workers
type Queue interface {
	Enqueue(ctx context.Context, req *queuePkg.Request) error
	// Dequeue waits up to timeout for a request. It returns nil, nil when
	// nothing arrived in time.
	Dequeue(ctx context.Context, timeout time.Duration) (*queuePkg.Request, error)
	Depth(ctx context.Context) (int, error)
}
