package queue

import (
	"context"
	"time"

	queuePkg "github.com/jwebster45206/adventure-engine/pkg/queue"
)

// MemoryQueue is a bounded in-process queue for single-process deployments
type MemoryQueue struct {
	ch chan *queuePkg.Request
}

func NewMemoryQueue(size int) *MemoryQueue {
	return &MemoryQueue{ch: make(chan *queuePkg.Request, size)}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, req *queuePkg.Request) error {
	select {
	case q.ch <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context, timeout time.Duration) (*queuePkg.Request, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case req := <-q.ch:
		return req, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *MemoryQueue) Depth(context.Context) (int, error) {
	return len(q.ch), nil
}
