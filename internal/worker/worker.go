package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/adventure-engine/internal/queue"
	"github.com/jwebster45206/adventure-engine/internal/session"
	queuePkg "github.com/jwebster45206/adventure-engine/pkg/queue"
)

const (
	workerTimeout = 5 * time.Second
	actionTimeout = 30 * time.Second
)

// Worker plays queued actions through the session manager. Results reach
// clients as session events.
type Worker struct {
	id      string
	queue   queue.Queue
	manager *session.Manager
	log     *slog.Logger
	wait    time.Duration
}

// New creates a new worker instance
func New(q queue.Queue, manager *session.Manager, log *slog.Logger, workerID string) *Worker {
	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}
	return &Worker{
		id:      workerID,
		queue:   q,
		manager: manager,
		log:     log.With("worker_id", workerID),
		wait:    workerTimeout,
	}
}

// ID returns the worker's identifier
func (w *Worker) ID() string {
	return w.id
}

// Run processes requests until ctx is cancelled
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("Worker starting")

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Worker shutting down")
			return nil
		default:
		}

		if err := w.processNext(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			w.log.Error("Error processing request", "error", err)
			// Back off so a broken queue does not spin
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

// processNext pulls the next request from the queue and plays it
func (w *Worker) processNext(ctx context.Context) error {
	req, err := w.queue.Dequeue(ctx, w.wait)
	if err != nil {
		return fmt.Errorf("failed to dequeue request: %w", err)
	}
	if req == nil {
		// Nothing queued - this is normal
		return nil
	}

	w.process(ctx, req)
	return nil
}

// process plays one request. Failures are reported to the session's
// watchers rather than returned, so one bad request never stops the worker.
func (w *Worker) process(ctx context.Context, req *queuePkg.Request) {
	start := time.Now()
	log := w.log.With("request_id", req.RequestID, "session_id", req.SessionID.String())
	log.Info("Received request from queue", "queued_ms", start.Sub(req.EnqueuedAt).Milliseconds())

	actCtx, cancel := context.WithTimeout(session.WithRequestID(ctx, req.RequestID), actionTimeout)
	defer cancel()

	result, err := w.manager.Act(actCtx, req.SessionID, req.Input, req.Source)
	if err != nil {
		log.Error("Failed to process queued action", "error", err)
		w.manager.ReportFailure(actCtx, req.SessionID, req.Input, req.Source, err)
		return
	}

	log.Info("Queued action processed",
		"category", result.Category,
		"game_over", result.IsGameOver,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
