package worker

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/adventure-engine/internal/logger"
	"github.com/jwebster45206/adventure-engine/internal/queue"
	"github.com/jwebster45206/adventure-engine/internal/session"
	"github.com/jwebster45206/adventure-engine/pkg/content"
	queuePkg "github.com/jwebster45206/adventure-engine/pkg/queue"
)

func setup(t *testing.T) (*Worker, *queue.MemoryQueue, *session.Manager) {
	t.Helper()
	log := logger.Discard()
	catalog, err := content.NewCatalog("", log)
	require.NoError(t, err)
	mgr := session.NewManager(catalog, session.NewMemoryStore(0), session.NewBroadcaster(nil, log), session.Options{}, log)
	q := queue.NewMemoryQueue(16)
	w := New(q, mgr, log, "worker-test")
	w.wait = 50 * time.Millisecond
	return w, q, mgr
}

func receive(t *testing.T, ch <-chan session.Event) session.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return session.Event{}
	}
}

func run(t *testing.T, w *Worker) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("worker did not stop")
		}
	})
}

func TestNew_GeneratesID(t *testing.T) {
	w := New(queue.NewMemoryQueue(1), nil, logger.Discard(), "")
	assert.Regexp(t, `^worker-[0-9a-f]{8}$`, w.ID())
}

func TestWorker_PlaysQueuedActionsInOrder(t *testing.T) {
	w, q, mgr := setup(t)
	ctx := context.Background()
	snap, err := mgr.Create(ctx, "", nil)
	require.NoError(t, err)
	watch, stop, err := mgr.Events().Subscribe(ctx, snap.ID)
	require.NoError(t, err)
	defer stop()

	first := queuePkg.NewRequest(snap.ID, "touch symbols", "http-async")
	second := queuePkg.NewRequest(snap.ID, "go to the library", "http-async")
	require.NoError(t, q.Enqueue(ctx, first))
	require.NoError(t, q.Enqueue(ctx, second))
	run(t, w)

	ev := receive(t, watch)
	assert.Equal(t, session.EventActionProcessed, ev.Type)
	assert.Equal(t, first.RequestID, ev.RequestID)
	assert.Equal(t, "http-async", ev.Source)
	assert.Equal(t, 3, ev.Result.Fear)

	ev = receive(t, watch)
	assert.Equal(t, second.RequestID, ev.RequestID)
	assert.Equal(t, "library", ev.Result.RoomID)
}

func TestWorker_ReportsFailures(t *testing.T) {
	w, q, mgr := setup(t)
	ctx := context.Background()
	missing := uuid.New()
	watch, stop, err := mgr.Events().Subscribe(ctx, missing)
	require.NoError(t, err)
	defer stop()

	req := queuePkg.NewRequest(missing, "look around", "http-async")
	require.NoError(t, q.Enqueue(ctx, req))
	run(t, w)

	ev := receive(t, watch)
	assert.Equal(t, session.EventActionFailed, ev.Type)
	assert.Equal(t, req.RequestID, ev.RequestID)
	assert.Equal(t, "look around", ev.Input)
	assert.NotEmpty(t, ev.Error)
}
