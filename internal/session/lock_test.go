package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker_Exclusive(t *testing.T) {
	store, mr := newRedisStore(t, 0)
	locker := NewRedisLocker(store.Client(), testLogger())
	id := uuid.New()

	release, err := locker.Lock(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, mr.Exists(lockKey(id)))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, id)
	assert.Error(t, err)

	release()
	assert.False(t, mr.Exists(lockKey(id)))

	release, err = locker.Lock(context.Background(), id)
	require.NoError(t, err)
	release()
}

func TestRedisLocker_ReleaseKeepsForeignLock(t *testing.T) {
	store, mr := newRedisStore(t, 0)
	locker := NewRedisLocker(store.Client(), testLogger())
	id := uuid.New()

	release, err := locker.Lock(context.Background(), id)
	require.NoError(t, err)

	// The lock expired and someone else took it
	require.NoError(t, mr.Set(lockKey(id), "someone-else"))
	release()

	got, err := mr.Get(lockKey(id))
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

type failingLocker struct{}

func (failingLocker) Lock(context.Context, uuid.UUID) (func(), error) {
	return nil, errors.New("lock unavailable")
}

func TestManager_LockerFailure(t *testing.T) {
	m, _, _ := newManager(t, Options{})
	ctx := context.Background()
	snap, err := m.Create(ctx, "", nil)
	require.NoError(t, err)

	m.opts.Locker = failingLocker{}
	_, err = m.Act(ctx, snap.ID, "look around", "test")
	assert.ErrorContains(t, err, "lock unavailable")
	assert.Empty(t, m.locks, "local lock is released when the remote one fails")
}

func TestManager_RedisLockerAcrossManagers(t *testing.T) {
	store, _ := newRedisStore(t, 0)
	catalog := newCatalog(t)

	// Two managers share a store the way an API replica and a worker do.
	managers := make([]*Manager, 2)
	for i := range managers {
		managers[i] = NewManager(catalog, store, nil, Options{Locker: NewRedisLocker(store.Client(), testLogger())}, testLogger())
	}
	ctx := context.Background()
	snap, err := managers[0].Create(ctx, "", nil)
	require.NoError(t, err)

	const n = 10
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := managers[i%2].Act(ctx, snap.ID, "look around", "test")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rec, err := store.Load(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, n, rec.State.ActionCount)
}

func TestManager_RequestIDOnEvents(t *testing.T) {
	m, _, events := newManager(t, Options{})
	ctx := context.Background()
	snap, err := m.Create(ctx, "", nil)
	require.NoError(t, err)
	watch, cancel, err := events.Subscribe(ctx, snap.ID)
	require.NoError(t, err)
	defer cancel()

	_, err = m.Act(WithRequestID(ctx, "req-1"), snap.ID, "look around", "queue")
	require.NoError(t, err)
	ev := receive(t, watch)
	assert.Equal(t, EventActionProcessed, ev.Type)
	assert.Equal(t, "req-1", ev.RequestID)

	m.ReportFailure(WithRequestID(ctx, "req-2"), snap.ID, "look around", "queue", errors.New("boom"))
	ev = receive(t, watch)
	assert.Equal(t, EventActionFailed, ev.Type)
	assert.Equal(t, "req-2", ev.RequestID)
	assert.Equal(t, "boom", ev.Error)
}
