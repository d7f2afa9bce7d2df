package session

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/adventure-engine/pkg/content"
	"github.com/jwebster45206/adventure-engine/pkg/engine"
	"github.com/jwebster45206/adventure-engine/pkg/textfilter"
)

func newCatalog(t *testing.T) *content.Catalog {
	t.Helper()
	catalog, err := content.NewCatalog("", nil)
	require.NoError(t, err)
	return catalog
}

func newManager(t *testing.T, opts Options) (*Manager, *MemoryStore, *Broadcaster) {
	t.Helper()
	catalog := newCatalog(t)
	store := NewMemoryStore(0)
	events := NewBroadcaster(nil, testLogger())
	return NewManager(catalog, store, events, opts, testLogger()), store, events
}

func TestManager_CreateAndAct(t *testing.T) {
	m, _, _ := newManager(t, Options{})
	ctx := context.Background()

	snap, err := m.Create(ctx, "", nil)
	require.NoError(t, err)
	assert.Equal(t, content.DefaultWorld, snap.WorldID)
	assert.NotZero(t, snap.Seed)
	assert.Equal(t, "foyer", snap.Result.RoomID)
	assert.NotEmpty(t, snap.Result.Narrative)

	res, err := m.Act(ctx, snap.ID, "touch symbols", "test")
	require.NoError(t, err)
	assert.Equal(t, engine.CategoryPuzzleSolving, res.Category)
	assert.Equal(t, 3, res.Fear)

	res, err = m.Act(ctx, snap.ID, "go to the library", "test")
	require.NoError(t, err)
	assert.Equal(t, "library", res.RoomID)

	desc, err := m.Describe(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "library", desc.RoomID)
	assert.Equal(t, res.Fear, desc.Fear)
}

func TestManager_NotFound(t *testing.T) {
	m, _, _ := newManager(t, Options{})
	ctx := context.Background()

	_, err := m.Create(ctx, "haunted_lighthouse", nil)
	assert.True(t, IsNotFound(err))

	_, err = m.Act(ctx, uuid.New(), "look", "test")
	assert.True(t, IsNotFound(err))

	_, err = m.Describe(ctx, uuid.New())
	assert.True(t, IsNotFound(err))

	assert.True(t, IsNotFound(m.Delete(ctx, uuid.New())))
}

func TestManager_Delete(t *testing.T) {
	m, _, events := newManager(t, Options{})
	ctx := context.Background()
	snap, err := m.Create(ctx, "", nil)
	require.NoError(t, err)

	watch, cancel, err := events.Subscribe(ctx, snap.ID)
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, m.Delete(ctx, snap.ID))
	assert.Equal(t, EventSessionEnded, receive(t, watch).Type)

	_, err = m.Describe(ctx, snap.ID)
	assert.True(t, IsNotFound(err))
}

func TestManager_SameSeedSameGame(t *testing.T) {
	m, _, _ := newManager(t, Options{AmbientChance: 0.5, BookFlavor: true})
	ctx := context.Background()
	seed := uint64(42)

	a, err := m.Create(ctx, "", &seed)
	require.NoError(t, err)
	b, err := m.Create(ctx, "", &seed)
	require.NoError(t, err)
	assert.Equal(t, seed, a.Seed)

	inputs := []string{"look around", "dance wildly", "go to the dining room", "attack the rats", "attack the rats", "hum a tune"}
	for _, in := range inputs {
		ra, err := m.Act(ctx, a.ID, in, "a")
		require.NoError(t, err)
		rb, err := m.Act(ctx, b.ID, in, "b")
		require.NoError(t, err)
		assert.Equal(t, ra.Narrative, rb.Narrative, "input %q", in)
		assert.Equal(t, ra.Fear, rb.Fear, "input %q", in)
		assert.Equal(t, ra.Health, rb.Health, "input %q", in)
	}
}

func TestManager_ConfiguredSeed(t *testing.T) {
	m, _, _ := newManager(t, Options{Seed: 99})
	snap, err := m.Create(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(99), snap.Seed)
}

func TestManager_PublishesEvents(t *testing.T) {
	m, store, events := newManager(t, Options{})
	ctx := context.Background()
	snap, err := m.Create(ctx, "", nil)
	require.NoError(t, err)

	watch, cancel, err := events.Subscribe(ctx, snap.ID)
	require.NoError(t, err)
	defer cancel()

	_, err = m.Act(ctx, snap.ID, "look around", "ws-1")
	require.NoError(t, err)
	ev := receive(t, watch)
	assert.Equal(t, EventActionProcessed, ev.Type)
	assert.Equal(t, "ws-1", ev.Source)
	assert.Equal(t, "look around", ev.Input)
	require.NotNil(t, ev.Result)
	assert.Equal(t, "foyer", ev.Result.RoomID)

	// Push the session to the brink: one more failure on a hostile puzzle
	// drains the last of the player's sanity.
	rec, err := store.Load(ctx, snap.ID)
	require.NoError(t, err)
	rec.State.Sanity = 5
	rec.Overlay.Puzzles["foyer_portrait"].Attempts = 5
	require.NoError(t, store.Save(ctx, rec))

	res, err := m.Act(ctx, snap.ID, "solve the portrait", "ws-1")
	require.NoError(t, err)
	require.True(t, res.IsGameOver)
	assert.Equal(t, EventActionProcessed, receive(t, watch).Type)
	ended := receive(t, watch)
	assert.Equal(t, EventSessionEnded, ended.Type)
	assert.NotEmpty(t, ended.Result.Ending)

	// Further actions are answered but do not end the session again.
	_, err = m.Act(ctx, snap.ID, "look around", "ws-1")
	require.NoError(t, err)
	assert.Equal(t, EventActionProcessed, receive(t, watch).Type)
	select {
	case ev := <-watch:
		t.Fatalf("unexpected event %s", ev.Type)
	default:
	}
}

func TestManager_FilterEchoedText(t *testing.T) {
	m, _, _ := newManager(t, Options{Filter: textfilter.New(textfilter.RatingPG)})
	ctx := context.Background()
	snap, err := m.Create(ctx, "", nil)
	require.NoError(t, err)

	res, err := m.Act(ctx, snap.ID, "shit myself", "test")
	require.NoError(t, err)
	assert.Contains(t, res.Narrative, "shoot")
	assert.NotContains(t, res.Narrative, "shit")
}

func TestManager_ConcurrentActionsAreSerialized(t *testing.T) {
	m, _, _ := newManager(t, Options{})
	ctx := context.Background()
	snap, err := m.Create(ctx, "", nil)
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Act(ctx, snap.ID, "look around", "test")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rec, err := m.store.Load(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, n, rec.State.ActionCount, "no action was lost to a lost update")
	assert.Empty(t, m.locks)
}
