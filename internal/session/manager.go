package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/adventure-engine/internal/logger"
	"github.com/jwebster45206/adventure-engine/pkg/content"
	"github.com/jwebster45206/adventure-engine/pkg/engine"
	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/jwebster45206/adventure-engine/pkg/textfilter"
	"github.com/jwebster45206/adventure-engine/pkg/world"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Options configures the engines a Manager builds.
type Options struct {
	AmbientChance float64
	Seed          uint64 // Used for every new session when non-zero
	BookFlavor    bool   // Book-themed flavor text instead of the static lines
	Filter        *textfilter.Filter
	Locker        Locker // Cross-process session lock, nil for a single process
}

type requestIDKey struct{}

// WithRequestID tags the actions run under ctx with a queued request ID, so
// the published events can be matched to the request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Snapshot is returned when a session is created.
type Snapshot struct {
	ID      uuid.UUID            `json:"id"`
	WorldID string               `json:"scenario"`
	Seed    uint64               `json:"seed"`
	Result  *engine.ActionResult `json:"result"`
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// Manager runs sessions: it loads a record, plays one action through a
// fresh engine and saves the record back. Actions on the same session are
// serialized; different sessions run in parallel.
type Manager struct {
	catalog *content.Catalog
	store   Store
	events  *Broadcaster
	opts    Options
	logger  *slog.Logger
	tracer  trace.Tracer
	now     func() time.Time

	mu    sync.Mutex
	locks map[uuid.UUID]*sessionLock
}

// NewManager creates a session manager. events may be nil.
func NewManager(catalog *content.Catalog, store Store, events *Broadcaster, opts Options, log *slog.Logger) *Manager {
	if log == nil {
		log = logger.Discard()
	}
	return &Manager{
		catalog: catalog,
		store:   store,
		events:  events,
		opts:    opts,
		logger:  log,
		tracer:  otel.Tracer("session-manager"),
		now:     time.Now,
		locks:   make(map[uuid.UUID]*sessionLock),
	}
}

// Create starts a new session in worldID (empty for the default world).
// A nil seed uses the configured seed, or a random one.
func (m *Manager) Create(ctx context.Context, worldID string, seed *uint64) (*Snapshot, error) {
	w, err := m.catalog.Get(worldID)
	if err != nil {
		return nil, err
	}

	rec := &Record{
		ID:      uuid.New(),
		WorldID: w.ID,
		Seed:    m.pickSeed(seed),
		Overlay: world.NewOverlay(w),
		State:   state.NewPlayerState(w.StartRoom),
	}
	rec.CreatedAt = m.now()
	rec.UpdatedAt = rec.CreatedAt

	model := world.RestoreModel(w, rec.Overlay)
	result := m.engineFor(rec).Intro(model, rec.State)

	if err := m.store.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	logger.WithSession(m.logger, rec.ID.String()).Info("Session created", "world", w.ID, "seed", rec.Seed)
	return &Snapshot{ID: rec.ID, WorldID: w.ID, Seed: rec.Seed, Result: result}, nil
}

// Act processes one action for a session and persists the result.
// source identifies the caller in the published event.
func (m *Manager) Act(ctx context.Context, id uuid.UUID, input, source string) (*engine.ActionResult, error) {
	ctx, span := m.tracer.Start(ctx, "session.act",
		trace.WithAttributes(attribute.String("session.id", id.String())),
	)
	defer span.End()

	unlock, err := m.lock(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer unlock()

	rec, model, err := m.load(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	wasOver := rec.State.IsGameOver()

	log := logger.WithSession(m.logger, id.String())
	result := m.engineFor(rec).ProcessAction(input, model, rec.State)
	rec.UpdatedAt = m.now()

	if err := m.store.Save(ctx, rec); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	span.SetAttributes(
		attribute.String("action.category", string(result.Category)),
		attribute.String("room.id", result.RoomID),
		attribute.Bool("game.over", result.IsGameOver),
	)
	log.Debug("Action processed", "category", result.Category, "room", result.RoomID, "fear", result.Fear)

	requestID := requestIDFrom(ctx)
	m.publish(ctx, id, Event{Type: EventActionProcessed, Source: source, RequestID: requestID, Input: input, Result: result})
	if result.IsGameOver && !wasOver {
		log.Info("Session reached an ending", "action_count", rec.State.ActionCount)
		m.publish(ctx, id, Event{Type: EventSessionEnded, Source: source, RequestID: requestID, Result: result})
	}
	return result, nil
}

// Describe returns the current envelope without acting.
func (m *Manager) Describe(ctx context.Context, id uuid.UUID) (*engine.ActionResult, error) {
	rec, model, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.engineFor(rec).Describe(model, rec.State), nil
}

// Delete removes a session.
func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	unlock, err := m.lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}
	logger.WithSession(m.logger, id.String()).Info("Session deleted")
	m.publish(ctx, id, Event{Type: EventSessionEnded})
	return nil
}

// ReportFailure publishes action.failed for a queued action that could not
// be played. The request ID is taken from ctx.
func (m *Manager) ReportFailure(ctx context.Context, id uuid.UUID, input, source string, cause error) {
	m.publish(ctx, id, Event{Type: EventActionFailed, Source: source, RequestID: requestIDFrom(ctx), Input: input, Error: cause.Error()})
}

// Ping checks the session store.
func (m *Manager) Ping(ctx context.Context) error {
	return m.store.Ping(ctx)
}

// Events returns the broadcaster, or nil when events are off.
func (m *Manager) Events() *Broadcaster {
	return m.events
}

// Worlds lists the scenarios sessions can be started in.
func (m *Manager) Worlds() []content.Summary {
	return m.catalog.List()
}

func (m *Manager) load(ctx context.Context, id uuid.UUID) (*Record, *world.Model, error) {
	rec, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if rec.State == nil {
		return nil, nil, fmt.Errorf("session %s has no player state", id)
	}
	w, err := m.catalog.Get(rec.WorldID)
	if err != nil {
		return nil, nil, fmt.Errorf("session %s: %w", id, err)
	}
	return rec, world.RestoreModel(w, rec.Overlay), nil
}

// engineFor builds the engine for the next action. The RNG stream is keyed
// by seed and action count, so replaying the same inputs on the same seed
// gives the same game regardless of which process runs each action.
func (m *Manager) engineFor(rec *Record) *engine.Engine {
	rng := rand.New(rand.NewPCG(rec.Seed, uint64(rec.State.ActionCount)))
	var flavor engine.FlavorProvider = engine.StaticFlavor{}
	if m.opts.BookFlavor {
		flavor = engine.NewBookFlavor(rng)
	}
	return engine.New(engine.Options{
		AmbientChance: m.opts.AmbientChance,
		Rand:          rng,
		Logger:        logger.WithSession(m.logger, rec.ID.String()),
		Flavor:        flavor,
		Filter:        m.opts.Filter,
	})
}

func (m *Manager) pickSeed(seed *uint64) uint64 {
	switch {
	case seed != nil:
		return *seed
	case m.opts.Seed != 0:
		return m.opts.Seed
	default:
		return rand.Uint64()
	}
}

func (m *Manager) publish(ctx context.Context, id uuid.UUID, event Event) {
	if m.events == nil {
		return
	}
	if err := m.events.Publish(ctx, id, event); err != nil {
		m.logger.Warn("Failed to publish session event", "session_id", id, "event_type", event.Type, "error", err)
	}
}

// lock takes the in-process session lock, then the cross-process one when
// a Locker is configured.
func (m *Manager) lock(ctx context.Context, id uuid.UUID) (func(), error) {
	release := m.localLock(id)
	if m.opts.Locker == nil {
		return release, nil
	}
	remote, err := m.opts.Locker.Lock(ctx, id)
	if err != nil {
		release()
		return nil, err
	}
	return func() {
		remote()
		release()
	}, nil
}

func (m *Manager) localLock(id uuid.UUID) func() {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &sessionLock{}
		m.locks[id] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, id)
		}
		m.mu.Unlock()
	}
}

// IsNotFound reports whether err means the session or its world is missing.
func IsNotFound(err error) bool {
	var nf *world.NotFoundError
	return errors.Is(err, ErrNotFound) || errors.As(err, &nf)
}
