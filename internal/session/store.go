package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/jwebster45206/adventure-engine/pkg/world"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// Record is everything needed to resume a session: which world it plays,
// the world overlay, the player state and the RNG seed.
type Record struct {
	ID        uuid.UUID          `json:"id"`
	WorldID   string             `json:"world_id"`
	Seed      uint64             `json:"seed"`
	Overlay   *world.Overlay     `json:"overlay"`
	State     *state.PlayerState `json:"state"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Store persists session records.
type Store interface {
	Ping(ctx context.Context) error
	Save(ctx context.Context, rec *Record) error
	Load(ctx context.Context, id uuid.UUID) (*Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Close() error
}
