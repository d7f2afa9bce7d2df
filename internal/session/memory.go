package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemoryStore keeps sessions in process. Records are stored as JSON so
// callers never share pointers with the store.
type MemoryStore struct {
	mu        sync.RWMutex
	records   map[uuid.UUID]memoryEntry
	ttl       time.Duration
	now       func() time.Time
	pingError error
}

// Ensure MemoryStore implements Store interface
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an in-memory store. A ttl of 0 keeps sessions forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		records: make(map[uuid.UUID]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// SetPingError configures the store to fail on ping with the given error
func (s *MemoryStore) SetPingError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pingError = err
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pingError
}

func (s *MemoryStore) Save(ctx context.Context, rec *Record) error {
	if rec == nil {
		return errors.New("record cannot be nil")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entry := memoryEntry{data: data}
	if s.ttl > 0 {
		entry.expires = s.now().Add(s.ttl)
	}
	s.records[rec.ID] = entry
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, id uuid.UUID) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !entry.expires.IsZero() && !s.now().Before(entry.expires) {
		delete(s.records, id)
		return nil, ErrNotFound
	}

	var rec Record
	if err := json.Unmarshal(entry.data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &rec, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
