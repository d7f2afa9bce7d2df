package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Request is one action waiting to be played by a worker
type Request struct {
	RequestID  string    `json:"request_id"`
	SessionID  uuid.UUID `json:"session_id"`
	Input      string    `json:"input"`
	Source     string    `json:"source,omitempty"` // Who sent the action
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewRequest stamps a fresh request ID and enqueue time
func NewRequest(sessionID uuid.UUID, input, source string) *Request {
	return &Request{
		RequestID:  uuid.NewString(),
		SessionID:  sessionID,
		Input:      input,
		Source:     source,
		EnqueuedAt: time.Now().UTC(),
	}
}

// ToJSON converts the request to JSON bytes for Redis
func (r *Request) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// FromJSON parses a request from JSON bytes
func FromJSON(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
