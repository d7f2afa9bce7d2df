package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/adventure-engine/internal/queue"
)

func TestSessionHandler_QueuedAction(t *testing.T) {
	manager, _ := newTestManager(t)
	q := queue.NewMemoryQueue(1)
	h := NewSessionHandler(manager, testLogger()).WithQueue(q)
	snap := createSession(t, h)

	rr := do(t, h, http.MethodPost, "/v1/sessions/"+snap.ID.String()+"/actions?async=true", `{"text": "touch symbols"}`)
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())
	var resp AsyncActionResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.NotEmpty(t, resp.RequestID)

	req, err := q.Dequeue(context.Background(), time.Second)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, resp.RequestID, req.RequestID)
	assert.Equal(t, snap.ID, req.SessionID)
	assert.Equal(t, "touch symbols", req.Input)

	// Nothing was played yet
	rr = do(t, h, http.MethodGet, "/v1/sessions/"+snap.ID.String(), "")
	var current struct {
		Fear int `json:"fear"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&current))
	assert.Equal(t, snap.Result.Fear, current.Fear)
}

func TestSessionHandler_QueuedActionErrors(t *testing.T) {
	manager, _ := newTestManager(t)

	t.Run("not enabled", func(t *testing.T) {
		h := NewSessionHandler(manager, testLogger())
		snap := createSession(t, h)
		rr := do(t, h, http.MethodPost, "/v1/sessions/"+snap.ID.String()+"/actions?async=true", `{"text": "look"}`)
		assert.Equal(t, http.StatusNotImplemented, rr.Code)
	})
	t.Run("unknown session", func(t *testing.T) {
		h := NewSessionHandler(manager, testLogger()).WithQueue(queue.NewMemoryQueue(1))
		rr := do(t, h, http.MethodPost, "/v1/sessions/"+uuid.NewString()+"/actions?async=true", `{"text": "look"}`)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
	t.Run("queue full", func(t *testing.T) {
		h := NewSessionHandler(manager, testLogger()).WithQueue(queue.NewMemoryQueue(1))
		snap := createSession(t, h)
		path := "/v1/sessions/" + snap.ID.String() + "/actions?async=true"
		require.Equal(t, http.StatusAccepted, do(t, h, http.MethodPost, path, `{"text": "look"}`).Code)
		rr := do(t, h, http.MethodPost, path, `{"text": "look"}`)
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}
