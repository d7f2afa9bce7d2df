package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jwebster45206/adventure-engine/internal/queue"
	"github.com/jwebster45206/adventure-engine/internal/session"
	queuePkg "github.com/jwebster45206/adventure-engine/pkg/queue"
)

const maxBodyBytes = 64 << 10

type CreateSessionRequest struct {
	Scenario string  `json:"scenario,omitempty"`
	Seed     *uint64 `json:"seed,omitempty"`
}

type ActionRequest struct {
	Text string `json:"text"`
}

// AsyncActionResponse is the response for a queued action
type AsyncActionResponse struct {
	RequestID string `json:"request_id"`
	Message   string `json:"message"`
}

type SessionHandler struct {
	manager *session.Manager
	stream  *StreamHandler
	queue   queue.Queue
	logger  *slog.Logger
}

func NewSessionHandler(manager *session.Manager, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		manager: manager,
		stream:  NewStreamHandler(manager, logger),
		logger:  logger,
	}
}

// WithQueue enables queued actions (POST .../actions?async=true).
func (h *SessionHandler) WithQueue(q queue.Queue) *SessionHandler {
	h.queue = q
	return h
}

// ServeHTTP handles HTTP requests for sessions
// Routes:
// POST /v1/sessions                - Start a session
// GET /v1/sessions/{id}            - Current state, without acting
// DELETE /v1/sessions/{id}         - End a session
// POST /v1/sessions/{id}/actions   - Play one action (?async=true queues it)
// GET /v1/sessions/{id}/stream     - Websocket action stream
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, sub, ok := sessionPath(r.URL.Path)
	if !ok {
		h.logger.Warn("Invalid session ID", "path", r.URL.Path)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	switch {
	case id == uuid.Nil && sub == "":
		if r.Method != http.MethodPost {
			h.methodNotAllowed(w, r, "POST")
			return
		}
		h.handleCreate(w, r)

	case sub == "":
		switch r.Method {
		case http.MethodGet:
			h.handleRead(w, r, id)
		case http.MethodDelete:
			h.handleDelete(w, r, id)
		default:
			h.methodNotAllowed(w, r, "GET, DELETE")
		}

	case sub == "actions":
		if r.Method != http.MethodPost {
			h.methodNotAllowed(w, r, "POST")
			return
		}
		h.handleAction(w, r, id)

	case sub == "stream":
		if r.Method != http.MethodGet {
			h.methodNotAllowed(w, r, "GET")
			return
		}
		h.stream.serve(w, r, id)

	default:
		writeError(w, h.logger, http.StatusNotFound, "Unknown session resource")
	}
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("Invalid create session request", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	snap, err := h.manager.Create(r.Context(), req.Scenario, req.Seed)
	if err != nil {
		if session.IsNotFound(err) {
			writeError(w, h.logger, http.StatusNotFound, "Scenario not found: "+req.Scenario)
			return
		}
		h.logger.Error("Failed to create session", "error", err, "scenario", req.Scenario)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to create session")
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, snap)
}

func (h *SessionHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	result, err := h.manager.Describe(r.Context(), id)
	if err != nil {
		h.sessionError(w, err, id, "Failed to load session")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, result)
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.manager.Delete(r.Context(), id); err != nil {
		h.sessionError(w, err, id, "Failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) handleAction(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req ActionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.Warn("Invalid action request", "session_id", id, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if r.URL.Query().Get("async") == "true" {
		h.handleQueuedAction(w, r, id, req.Text)
		return
	}

	result, err := h.manager.Act(r.Context(), id, req.Text, "http")
	if err != nil {
		h.sessionError(w, err, id, "Failed to process action")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, result)
}

// handleQueuedAction puts the action on the queue and answers 202. The
// result arrives on the session's stream, tagged with the request ID.
func (h *SessionHandler) handleQueuedAction(w http.ResponseWriter, r *http.Request, id uuid.UUID, text string) {
	if h.queue == nil {
		writeError(w, h.logger, http.StatusNotImplemented, "Queued actions are not enabled")
		return
	}
	if _, err := h.manager.Describe(r.Context(), id); err != nil {
		h.sessionError(w, err, id, "Failed to load session")
		return
	}

	req := queuePkg.NewRequest(id, text, "http-async")
	if err := h.queue.Enqueue(r.Context(), req); err != nil {
		if errors.Is(err, queue.ErrQueueFull) {
			h.logger.Warn("Action queue full", "session_id", id)
			writeError(w, h.logger, http.StatusServiceUnavailable, "Action queue is full")
			return
		}
		h.logger.Error("Failed to enqueue action", "session_id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to enqueue action")
		return
	}

	h.logger.Info("Action queued", "session_id", id, "request_id", req.RequestID)
	writeJSON(w, h.logger, http.StatusAccepted, AsyncActionResponse{
		RequestID: req.RequestID,
		Message:   "Action queued",
	})
}

func (h *SessionHandler) sessionError(w http.ResponseWriter, err error, id uuid.UUID, msg string) {
	if session.IsNotFound(err) {
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}
	h.logger.Error(msg, "session_id", id, "error", err)
	writeError(w, h.logger, http.StatusInternalServerError, msg)
}

func (h *SessionHandler) methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed string) {
	h.logger.Warn("Method not allowed for sessions endpoint", "method", r.Method, "path", r.URL.Path)
	w.Header().Set("Allow", allowed)
	writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: "+allowed)
}
