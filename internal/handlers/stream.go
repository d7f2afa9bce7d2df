package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jwebster45206/adventure-engine/internal/session"
	"github.com/jwebster45206/adventure-engine/pkg/engine"
)

const (
	defaultPingInterval = 30 * time.Second
	writeWait           = 10 * time.Second
)

// Stream frame types sent to the client. Event types from the session
// broadcaster are forwarded as-is.
const (
	FrameState  = "session.state"
	FrameResult = "action.result"
	FrameError  = "error"
)

// StreamFrame is one JSON message on the websocket.
type StreamFrame struct {
	Type      string               `json:"type"`
	Source    string               `json:"source,omitempty"`
	RequestID string               `json:"request_id,omitempty"`
	Input     string               `json:"input,omitempty"`
	Result    *engine.ActionResult `json:"result,omitempty"`
	Error     string               `json:"error,omitempty"`
}

// StreamHandler plays a session over a websocket. Every text frame from the
// client is one action and is answered with one action.result frame, in
// order. Actions other clients play on the same session, including queued
// ones, arrive as action.processed or action.failed frames.
type StreamHandler struct {
	manager  *session.Manager
	upgrader websocket.Upgrader
	logger   *slog.Logger

	// pingInterval paces keepalive pings. A client that answers none for
	// two intervals is dropped.
	pingInterval time.Duration
}

func NewStreamHandler(manager *session.Manager, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{
		manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		logger:       logger,
		pingInterval: defaultPingInterval,
	}
}

// streamConn serializes writes; gorilla allows one concurrent writer.
type streamConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *streamConn) send(frame StreamFrame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(frame)
}

func (c *streamConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (h *StreamHandler) serve(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	current, err := h.manager.Describe(r.Context(), id)
	if err != nil {
		if session.IsNotFound(err) {
			writeError(w, h.logger, http.StatusNotFound, "Session not found")
			return
		}
		h.logger.Error("Failed to load session for stream", "session_id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load session")
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Warn("Websocket upgrade failed", "session_id", id, "error", err)
		return
	}
	conn := &streamConn{conn: ws}
	defer ws.Close()

	source := "ws-" + uuid.NewString()
	log := h.logger.With("session_id", id.String(), "source", source)
	log.Info("Stream connected", "remote_addr", r.RemoteAddr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go keepAlive(ctx, conn, h.pingInterval)

	if events := h.manager.Events(); events != nil {
		watch, stop, err := events.Subscribe(ctx, id)
		if err != nil {
			log.Error("Failed to subscribe to session events", "error", err)
		} else {
			defer stop()
			go h.forward(ctx, conn, watch, source, log)
		}
	}

	if err := conn.send(StreamFrame{Type: FrameState, Result: current}); err != nil {
		log.Warn("Failed to send initial state", "error", err)
		return
	}

	pongWait := 2 * h.pingInterval
	ws.SetReadLimit(maxBodyBytes)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("Stream closed unexpectedly", "error", err)
			}
			log.Info("Stream disconnected")
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		ws.SetReadDeadline(time.Now().Add(pongWait))

		input := string(data)
		result, err := h.manager.Act(ctx, id, input, source)
		if err != nil {
			frame := StreamFrame{Type: FrameError, Input: input, Error: "Failed to process action"}
			if session.IsNotFound(err) {
				frame.Error = "Session not found"
			} else {
				log.Error("Failed to process streamed action", "error", err)
			}
			if err := conn.send(frame); err != nil {
				return
			}
			continue
		}
		if err := conn.send(StreamFrame{Type: FrameResult, Input: input, Result: result}); err != nil {
			log.Warn("Failed to send action result", "error", err)
			return
		}
	}
}

// keepAlive pings the client until ctx ends or a ping cannot be written.
func keepAlive(ctx context.Context, conn *streamConn, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.ping(); err != nil {
				return
			}
		}
	}
}

// forward relays events played by other clients.
func (h *StreamHandler) forward(ctx context.Context, conn *streamConn, watch <-chan session.Event, source string, log *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watch:
			if !ok {
				return
			}
			if ev.Source == source {
				continue
			}
			frame := StreamFrame{
				Type:      string(ev.Type),
				Source:    ev.Source,
				RequestID: ev.RequestID,
				Input:     ev.Input,
				Result:    ev.Result,
				Error:     ev.Error,
			}
			if err := conn.send(frame); err != nil {
				log.Debug("Failed to forward event", "error", err)
				return
			}
		}
	}
}
