package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/jwebster45206/adventure-engine/pkg/engine"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventActionProcessed EventType = "action.processed"
	EventActionFailed    EventType = "action.failed"
	EventSessionEnded    EventType = "session.ended"
)

// Event is published after every action, when a queued action fails, and
// when a session ends.
type Event struct {
	Type      EventType            `json:"type"`
	SessionID string               `json:"session_id"`
	Source    string               `json:"source,omitempty"`     // Who sent the action
	RequestID string               `json:"request_id,omitempty"` // Set for queued actions
	Input     string               `json:"input,omitempty"`
	Result    *engine.ActionResult `json:"result,omitempty"`
	Error     string               `json:"error,omitempty"` // Set for action.failed
}

// Broadcaster fans session events out to watchers. With a Redis client it
// goes through Pub/Sub so watchers on other replicas see them too; without
// one it delivers in process.
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger

	mu   sync.Mutex
	subs map[string]map[chan Event]struct{}
}

// NewBroadcaster creates a new event broadcaster. redisClient may be nil.
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
		subs:        make(map[string]map[chan Event]struct{}),
	}
}

func channelFor(sessionID uuid.UUID) string {
	return "session-events:" + sessionID.String()
}

// Publish sends an event to every watcher of its session.
func (b *Broadcaster) Publish(ctx context.Context, sessionID uuid.UUID, event Event) error {
	event.SessionID = sessionID.String()
	channel := channelFor(sessionID)

	if b.redisClient == nil {
		b.deliver(channel, event)
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published", "channel", channel, "event_type", event.Type)
	return nil
}

// Subscribe returns a channel of events for one session and a cancel func
// that must be called to release it. The subscription is active when
// Subscribe returns.
func (b *Broadcaster) Subscribe(ctx context.Context, sessionID uuid.UUID) (<-chan Event, func(), error) {
	channel := channelFor(sessionID)
	if b.redisClient == nil {
		ch := make(chan Event, 16)
		b.mu.Lock()
		if b.subs[channel] == nil {
			b.subs[channel] = make(map[chan Event]struct{})
		}
		b.subs[channel][ch] = struct{}{}
		b.mu.Unlock()

		var once sync.Once
		return ch, func() {
			once.Do(func() {
				b.mu.Lock()
				delete(b.subs[channel], ch)
				if len(b.subs[channel]) == 0 {
					delete(b.subs, channel)
				}
				b.mu.Unlock()
				close(ch)
			})
		}, nil
	}

	pubsub := b.redisClient.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	out := make(chan Event, 16)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Warn("Dropping malformed event", "channel", channel, "error", err)
				continue
			}
			select {
			case out <- event:
			default:
				b.logger.Warn("Event watcher is slow, dropping event", "channel", channel, "event_type", event.Type)
			}
		}
	}()

	var once sync.Once
	return out, func() { once.Do(func() { pubsub.Close() }) }, nil
}

func (b *Broadcaster) deliver(channel string, event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[channel] {
		select {
		case ch <- event:
		default:
			b.logger.Warn("Event watcher is slow, dropping event", "channel", channel, "event_type", event.Type)
		}
	}
}
