package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/adventure-engine/internal/logger"
	"github.com/jwebster45206/adventure-engine/internal/session"
	"github.com/jwebster45206/adventure-engine/pkg/content"
	"github.com/jwebster45206/adventure-engine/pkg/engine"
)

// Player starts sessions and sends actions to them.
type Player interface {
	Start(ctx context.Context, scenario string, seed *uint64) (uuid.UUID, *engine.ActionResult, error)
	Act(ctx context.Context, id uuid.UUID, input string) (*engine.ActionResult, error)
}

// LocalPlayer plays against an in-process session manager with ambient
// events switched off, so every case is deterministic.
type LocalPlayer struct {
	manager *session.Manager
}

// NewLocalPlayer builds a session manager over the embedded worlds plus any
// found in dataDir.
func NewLocalPlayer(dataDir string) (*LocalPlayer, error) {
	log := logger.Discard()
	catalog, err := content.NewCatalog(dataDir, log)
	if err != nil {
		return nil, err
	}
	store := session.NewMemoryStore(0)
	events := session.NewBroadcaster(nil, log)
	mgr := session.NewManager(catalog, store, events, session.Options{AmbientChance: 0}, log)
	return &LocalPlayer{manager: mgr}, nil
}

func (p *LocalPlayer) Start(ctx context.Context, scenario string, seed *uint64) (uuid.UUID, *engine.ActionResult, error) {
	snap, err := p.manager.Create(ctx, scenario, seed)
	if err != nil {
		return uuid.UUID{}, nil, err
	}
	return snap.ID, snap.Result, nil
}

func (p *LocalPlayer) Act(ctx context.Context, id uuid.UUID, input string) (*engine.ActionResult, error) {
	return p.manager.Act(ctx, id, input, "integration")
}

// RemotePlayer plays against a running adventure-engine API. The server
// should run with AMBIENT_CHANCE=0 for exact meter expectations to hold.
type RemotePlayer struct {
	BaseURL string
	Client  *http.Client
}

func NewRemotePlayer(baseURL string, timeout time.Duration) *RemotePlayer {
	return &RemotePlayer{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

type createRequest struct {
	Scenario string  `json:"scenario,omitempty"`
	Seed     *uint64 `json:"seed,omitempty"`
}

type actionRequest struct {
	Text string `json:"text"`
}

func (p *RemotePlayer) Start(ctx context.Context, scenario string, seed *uint64) (uuid.UUID, *engine.ActionResult, error) {
	var snap session.Snapshot
	if err := p.do(ctx, http.MethodPost, "/v1/sessions", createRequest{Scenario: scenario, Seed: seed}, http.StatusCreated, &snap); err != nil {
		return uuid.UUID{}, nil, fmt.Errorf("failed to create session: %w", err)
	}
	return snap.ID, snap.Result, nil
}

func (p *RemotePlayer) Act(ctx context.Context, id uuid.UUID, input string) (*engine.ActionResult, error) {
	var res engine.ActionResult
	path := fmt.Sprintf("/v1/sessions/%s/actions", id)
	if err := p.do(ctx, http.MethodPost, path, actionRequest{Text: input}, http.StatusOK, &res); err != nil {
		return nil, fmt.Errorf("failed to post action: %w", err)
	}
	return &res, nil
}

func (p *RemotePlayer) do(ctx context.Context, method, path string, in any, wantStatus int, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != wantStatus {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s returned %d (expected %d): %s", method, path, resp.StatusCode, wantStatus, string(raw))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
