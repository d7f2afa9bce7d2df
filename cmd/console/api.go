package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/jwebster45206/adventure-engine/pkg/content"
	"github.com/jwebster45206/adventure-engine/pkg/engine"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// remoteGame plays against a running API.
type remoteGame struct {
	client  *http.Client
	baseURL string
	id      uuid.UUID
}

func newRemoteGame(client *http.Client, baseURL string) *remoteGame {
	return &remoteGame{client: client, baseURL: baseURL}
}

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func (g *remoteGame) Scenarios(ctx context.Context) ([]content.Summary, error) {
	var list []content.Summary
	if err := g.call(ctx, http.MethodGet, "/v1/scenarios", nil, http.StatusOK, &list); err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	return list, nil
}

func (g *remoteGame) Start(ctx context.Context, scenario string) (*engine.ActionResult, error) {
	var snap struct {
		ID     uuid.UUID            `json:"id"`
		Result *engine.ActionResult `json:"result"`
	}
	req := map[string]string{"scenario": scenario}
	if err := g.call(ctx, http.MethodPost, "/v1/sessions", req, http.StatusCreated, &snap); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	g.id = snap.ID
	return snap.Result, nil
}

func (g *remoteGame) Act(ctx context.Context, input string) (*engine.ActionResult, error) {
	if g.id == uuid.Nil {
		return nil, errNotStarted
	}
	var result engine.ActionResult
	path := fmt.Sprintf("/v1/sessions/%s/actions", g.id)
	if err := g.call(ctx, http.MethodPost, path, map[string]string{"text": input}, http.StatusOK, &result); err != nil {
		return nil, fmt.Errorf("action failed: %w", err)
	}
	return &result, nil
}

func (g *remoteGame) call(ctx context.Context, method, path string, in any, wantStatus int, out any) error {
	var body io.Reader
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != wantStatus {
		var errorResp ErrorResponse
		if err := json.Unmarshal(data, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(data))
		}
		return errors.New(errorResp.Error)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
