package main

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jwebster45206/adventure-engine/internal/session"
	"github.com/jwebster45206/adventure-engine/pkg/content"
	"github.com/jwebster45206/adventure-engine/pkg/engine"
)

// Game is what the console plays against: the engine in process, or a
// running API.
type Game interface {
	Scenarios(ctx context.Context) ([]content.Summary, error)
	Start(ctx context.Context, scenario string) (*engine.ActionResult, error)
	Act(ctx context.Context, input string) (*engine.ActionResult, error)
}

var errNotStarted = errors.New("no game in progress")

type localGame struct {
	manager *session.Manager
	id      uuid.UUID
}

func newLocalGame(manager *session.Manager) *localGame {
	return &localGame{manager: manager}
}

func (g *localGame) Scenarios(ctx context.Context) ([]content.Summary, error) {
	return g.manager.Worlds(), nil
}

func (g *localGame) Start(ctx context.Context, scenario string) (*engine.ActionResult, error) {
	snap, err := g.manager.Create(ctx, scenario, nil)
	if err != nil {
		return nil, err
	}
	g.id = snap.ID
	return snap.Result, nil
}

func (g *localGame) Act(ctx context.Context, input string) (*engine.ActionResult, error) {
	if g.id == uuid.Nil {
		return nil, errNotStarted
	}
	return g.manager.Act(ctx, g.id, input, "console")
}
