package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/adventure-engine/pkg/content"
)

// ScenarioLister lists the worlds sessions can start in.
type ScenarioLister interface {
	Worlds() []content.Summary
}

type ScenarioHandler struct {
	log     *slog.Logger
	catalog ScenarioLister
}

func NewScenarioHandler(log *slog.Logger, catalog ScenarioLister) *ScenarioHandler {
	return &ScenarioHandler{
		log:     log,
		catalog: catalog,
	}
}

// ServeHTTP lists scenarios.
// GET /v1/scenarios
func (h *ScenarioHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.log.Warn("Method not allowed for scenarios endpoint", "method", r.Method)
		writeError(w, h.log, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}
	writeJSON(w, h.log, http.StatusOK, h.catalog.Worlds())
}
