package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg})
}

// sessionPath splits /v1/sessions/{id}/{sub} into its parts. ok is false
// when the path has an id that is not a UUID.
func sessionPath(path string) (id uuid.UUID, sub string, ok bool) {
	rest := strings.Trim(strings.TrimPrefix(path, "/v1/sessions"), "/")
	if rest == "" {
		return uuid.Nil, "", true
	}
	idStr, sub, _ := strings.Cut(rest, "/")
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, "", false
	}
	return id, sub, true
}
