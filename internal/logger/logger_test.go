package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/jwebster45206/adventure-engine/internal/config"
)

func TestNew_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, &config.Config{Environment: "production", LogLevel: slog.LevelInfo})

	WithSession(log, "abc").Info("action processed", "room", "foyer")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v: %s", err, buf.String())
	}
	if entry["session_id"] != "abc" || entry["room"] != "foyer" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, &config.Config{Environment: "development", LogLevel: slog.LevelWarn})

	log.Info("quiet")
	WithError(log, errors.New("boom")).Warn("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("info line should be filtered: %s", out)
	}
	if !strings.Contains(out, "error=boom") {
		t.Errorf("warn line missing error attr: %s", out)
	}
}
