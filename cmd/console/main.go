package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/adventure-engine/internal/logger"
	"github.com/jwebster45206/adventure-engine/internal/session"
	"github.com/jwebster45206/adventure-engine/pkg/content"
	"github.com/jwebster45206/adventure-engine/pkg/textfilter"
)

type ConsoleConfig struct {
	APIBaseURL    string // Empty plays in process
	Timeout       time.Duration
	DataDir       string
	AmbientChance float64
	ContentRating string
}

func main() {
	cfg := &ConsoleConfig{
		APIBaseURL:    getEnv("API_BASE_URL", ""),
		Timeout:       30 * time.Second,
		DataDir:       getEnv("DATA_DIR", ""),
		ContentRating: getEnv("CONTENT_RATING", "PG13"),
	}
	chance, err := strconv.ParseFloat(getEnv("AMBIENT_CHANCE", "0.1"), 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid AMBIENT_CHANCE: %v\n", err)
		os.Exit(1)
	}
	cfg.AmbientChance = chance

	game, err := newGame(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(game),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func newGame(cfg *ConsoleConfig) (Game, error) {
	if cfg.APIBaseURL != "" {
		client := &http.Client{Timeout: cfg.Timeout}
		if !testConnection(client, cfg.APIBaseURL) {
			return nil, fmt.Errorf("could not connect to API at %s. Please ensure the API is running", cfg.APIBaseURL)
		}
		return newRemoteGame(client, cfg.APIBaseURL), nil
	}

	catalog, err := content.NewCatalog(cfg.DataDir, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenarios: %w", err)
	}
	manager := session.NewManager(catalog, session.NewMemoryStore(0), nil, session.Options{
		AmbientChance: cfg.AmbientChance,
		BookFlavor:    true,
		Filter:        textfilter.New(textfilter.ParseRating(cfg.ContentRating)),
	}, logger.Discard())
	return newLocalGame(manager), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// background bounds each call made from a tea.Cmd.
func background() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
