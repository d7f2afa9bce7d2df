package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/adventure-engine/internal/config"
	"github.com/jwebster45206/adventure-engine/internal/handlers"
	"github.com/jwebster45206/adventure-engine/internal/logger"
	"github.com/jwebster45206/adventure-engine/internal/middleware"
	"github.com/jwebster45206/adventure-engine/internal/observability"
	"github.com/jwebster45206/adventure-engine/internal/queue"
	"github.com/jwebster45206/adventure-engine/internal/session"
	"github.com/jwebster45206/adventure-engine/internal/worker"
	"github.com/jwebster45206/adventure-engine/pkg/content"
	"github.com/jwebster45206/adventure-engine/pkg/textfilter"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Adventure Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"session_store", cfg.SessionStore,
		"content_rating", cfg.ContentRating)

	tp, err := observability.InitTracing(context.Background(), observability.Config{
		ServiceName:    "adventure-engine",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Environment,
		Enabled:        cfg.TracesEnabled,
		Endpoint:       cfg.OTLPEndpoint,
	})
	if err != nil {
		log.Error("Failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	catalog, err := content.NewCatalog(cfg.DataDir, log)
	if err != nil {
		log.Error("Failed to load scenarios", "error", err, "data_dir", cfg.DataDir)
		os.Exit(1)
	}

	var store session.Store
	var events *session.Broadcaster
	var locker session.Locker
	var actionQueue queue.Queue
	switch cfg.SessionStore {
	case config.StoreRedis:
		redisStore, err := session.NewRedisStore(cfg.RedisURL, cfg.SessionTTL, log)
		if err != nil {
			log.Error("Failed to configure Redis", "error", err)
			os.Exit(1)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		err = redisStore.WaitForConnection(ctx, 30, 2*time.Second)
		cancel()
		if err != nil {
			log.Error("Failed to connect to session store", "error", err)
			os.Exit(1)
		}
		store = redisStore
		events = session.NewBroadcaster(redisStore.Client(), log)
		locker = session.NewRedisLocker(redisStore.Client(), log)
		actionQueue = queue.NewRedisQueue(redisStore.Client(), log)
	default:
		store = session.NewMemoryStore(cfg.SessionTTL)
		events = session.NewBroadcaster(nil, log)
		// Nothing outside this process can drain an in-memory queue
		if cfg.Workers > 0 {
			actionQueue = queue.NewMemoryQueue(cfg.QueueSize)
		}
	}
	log.Info("Session store ready", "store", cfg.SessionStore, "ttl", cfg.SessionTTL)

	manager := session.NewManager(catalog, store, events, session.Options{
		AmbientChance: cfg.AmbientChance,
		Seed:          cfg.RNGSeed,
		BookFlavor:    cfg.Flavor == config.FlavorBooks,
		Filter:        textfilter.New(textfilter.ParseRating(cfg.ContentRating)),
		Locker:        locker,
	}, log)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	if actionQueue != nil {
		for i := range cfg.Workers {
			id := ""
			if cfg.WorkerID != "" {
				id = fmt.Sprintf("%s-%d", cfg.WorkerID, i)
			}
			w := worker.New(actionQueue, manager, log, id)
			go func() {
				if err := w.Run(workerCtx); err != nil {
					log.Error("Worker error", "error", err, "worker_id", w.ID())
				}
			}()
		}
		log.Info("Queued actions enabled", "in_process_workers", cfg.Workers)
	}

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler(manager, log))
	mux.Handle("/v1/scenarios", handlers.NewScenarioHandler(log, manager))

	sessionHandler := handlers.NewSessionHandler(manager, log)
	if actionQueue != nil {
		sessionHandler.WithQueue(actionQueue)
	}
	mux.Handle("/v1/sessions", sessionHandler)
	mux.Handle("/v1/sessions/", sessionHandler)

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     middleware.Tracing(middleware.Logger(log, mux)),
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: websocket streams manage their own deadlines
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}
	stopWorkers()
	if err := store.Close(); err != nil {
		log.Error("Error closing session store", "error", err)
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Error("Error flushing traces", "error", err)
	}

	log.Info("Server exited")
}
