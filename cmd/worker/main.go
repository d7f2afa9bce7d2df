package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/adventure-engine/internal/config"
	"github.com/jwebster45206/adventure-engine/internal/logger"
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

	log.Info("Starting Adventure Engine Worker",
		"environment", cfg.Environment,
		"redis_url", cfg.RedisURL)

	// The queue and the sessions live in Redis; a memory store would be
	// invisible to the API.
	if cfg.SessionStore != config.StoreRedis {
		log.Error("Worker requires SESSION_STORE=redis", "session_store", cfg.SessionStore)
		os.Exit(1)
	}

	tp, err := observability.InitTracing(context.Background(), observability.Config{
		ServiceName:    "adventure-engine-worker",
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

	store, err := session.NewRedisStore(cfg.RedisURL, cfg.SessionTTL, log)
	if err != nil {
		log.Error("Failed to configure Redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing session store", "error", err)
		}
	}()

	connectCtx, connectCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	err = store.WaitForConnection(connectCtx, 30, 2*time.Second)
	connectCancel()
	if err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("Redis connection established successfully")

	manager := session.NewManager(catalog, store, session.NewBroadcaster(store.Client(), log), session.Options{
		AmbientChance: cfg.AmbientChance,
		Seed:          cfg.RNGSeed,
		BookFlavor:    cfg.Flavor == config.FlavorBooks,
		Filter:        textfilter.New(textfilter.ParseRating(cfg.ContentRating)),
		Locker:        session.NewRedisLocker(store.Client(), log),
	}, log)

	w := worker.New(queue.NewRedisQueue(store.Client(), log), manager, log, cfg.WorkerID)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("Worker started, waiting for requests...", "worker_id", w.ID())
	if err := w.Run(ctx); err != nil {
		log.Error("Worker error", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Error("Error flushing traces", "error", err)
	}

	log.Info("Worker exited")
}
