package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/david/studio-desk/internal/ai"
	"github.com/david/studio-desk/internal/api"
	"github.com/david/studio-desk/internal/config"
	"github.com/david/studio-desk/internal/db"
	"github.com/david/studio-desk/internal/ingest"
	"github.com/david/studio-desk/internal/logging"
	"github.com/david/studio-desk/internal/studio"
)

func main() {
	cfg, err := config.Load(os.Getenv("STUDIO_CONFIG"))
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logging.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "store", cfg.Store, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	ollama := ai.NewOllamaClient(cfg.Ollama.Host, cfg.Ollama.Model, cfg.Ollama.Timeout)
	pipeline := ingest.NewPipeline(store, ollama, nil)
	svc := studio.NewService(store, pipeline, ollama)

	srv := api.NewServer(svc, api.Options{
		CORSOrigins:    cfg.CORSOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "err", err)
		}
	}()

	slog.Info("server starting", "port", cfg.Port, "store", cfg.Store, "ollama", cfg.Ollama.Host, "model", cfg.Ollama.Model)
	if err := srv.Start(cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

// openStore connects to Postgres and migrates it, or returns the in-memory
// store for local demos.
func openStore(ctx context.Context, cfg config.Config) (db.Store, func(), error) {
	if cfg.Store == config.StoreMemory {
		slog.Warn("using in-memory store; data is lost on exit")
		return db.NewMemoryStore(), func() {}, nil
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.ApplyMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return db.NewPostgresStore(pool), pool.Close, nil
}
