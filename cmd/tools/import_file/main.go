package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/david/studio-desk/internal/ai"
	"github.com/david/studio-desk/internal/config"
	"github.com/david/studio-desk/internal/db"
	"github.com/david/studio-desk/internal/ingest"
	"github.com/david/studio-desk/internal/logging"
)

// import_file runs the opportunity import for one document directly against
// the database, without the API server.
func main() {
	path := flag.String("file", "", "document to import (.pdf, .txt, .md or .html)")
	flag.Parse()

	cfg, err := config.Load(os.Getenv("STUDIO_CONFIG"))
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logging.Init(cfg.LogLevel)

	if *path == "" {
		slog.Error("please provide a document using -file")
		os.Exit(2)
	}
	content, err := os.ReadFile(*path)
	if err != nil {
		slog.Error("failed to read document", "file", *path, "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		slog.Error("migration failed", "err", err)
		os.Exit(1)
	}

	ollama := ai.NewOllamaClient(cfg.Ollama.Host, cfg.Ollama.Model, cfg.Ollama.Timeout)
	pipeline := ingest.NewPipeline(db.NewPostgresStore(pool), ollama, nil)

	added, err := pipeline.ImportDocument(ctx, filepath.Base(*path), content)
	if err != nil {
		slog.Error("import failed", "file", *path, "err", err)
		os.Exit(1)
	}
	for _, o := range added {
		slog.Info("imported", "funder", o.FunderName, "programme", o.ProgrammeName, "deadline", o.Deadline.String())
	}
	slog.Info("import finished", "file", *path, "saved", len(added))
}
