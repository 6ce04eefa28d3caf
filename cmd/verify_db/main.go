package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/david/studio-desk/internal/config"
	"github.com/david/studio-desk/internal/db"
	"github.com/david/studio-desk/internal/logging"
	"github.com/david/studio-desk/internal/models"
	"github.com/jedib0t/go-pretty/v6/table"
)

// verify_db applies pending migrations and prints what the database holds.
func main() {
	cfg, err := config.Load(os.Getenv("STUDIO_CONFIG"))
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logging.Init(cfg.LogLevel)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("unable to connect to database", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		slog.Error("migration failed", "err", err)
		os.Exit(1)
	}

	store := db.NewPostgresStore(pool)
	counts, err := store.Counts(ctx)
	if err != nil {
		slog.Error("count query failed", "err", err)
		os.Exit(1)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Table", "Rows"})
	t.AppendRow(table.Row{"projects", counts.Projects})
	t.AppendRow(table.Row{"funding_opportunities", counts.Opportunities})
	t.AppendRow(table.Row{"assets", counts.Assets})
	t.Render()

	upcoming, err := store.UpcomingDeadlines(ctx, models.DateOf(time.Now()), 3)
	if err != nil {
		slog.Error("deadline query failed", "err", err)
		os.Exit(1)
	}
	if len(upcoming) == 0 {
		return
	}
	d := table.NewWriter()
	d.SetOutputMirror(os.Stdout)
	d.AppendHeader(table.Row{"Funder", "Programme", "Deadline", "Status"})
	for _, o := range upcoming {
		d.AppendRow(table.Row{o.FunderName, o.ProgrammeName, o.Deadline.String(), o.Status})
	}
	d.Render()
}
