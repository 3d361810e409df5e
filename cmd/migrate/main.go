package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/sadh911122-sudo/Dark-Triad/internal/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	var (
		dir     = flag.String("dir", "migrations", "directory with migration files")
		command = flag.String("command", "up", "goose command (up, down, status, version)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ctx := context.Background()

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		logger.Error("invalid database configuration", slog.Any("error", err))
		os.Exit(1)
	}

	db := stdlib.OpenDB(*poolCfg.ConnConfig)
	defer db.Close()

	if err := goose.RunContext(ctx, *command, db, *dir); err != nil {
		logger.Error("migration failed",
			slog.String("command", *command),
			slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("migration complete", slog.String("command", *command))
}
