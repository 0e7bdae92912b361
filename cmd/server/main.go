// Package main is the entry point for the intervw API server.
//
// main stays minimal: read configuration, build the logger, make sure the
// database directory exists, then hand everything to internal/server. All
// behaviour lives in the imported packages so it can be tested without a
// process.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sakif/intervw/internal/config"
	"github.com/sakif/intervw/internal/logger"
	"github.com/sakif/intervw/internal/server"
)

func main() {
	// === 1. CONFIGURATION ===
	// Environment variables, optionally seeded from .env. JWT_SECRET has no
	// default, so a bare `go run` fails fast here with a clear message.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. LOGGING ===
	log := logger.New(os.Stdout, logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(log)

	// === 3. DATABASE DIRECTORY ===
	// SQLite creates the file but not its parent directory.
	if cfg.DBPath != ":memory:" {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			log.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	// === 4. RUN ===
	// Ctrl+C or SIGTERM cancels ctx, and Start then shuts down gracefully.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(ctx); err != nil {
		log.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
