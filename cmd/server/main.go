// Package main implements the entry point for the drill API server, which
// tracks per-concept mastery for study projects and targets quiz generation
// at the concepts a user is weakest on.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"

	"github.com/phrazzld/drill-api/internal/config"
	"github.com/phrazzld/drill-api/internal/platform/logger"
)

// main parses command-line flags and dispatches to either the migration
// runner or the long-running server. All real work happens in run so that
// error paths share a single exit point.
func main() {
	migrateCmd := flag.String(
		"migrate",
		"",
		"Run a database migration command (up, down, status, version, reset) and exit",
	)
	verbose := flag.Bool("verbose", false, "Enable verbose migration logging")
	flag.Parse()

	if err := run(*migrateCmd, *verbose); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

// run loads configuration, sets up logging, and either executes the
// requested migration command or starts the HTTP server.
func run(migrateCmd string, verbose bool) error {
	cfg, appLogger, err := initializeApp()
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		return handleMigrations(cfg, migrateCmd, verbose)
	}

	ctx := context.Background()

	db, err := openDatabase(ctx, cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		// The application owns the connection once constructed; on a
		// construction error it is still ours to close.
		if closeErr := db.Close(); closeErr != nil {
			appLogger.Error("Error closing database connection", "error", closeErr)
		}
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}

// initializeApp loads configuration and sets up structured logging.
// Returns the loaded config, the configured logger, and any initialization
// error.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_driver", cfg.Database.Driver,
		"llm_provider", cfg.LLM.Provider)

	// Presence checks only; secret values never reach the logs.
	if cfg.Database.URL != "" {
		slog.Debug("Database configuration", "url_present", true)
	}
	if cfg.Auth.JWTSecret != "" {
		slog.Debug("Auth configuration", "jwt_secret_present", true)
	}

	return cfg, appLogger, nil
}
