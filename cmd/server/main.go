// Package main implements the entry point for the ThinkEx clusters API
// server, which maintains a hierarchical knowledge store (cluster lists,
// clusters, cards) and fans committed mutations out to live subscribers.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/thinkex/clusters-api/internal/config"
	"github.com/thinkex/clusters-api/internal/platform/logger"
)

func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.run(context.Background()); err != nil {
		app.logger.Error("server exited with error", slog.String("error", err.Error()))
		app.cleanup()
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration, sets up logging, and wires the
// application's dependencies.
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("broadcast_channel", cfg.Broadcast.Channel))

	return newApplication(cfg, appLogger)
}
