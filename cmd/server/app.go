package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver

	"github.com/thinkex/clusters-api/internal/config"
	"github.com/thinkex/clusters-api/internal/events"
	"github.com/thinkex/clusters-api/internal/platform/postgres"
	"github.com/thinkex/clusters-api/internal/platform/ws"
	"github.com/thinkex/clusters-api/internal/service"
)

// application holds the wired dependencies of the running server.
type application struct {
	config      *config.Config
	logger      *slog.Logger
	db          *sql.DB
	hub         *ws.Hub
	dispatcher  *events.Dispatcher
	tokens      *ws.TokenService
	coordinator *service.Coordinator
}

// newApplication connects the database, runs migrations, and wires the
// broadcast hub, dispatcher, and coordinator together.
func newApplication(cfg *config.Config, appLogger *slog.Logger) (*application, error) {
	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, cfg, appLogger); err != nil {
		db.Close()
		return nil, err
	}

	hub := ws.NewHub(cfg.Broadcast.Channel, appLogger)

	dispatcher := events.NewDispatcher(hub, events.DispatcherConfig{
		QueueSize:      cfg.Broadcast.QueueSize,
		WorkerCount:    2,
		PublishTimeout: cfg.Broadcast.PublishTimeout,
	}, appLogger)

	repo := service.NewRepository(
		db,
		postgres.NewClusterListStore(db, appLogger),
		postgres.NewClusterStore(db, appLogger),
		postgres.NewCardStore(db, appLogger),
	)

	return &application{
		config:      cfg,
		logger:      appLogger,
		db:          db,
		hub:         hub,
		dispatcher:  dispatcher,
		tokens:      ws.NewTokenService(cfg.Broadcast),
		coordinator: service.NewCoordinator(repo, dispatcher, appLogger),
	}, nil
}

// run starts the dispatcher, seeds the default list, and serves HTTP until
// a shutdown signal arrives.
func (app *application) run(ctx context.Context) error {
	app.dispatcher.Start()

	if created, err := app.coordinator.EnsureDefaultClusterList(ctx); err != nil {
		return fmt.Errorf("failed to ensure default cluster list: %w", err)
	} else if created != nil {
		app.logger.Info("created default cluster list",
			slog.String("list_id", created.ID.String()),
			slog.String("title", created.Title))
	}

	return app.startHTTPServer(ctx, app.setupRouter())
}

// cleanup releases application resources in reverse dependency order.
func (app *application) cleanup() {
	app.dispatcher.Stop()
	app.hub.Close()

	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database connection",
			slog.String("error", err.Error()))
	}
}
