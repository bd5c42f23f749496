// Package server wires the sync gateway: it opens the Postgres remote store,
// applies migrations, and serves it over gRPC until a shutdown signal.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/dmitrijs2005/stockkeeper/internal/remote"
	"github.com/dmitrijs2005/stockkeeper/internal/remote/postgres"
	"github.com/dmitrijs2005/stockkeeper/internal/server/config"

	gs "github.com/dmitrijs2005/stockkeeper/internal/server/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger
	store  remote.Store
}

// openStore is a seam for tests.
var openStore = func(ctx context.Context, dsn string) (remote.Store, error) {
	return postgres.Open(ctx, dsn)
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewStdoutLogger(slog.LevelInfo)

	store, err := openStore(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	return &App{config: c, logger: logger, store: store}, nil
}

func (app *App) initSignalHandler(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
}

// Run serves until ctx is cancelled or a shutdown signal arrives, then
// closes the store.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := app.initSignalHandler(ctx)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.store, app.config.RequestTimeout)
	err := s.Run(ctx)

	if cerr := app.store.Close(); cerr != nil {
		app.logger.Error(ctx, "closing store", "error", cerr)
	}
	if err != nil {
		app.logger.Error(ctx, err.Error())
		return err
	}

	app.logger.Info(ctx, "Stopped")
	return nil
}
