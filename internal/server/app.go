// Package server initializes and runs the storage gateway. It wires the
// database, the blob backend, the storage service and the HTTP API, and
// handles graceful shutdown and the optional in-process cleanup loop.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ADevelopere/storagegate/internal/logging"
	"github.com/ADevelopere/storagegate/internal/server/blobstore"
	"github.com/ADevelopere/storagegate/internal/server/config"
	"github.com/ADevelopere/storagegate/internal/server/httpapi"
	"github.com/ADevelopere/storagegate/internal/server/shared/db"
	"github.com/ADevelopere/storagegate/internal/server/storage"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	manager db.RepositoryManager
	storage *storage.Service
	api     *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewJSONLogger()

	manager, err := db.NewPostgresRepositoryManager(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := manager.RunMigrations(ctx); err != nil {
		manager.Close()
		return nil, err
	}

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		manager.Close()
		return nil, err
	}

	svc := storage.NewService(manager.Tokens(), manager.Files(), blobs, logger)
	api := httpapi.NewServer(cfg, logger, svc)

	return &App{
		config:  cfg,
		logger:  logger,
		manager: manager,
		storage: svc,
		api:     api,
	}, nil
}

func newBlobStore(ctx context.Context, cfg *config.Config) (blobstore.Store, error) {
	switch cfg.StorageBackend {
	case "local":
		return blobstore.NewLocal(cfg.StorageRoot)
	case "s3":
		return blobstore.NewS3(ctx, blobstore.S3Config{
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.StorageBackend)
	}
}

// Run serves until an OS signal or a fatal server error, then shuts down.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sigs)

	go func() {
		select {
		case sig := <-sigs:
			app.logger.Info(ctx, "signal received, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.api.Run(ctx)
	})

	if app.config.CleanupInterval > 0 {
		g.Go(func() error {
			app.cleanupLoop(ctx, app.config.CleanupInterval)
			return nil
		})
	}

	err := g.Wait()
	if closeErr := app.manager.Close(); closeErr != nil {
		app.logger.Error(ctx, "closing db", "error", closeErr)
	}
	return err
}

// cleanupLoop purges expired tokens on a fixed interval. Errors are
// logged and the loop keeps going; a transient db outage should not kill
// the server.
func (app *App) cleanupLoop(ctx context.Context, interval time.Duration) {
	app.logger.Info(ctx, "starting cleanup loop", "interval", interval.String())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := app.storage.CleanupExpired(ctx); err != nil {
				app.logger.Error(ctx, "scheduled cleanup failed", "error", err)
			}
		}
	}
}
