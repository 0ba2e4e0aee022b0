// Package app wires a Cleaner from configuration for the command-line and
// event-handler entry points.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mattjoyce/s3-maven-cleaner/internal/cleaner"
	"github.com/mattjoyce/s3-maven-cleaner/internal/config"
	"github.com/mattjoyce/s3-maven-cleaner/internal/metrics"
	"github.com/mattjoyce/s3-maven-cleaner/internal/objectstore"
	"github.com/mattjoyce/s3-maven-cleaner/internal/objectstore/s3store"
	"github.com/mattjoyce/s3-maven-cleaner/internal/objectstore/sqlitestore"
)

// StoreOpener opens the object store a config points at.
type StoreOpener func(ctx context.Context, cfg config.StoreConfig) (objectstore.Store, io.Closer, error)

// OpenStore is the default StoreOpener.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (objectstore.Store, io.Closer, error) {
	switch cfg.Backend {
	case config.BackendS3, "":
		s, err := s3store.New(ctx, s3store.Config{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			PathStyle: cfg.PathStyle,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	case config.BackendSQLite:
		s, err := sqlitestore.Open(ctx, cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// App is a ready-to-run cleaner and the store it owns.
type App struct {
	Cleaner *cleaner.Cleaner
	Store   objectstore.Store
	closer  io.Closer
}

// Build opens the store and creates the cleaner. rec may be nil.
func Build(ctx context.Context, cfg *config.Config, open StoreOpener, rec metrics.Recorder, logger *slog.Logger) (*App, error) {
	if open == nil {
		open = OpenStore
	}
	store, closer, err := open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}

	logger.Info("store opened",
		"backend", cfg.Store.Backend,
		"bucket", cfg.Store.Bucket,
		"region", cfg.Store.Region,
		"path", cfg.Store.Path,
	)

	c := cleaner.New(store, cleaner.Options{
		Prefix:   cfg.Cleaner.Prefix,
		PageSize: cfg.Cleaner.PageSize,
		DryRun:   cfg.Cleaner.DryRun,
		FailFast: cfg.Cleaner.FailFast,
	}, rec, logger)
	return &App{Cleaner: c, Store: store, closer: closer}, nil
}

// Close releases the store.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
