// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/gstmgr/internal/log"
	"github.com/rs/zerolog"
)

// Pipeline is the part of the managed pipeline the daemon drives.
type Pipeline interface {
	ID() string
	Start() error
	Close() error
}

// App owns the long-lived runtime lifecycle and delegates server
// management to Manager.
type App struct {
	logger    zerolog.Logger
	manager   Manager
	pipeline  Pipeline
	autoStart bool
}

// NewApp creates a new App orchestrator. pipeline may be nil.
func NewApp(logger zerolog.Logger, manager Manager, pipeline Pipeline, autoStart bool) *App {
	return &App{
		logger:    logger,
		manager:   manager,
		pipeline:  pipeline,
		autoStart: autoStart,
	}
}

// Run starts the server, optionally starts the pipeline and blocks until ctx
// is cancelled or a fatal error occurs. The pipeline is closed on shutdown.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	if a.pipeline != nil {
		a.manager.RegisterShutdownHook("pipeline", func(context.Context) error {
			return a.pipeline.Close()
		})
	}

	g, ctx := errgroup.WithContext(ctx)

	if a.autoStart && a.pipeline != nil {
		g.Go(func() error {
			if err := a.pipeline.Start(); err != nil {
				return fmt.Errorf("autostart pipeline: %w", err)
			}
			a.logger.Info().
				Str(log.FieldEvent, "pipeline.autostarted").
				Str(log.FieldPipelineID, a.pipeline.ID()).
				Msg("pipeline started")
			return nil
		})
	}

	// Main server lifecycle.
	g.Go(func() error {
		err := a.manager.Start(ctx)
		if err != nil {
			_ = a.manager.Shutdown(context.Background())
		}
		return err
	})

	return g.Wait()
}
