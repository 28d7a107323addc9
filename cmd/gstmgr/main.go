// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// gstmgr runs a single GStreamer pipeline behind an HTTP control API.
//
// Usage:
//
//	gstmgr [-config config.yaml]
//	gstmgr -version
//	gstmgr validate -f config.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ManuGH/gstmgr/internal/api"
	"github.com/ManuGH/gstmgr/internal/config"
	"github.com/ManuGH/gstmgr/internal/daemon"
	"github.com/ManuGH/gstmgr/internal/gst"
	xglog "github.com/ManuGH/gstmgr/internal/log"
	"github.com/ManuGH/gstmgr/internal/version"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "validate" {
		os.Exit(runValidate(os.Args[2:], os.Stdout, os.Stderr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(runDaemon(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// runDaemon loads the configuration and serves until ctx is cancelled.
// It returns the process exit code.
func runDaemon(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("gstmgr", flag.ContinueOnError)
	fs.SetOutput(stderr)
	showVersion := fs.Bool("version", false, "print version and exit")
	configPath := fs.String("config", "", "path to config file (YAML)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		_, _ = fmt.Fprintln(stdout, version.String())
		return 0
	}

	// Configure logger with safe defaults until config is loaded
	xglog.Configure(xglog.Config{
		Level:   "info",
		Output:  stderr,
		Service: config.DefaultLogService,
		Version: version.Version,
	})
	logger := xglog.WithComponent("daemon")

	path := strings.TrimSpace(*configPath)
	cfg, err := config.NewLoader(path, version.Version).Load()
	if err != nil {
		logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "config.load_failed").
			Str(xglog.FieldPath, path).
			Msg("failed to load configuration")
		return 1
	}

	// Re-configure logger with loaded configuration
	xglog.Configure(xglog.Config{
		Level:   cfg.LogLevel,
		Output:  stderr,
		Service: cfg.LogService,
		Version: cfg.Version,
	})
	logger = xglog.WithComponent("daemon")

	source := "env+defaults"
	if path != "" {
		source = "file"
	}
	logger.Info().
		Str(xglog.FieldEvent, "config.loaded").
		Str("source", source).
		Str(xglog.FieldPath, path).
		Str(xglog.FieldEngine, cfg.Engine).
		Msg("configuration loaded")

	if err := serve(ctx, cfg); err != nil {
		logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "daemon.failed").
			Msg("daemon stopped with error")
		return 1
	}
	logger.Info().Str(xglog.FieldEvent, "daemon.stopped").Msg("daemon stopped")
	return 0
}

// serve wires the engine, pipeline, recorder and HTTP server for cfg and
// runs them until ctx is cancelled.
func serve(ctx context.Context, cfg config.AppConfig) error {
	engine, err := newEngine(cfg.Engine)
	if err != nil {
		return err
	}

	pipeline, err := gst.New(engine, cfg.Pipeline.Description)
	if err != nil {
		return err
	}

	recorder := gst.NewRecorder(engine, gst.RecorderConfig{
		Dir:         cfg.Recording.Dir,
		Description: cfg.Recording.Description,
		MaxBuffers:  cfg.Recording.MaxBuffers,
	})

	srv := api.New(api.Config{
		Version:      cfg.Version,
		RateLimit:    cfg.API.RateLimit,
		StateTimeout: cfg.Pipeline.StateTimeout,
		RecordingDir: cfg.Recording.Dir,
	}, pipeline, recorder)

	mgr, err := daemon.NewManager(daemon.DefaultServerConfig(cfg.API.ListenAddr), daemon.Deps{
		Logger:     xglog.Base(),
		APIHandler: srv.Handler(),
	})
	if err != nil {
		_ = pipeline.Close()
		return err
	}

	app := daemon.NewApp(xglog.WithComponent("app"), mgr, pipeline, cfg.Pipeline.AutoStart)
	return app.Run(ctx)
}
