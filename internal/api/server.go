// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api provides the HTTP control surface of the gstmgr daemon.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ManuGH/gstmgr/internal/gst"
	"github.com/ManuGH/gstmgr/internal/health"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/semaphore"
)

// Pipeline is the managed pipeline as seen by the API.
type Pipeline interface {
	ID() string
	Description() string
	Start() error
	Stop() error
	QueryState(timeout time.Duration) (gst.StateQuery, error)
}

// Recorder produces recordings on demand.
type Recorder interface {
	MakeRecording(ctx context.Context) (gst.Recording, error)
}

// Config configures a Server.
type Config struct {
	Version string
	// RateLimit is requests per minute per client IP; 0 disables limiting.
	RateLimit int
	// StateTimeout bounds state queries issued by handlers.
	StateTimeout time.Duration
	// RecordingDir is reported by the readiness probe when set.
	RecordingDir string
}

// Server serves the control API for one pipeline.
type Server struct {
	cfg       Config
	pipeline  Pipeline
	recorder  Recorder
	health    *health.Manager
	recording *semaphore.Weighted
	metrics   http.Handler
}

// New returns a Server for p. rec may be nil, in which case recording
// requests are rejected.
func New(cfg Config, p Pipeline, rec Recorder) *Server {
	if cfg.StateTimeout <= 0 {
		cfg.StateTimeout = 5 * time.Second
	}

	hm := health.NewManager(cfg.Version)
	hm.RegisterChecker(health.NewPipelineChecker(p, cfg.StateTimeout))
	if cfg.RecordingDir != "" {
		hm.RegisterChecker(health.NewDirectoryChecker("recordings", cfg.RecordingDir))
	}

	return &Server{
		cfg:       cfg,
		pipeline:  p,
		recorder:  rec,
		health:    hm,
		recording: semaphore.NewWeighted(1),
		metrics:   promhttp.Handler(),
	}
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.routes()
}
