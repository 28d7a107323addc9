// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"net/http"

	"github.com/ManuGH/gstmgr/internal/api/middleware"
	"github.com/ManuGH/gstmgr/internal/log"
	"github.com/go-chi/chi/v5"
)

func (s *Server) routes() http.Handler {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableMetrics: true,
		EnableLogging: true,
	})

	// Probes and metrics are not rate limited.
	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	r.Method(http.MethodGet, "/metrics", s.metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.APIRateLimit(s.cfg.RateLimit))
		r.Use(s.withPipelineID)

		r.Get("/pipeline", s.handleGetPipeline)
		r.Post("/pipeline/start", s.handleStartPipeline)
		r.Post("/pipeline/stop", s.handleStopPipeline)
		r.Post("/recordings", s.handleCreateRecording)
	})
	return r
}

// withPipelineID tags the request context so handler logs carry the pipeline ID.
func (s *Server) withPipelineID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := log.ContextWithPipelineID(r.Context(), s.pipeline.ID())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
