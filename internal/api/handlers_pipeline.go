// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"errors"
	"net/http"

	"github.com/ManuGH/gstmgr/internal/gst"
	"github.com/ManuGH/gstmgr/internal/log"
)

// PipelineResponse describes the managed pipeline.
type PipelineResponse struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	State       string `json:"state"`
	Pending     string `json:"pending,omitempty"`
	Result      string `json:"result"`
}

func (s *Server) handleGetPipeline(w http.ResponseWriter, r *http.Request) {
	q, err := s.pipeline.QueryState(s.cfg.StateTimeout)
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}

	resp := PipelineResponse{
		ID:          s.pipeline.ID(),
		Description: s.pipeline.Description(),
		State:       q.Current.String(),
		Result:      q.Return.String(),
	}
	if q.Pending != gst.StateVoidPending {
		resp.Pending = q.Pending.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStartPipeline(w http.ResponseWriter, r *http.Request) {
	s.changeState(w, r, "start", s.pipeline.Start)
}

func (s *Server) handleStopPipeline(w http.ResponseWriter, r *http.Request) {
	s.changeState(w, r, "stop", s.pipeline.Stop)
}

func (s *Server) changeState(w http.ResponseWriter, r *http.Request, action string, fn func() error) {
	logger := log.WithComponentFromContext(r.Context(), "api")
	if err := fn(); err != nil {
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "pipeline."+action+".failed").
			Msg("pipeline state change failed")
		writeError(w, r, statusFor(err), err)
		return
	}
	logger.Info().
		Str(log.FieldEvent, "pipeline."+action).
		Msg("pipeline state change requested")
	w.WriteHeader(http.StatusNoContent)
}

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, gst.ErrClosed), errors.Is(err, gst.ErrEngineUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
