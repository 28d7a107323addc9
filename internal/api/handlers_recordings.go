// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"errors"
	"net/http"

	"github.com/ManuGH/gstmgr/internal/log"
)

var (
	errRecordingDisabled = errors.New("recording is not configured")
	errRecordingBusy     = errors.New("a recording is already in progress")
)

func (s *Server) handleCreateRecording(w http.ResponseWriter, r *http.Request) {
	if s.recorder == nil {
		writeError(w, r, http.StatusServiceUnavailable, errRecordingDisabled)
		return
	}
	if !s.recording.TryAcquire(1) {
		writeError(w, r, http.StatusConflict, errRecordingBusy)
		return
	}
	defer s.recording.Release(1)

	rec, err := s.recorder.MakeRecording(r.Context())
	if err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "recording.failed").
			Msg("recording request failed")
		writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}
