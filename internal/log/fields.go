// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID   = "request_id"
	FieldPipelineID  = "pipeline_id"
	FieldRecordingID = "recording_id"

	// Process / pipeline fields
	FieldEvent       = "event"
	FieldComponent   = "component"
	FieldDescription = "description"
	FieldEngine      = "engine"
	FieldElement     = "element"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"
	FieldPending  = "pending_state"
	FieldResult   = "result"

	// Buffer fields
	FieldBytes   = "bytes"
	FieldBuffers = "buffers"

	// Path / network fields
	FieldPath       = "path"
	FieldListenAddr = "listen_addr"
)
