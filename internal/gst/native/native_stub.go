//go:build !cgo || !gstreamer

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package native binds the pipeline engine port to GStreamer through go-gst.
// This build carries no GStreamer support; rebuild with CGO_ENABLED=1 and
// -tags=gstreamer to enable it.
package native

import (
	"fmt"

	"github.com/ManuGH/gstmgr/internal/gst"
)

// Available reports whether this binary was built with GStreamer support.
const Available = false

// Engine is a placeholder that refuses every operation.
type Engine struct{}

// New returns the placeholder engine.
func New() *Engine { return &Engine{} }

// Name implements gst.Engine.
func (e *Engine) Name() string { return "gstreamer" }

// Init implements gst.Engine.
func (e *Engine) Init() error {
	return fmt.Errorf("%w: build requires CGO_ENABLED=1 and -tags=gstreamer", gst.ErrEngineUnavailable)
}

// ParseLaunch implements gst.Engine.
func (e *Engine) ParseLaunch(string) (gst.Pipeline, error) {
	return nil, gst.ErrEngineUnavailable
}

var _ gst.Engine = (*Engine)(nil)
