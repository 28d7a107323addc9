// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"

	"github.com/ManuGH/gstmgr/internal/config"
	"github.com/ManuGH/gstmgr/internal/gst"
	"github.com/ManuGH/gstmgr/internal/gst/native"
	"github.com/ManuGH/gstmgr/internal/gst/sim"
)

// newEngine returns the pipeline engine selected by name.
func newEngine(name string) (gst.Engine, error) {
	switch name {
	case config.EngineSim:
		return sim.New(), nil
	case config.EngineGStreamer:
		if !native.Available {
			return nil, fmt.Errorf("%w: rebuild with -tags gstreamer", gst.ErrEngineUnavailable)
		}
		return native.New(), nil
	default:
		return nil, fmt.Errorf("unknown engine %q", name)
	}
}
