// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package sim

import (
	"fmt"
	"sync/atomic"

	"github.com/ManuGH/gstmgr/internal/gst"
)

// appSrc forwards pushed buffers to the appsink at the end of its chain, if any.
type appSrc struct {
	name   string
	p      *pipeline
	sink   *appSink
	pushed atomic.Int64
	eos    atomic.Bool
}

// PushBuffer implements gst.AppSrc.
func (s *appSrc) PushBuffer(buf *gst.Buffer) error {
	if !s.p.accepting() {
		return fmt.Errorf("%s: %w", s.name, gst.ErrFlushing)
	}
	if s.eos.Load() {
		return fmt.Errorf("%s: push after end of stream", s.name)
	}
	s.pushed.Add(1)
	if s.sink != nil {
		s.sink.enqueue(buf)
	}
	return nil
}

// EndOfStream implements gst.AppSrc.
func (s *appSrc) EndOfStream() error {
	if !s.p.accepting() {
		return fmt.Errorf("%s: %w", s.name, gst.ErrFlushing)
	}
	s.eos.Store(true)
	if s.sink != nil {
		s.sink.endOfStream()
	}
	return nil
}

// Pushed reports how many buffers were accepted.
func (s *appSrc) Pushed() int64 { return s.pushed.Load() }

var _ gst.AppSrc = (*appSrc)(nil)
