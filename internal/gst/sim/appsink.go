// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package sim

import (
	"context"
	"io"
	"sync"

	"github.com/ManuGH/gstmgr/internal/gst"
)

// appSink queues buffers until the application pulls them. When the queue is
// full the oldest buffer is dropped.
type appSink struct {
	name       string
	maxBuffers int

	mu       sync.Mutex
	queue    []*gst.Buffer
	eos      bool
	flushing bool
	changed  chan struct{}
	onNew    func()
	dropped  int
}

func newAppSink(name string, maxBuffers int) *appSink {
	if maxBuffers <= 0 {
		maxBuffers = DefaultMaxBuffers
	}
	return &appSink{
		name:       name,
		maxBuffers: maxBuffers,
		flushing:   true,
		changed:    make(chan struct{}),
	}
}

// broadcast wakes every waiting puller. Caller holds mu.
func (s *appSink) broadcast() {
	close(s.changed)
	s.changed = make(chan struct{})
}

func (s *appSink) enqueue(buf *gst.Buffer) bool {
	s.mu.Lock()
	if s.flushing || s.eos {
		s.mu.Unlock()
		return false
	}
	if len(s.queue) >= s.maxBuffers {
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.dropped++
	}
	s.queue = append(s.queue, buf)
	s.broadcast()
	notify := s.onNew
	s.mu.Unlock()

	if notify != nil {
		notify()
	}
	return true
}

func (s *appSink) endOfStream() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.eos {
		return
	}
	s.eos = true
	s.broadcast()
}

// setFlushing drops queued data when entering flushing and clears EOS when
// leaving it.
func (s *appSink) setFlushing(flushing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flushing == flushing {
		return
	}
	s.flushing = flushing
	if flushing {
		s.queue = nil
	} else {
		s.eos = false
	}
	s.broadcast()
}

// PullBuffer implements gst.AppSink.
func (s *appSink) PullBuffer(ctx context.Context) (*gst.Buffer, error) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			buf := s.queue[0]
			s.queue[0] = nil
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return buf, nil
		}
		if s.eos {
			s.mu.Unlock()
			return nil, io.EOF
		}
		if s.flushing {
			s.mu.Unlock()
			return nil, gst.ErrFlushing
		}
		ch := s.changed
		s.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// TryPullBuffer implements gst.AppSink.
func (s *appSink) TryPullBuffer() (*gst.Buffer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return nil, false
	}
	buf := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	return buf, true
}

// OnNewSample implements gst.AppSink.
func (s *appSink) OnNewSample(fn func()) {
	s.mu.Lock()
	s.onNew = fn
	s.mu.Unlock()
}

// Dropped reports how many buffers were discarded because the queue was full.
func (s *appSink) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

var _ gst.AppSink = (*appSink)(nil)
