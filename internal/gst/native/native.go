//go:build cgo && gstreamer

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package native binds the pipeline engine port to GStreamer through go-gst.
//
// # Build Requirements
//
// CGO, the GStreamer 1.x development headers and the 'gstreamer' build tag:
//
//	CGO_ENABLED=1 go build -tags=gstreamer ./...
//	CGO_ENABLED=1 go test -tags=gstreamer ./internal/gst/native/...
package native

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ManuGH/gstmgr/internal/gst"
	gogst "github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"
)

// pullPoll bounds each blocking pull so context cancellation is observed.
const pullPoll = 100 * time.Millisecond

// Available reports whether this binary was built with GStreamer support.
const Available = true

// Engine drives real GStreamer pipelines.
type Engine struct{}

// New returns the GStreamer engine.
func New() *Engine { return &Engine{} }

// Name implements gst.Engine.
func (e *Engine) Name() string { return "gstreamer" }

// Init implements gst.Engine.
func (e *Engine) Init() error {
	gogst.Init(nil)
	return nil
}

// ParseLaunch implements gst.Engine.
func (e *Engine) ParseLaunch(description string) (gst.Pipeline, error) {
	p, err := gogst.NewPipelineFromString(description)
	if err != nil {
		return nil, err
	}
	return &pipeline{p: p}, nil
}

type pipeline struct {
	mu     sync.Mutex
	p      *gogst.Pipeline
	closed bool
}

func toNative(s gst.State) gogst.State {
	switch s {
	case gst.StateNull:
		return gogst.StateNull
	case gst.StateReady:
		return gogst.StateReady
	case gst.StatePaused:
		return gogst.StatePaused
	case gst.StatePlaying:
		return gogst.StatePlaying
	}
	return gogst.VoidPending
}

func fromNative(s gogst.State) gst.State {
	switch s {
	case gogst.StateNull:
		return gst.StateNull
	case gogst.StateReady:
		return gst.StateReady
	case gogst.StatePaused:
		return gst.StatePaused
	case gogst.StatePlaying:
		return gst.StatePlaying
	}
	return gst.StateVoidPending
}

func fromNativeReturn(r gogst.StateChangeReturn) gst.StateChangeReturn {
	switch r {
	case gogst.StateChangeSuccess:
		return gst.StateChangeSuccess
	case gogst.StateChangeAsync:
		return gst.StateChangeAsync
	case gogst.StateChangeNoPreroll:
		return gst.StateChangeNoPreroll
	}
	return gst.StateChangeFailure
}

func (p *pipeline) handle() (*gogst.Pipeline, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, fmt.Errorf("pipeline released")
	}
	return p.p, nil
}

// SetState implements gst.Pipeline.
func (p *pipeline) SetState(target gst.State) (gst.StateChangeReturn, error) {
	h, err := p.handle()
	if err != nil {
		return gst.StateChangeFailure, err
	}
	if err := h.SetState(toNative(target)); err != nil {
		return gst.StateChangeFailure, err
	}
	// go-gst folds the return code into err; ask once without waiting to
	// report ASYNC transitions faithfully.
	ret, _ := h.GetState(gogst.VoidPending, 0)
	return fromNativeReturn(ret), nil
}

// GetState implements gst.Pipeline.
func (p *pipeline) GetState(timeout time.Duration) (gst.StateQuery, error) {
	h, err := p.handle()
	if err != nil {
		return gst.StateQuery{}, err
	}
	clock := gogst.ClockTimeNone
	if timeout >= 0 {
		clock = gogst.ClockTime(timeout.Nanoseconds())
	}
	ret, pending := h.GetState(gogst.VoidPending, clock)
	q := gst.StateQuery{
		Return:  fromNativeReturn(ret),
		Current: fromNative(h.GetCurrentState()),
	}
	if q.Return == gst.StateChangeAsync {
		q.Pending = fromNative(pending)
	}
	return q, nil
}

func (p *pipeline) element(factory, name string, missing error) (*gogst.Element, error) {
	h, err := p.handle()
	if err != nil {
		return nil, err
	}
	if name != "" {
		el, err := h.GetElementByName(name)
		if err != nil || el == nil {
			return nil, fmt.Errorf("%w: %q", missing, name)
		}
		return el, nil
	}
	elements, err := h.GetElements()
	if err != nil {
		return nil, err
	}
	for _, el := range elements {
		if f := el.GetFactory(); f != nil && f.GetName() == factory {
			return el, nil
		}
	}
	return nil, missing
}

// AppSink implements gst.Pipeline.
func (p *pipeline) AppSink(name string) (gst.AppSink, error) {
	el, err := p.element("appsink", name, gst.ErrNoAppSink)
	if err != nil {
		return nil, err
	}
	return &appSink{s: app.SinkFromElement(el)}, nil
}

// AppSrc implements gst.Pipeline.
func (p *pipeline) AppSrc(name string) (gst.AppSrc, error) {
	el, err := p.element("appsrc", name, gst.ErrNoAppSrc)
	if err != nil {
		return nil, err
	}
	return &appSrc{s: app.SrcFromElement(el)}, nil
}

// Close implements gst.Pipeline.
func (p *pipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	err := p.p.SetState(gogst.StateNull)
	p.p = nil
	return err
}

type appSink struct {
	s *app.Sink
}

// PullBuffer implements gst.AppSink.
func (a *appSink) PullBuffer(ctx context.Context) (*gst.Buffer, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sample := a.s.TryPullSample(pullPoll)
		if sample != nil {
			buf := sample.GetBuffer()
			if buf == nil {
				continue
			}
			return gst.NewBufferFromBytes(buf.Bytes()), nil
		}
		if a.s.IsEOS() {
			return nil, io.EOF
		}
	}
}

// TryPullBuffer implements gst.AppSink.
func (a *appSink) TryPullBuffer() (*gst.Buffer, bool) {
	sample := a.s.TryPullSample(0)
	if sample == nil {
		return nil, false
	}
	buf := sample.GetBuffer()
	if buf == nil {
		return nil, false
	}
	return gst.NewBufferFromBytes(buf.Bytes()), true
}

// OnNewSample implements gst.AppSink.
func (a *appSink) OnNewSample(fn func()) {
	if fn == nil {
		a.s.SetCallbacks(&app.SinkCallbacks{})
		return
	}
	a.s.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: func(*app.Sink) gogst.FlowReturn {
			fn()
			return gogst.FlowOK
		},
	})
}

type appSrc struct {
	s *app.Source
}

func flowErr(ret gogst.FlowReturn) error {
	switch ret {
	case gogst.FlowOK:
		return nil
	case gogst.FlowFlushing:
		return gst.ErrFlushing
	}
	return fmt.Errorf("flow return %s", ret.String())
}

// PushBuffer implements gst.AppSrc.
func (a *appSrc) PushBuffer(buf *gst.Buffer) error {
	return flowErr(a.s.PushBuffer(gogst.NewBufferFromBytes(buf.Bytes())))
}

// EndOfStream implements gst.AppSrc.
func (a *appSrc) EndOfStream() error {
	return flowErr(a.s.EndStream())
}

var (
	_ gst.Engine   = (*Engine)(nil)
	_ gst.Pipeline = (*pipeline)(nil)
	_ gst.AppSink  = (*appSink)(nil)
	_ gst.AppSrc   = (*appSrc)(nil)
)
