// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package sim is an in-process pipeline engine. It understands the same
// description grammar as GStreamer, knows a fixed set of stock elements, settles
// PAUSED/PLAYING transitions asynchronously and feeds appsinks from test
// sources, which makes it suitable for tests and for hosts without GStreamer.
package sim

import (
	"fmt"
	"time"

	"github.com/ManuGH/gstmgr/internal/gst"
	"github.com/ManuGH/gstmgr/internal/gst/launch"
)

const (
	DefaultName          = "sim"
	DefaultPrerollDelay  = 5 * time.Millisecond
	DefaultFrameInterval = 10 * time.Millisecond
	DefaultMaxBuffers    = 64
)

// Option customises an Engine.
type Option func(*Engine)

// WithName sets the engine name. Setup initialises each name once per process.
func WithName(name string) Option {
	return func(e *Engine) { e.name = name }
}

// WithPrerollDelay sets how long PAUSED/PLAYING transitions stay pending.
// Zero makes every transition synchronous.
func WithPrerollDelay(d time.Duration) Option {
	return func(e *Engine) { e.prerollDelay = d }
}

// WithFrameInterval sets the pace of test sources.
func WithFrameInterval(d time.Duration) Option {
	return func(e *Engine) { e.frameInterval = d }
}

// Engine implements gst.Engine in memory.
type Engine struct {
	name          string
	prerollDelay  time.Duration
	frameInterval time.Duration
}

// New returns an Engine with default timings.
func New(opts ...Option) *Engine {
	e := &Engine{
		name:          DefaultName,
		prerollDelay:  DefaultPrerollDelay,
		frameInterval: DefaultFrameInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.frameInterval <= 0 {
		e.frameInterval = DefaultFrameInterval
	}
	if e.prerollDelay < 0 {
		e.prerollDelay = 0
	}
	return e
}

// Name implements gst.Engine.
func (e *Engine) Name() string { return e.name }

// Init implements gst.Engine.
func (e *Engine) Init() error { return nil }

// ParseLaunch implements gst.Engine.
func (e *Engine) ParseLaunch(description string) (gst.Pipeline, error) {
	g, err := launch.Parse(description)
	if err != nil {
		return nil, err
	}
	for _, el := range g.Elements {
		if _, ok := lookup(el.Factory); !ok {
			return nil, fmt.Errorf("no element %q", el.Factory)
		}
	}
	for _, l := range g.Links {
		from, to := g.Elements[l.From], g.Elements[l.To]
		if kindOf(from.Factory) == kindSink {
			return nil, fmt.Errorf("could not link %s to %s: %s has no source pad", from.Name, to.Name, from.Factory)
		}
		if kindOf(to.Factory) == kindSource {
			return nil, fmt.Errorf("could not link %s to %s: %s has no sink pad", from.Name, to.Name, to.Factory)
		}
	}
	return newPipeline(e, g), nil
}

var _ gst.Engine = (*Engine)(nil)
