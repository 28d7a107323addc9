// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package gst

import (
	"context"
	"time"
)

// Engine is the port to the multimedia pipeline engine.
type Engine interface {
	// Name identifies the engine in logs and metrics.
	Name() string
	// Init performs process-wide engine initialisation.
	Init() error
	// ParseLaunch builds a runnable pipeline from a description.
	ParseLaunch(description string) (Pipeline, error)
}

// Pipeline is a handle to an engine-owned pipeline.
type Pipeline interface {
	// SetState requests a transition towards target.
	SetState(target State) (StateChangeReturn, error)
	// GetState blocks until the pipeline settles or timeout expires.
	// A negative timeout (ClockTimeNone) waits without bound.
	GetState(timeout time.Duration) (StateQuery, error)
	// AppSink returns the appsink with the given name, or the first one when name is empty.
	AppSink(name string) (AppSink, error)
	// AppSrc returns the appsrc with the given name, or the first one when name is empty.
	AppSrc(name string) (AppSrc, error)
	// Close releases engine resources. The pipeline must be in NULL.
	Close() error
}

// AppSink is an application sink that hands buffers to the caller.
type AppSink interface {
	// PullBuffer blocks until a buffer is available. It returns io.EOF once
	// the stream ended.
	PullBuffer(ctx context.Context) (*Buffer, error)
	// TryPullBuffer returns the next queued buffer without waiting.
	TryPullBuffer() (*Buffer, bool)
	// OnNewSample registers fn to be notified whenever a buffer is queued.
	// Passing nil removes the notification.
	OnNewSample(fn func())
}

// AppSrc is an application source that accepts buffers from the caller.
type AppSrc interface {
	PushBuffer(buf *Buffer) error
	EndOfStream() error
}
