// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package gst

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrPipelineCreation is returned when the engine cannot build a pipeline
	// from a description.
	ErrPipelineCreation = errors.New("unable to make the GStreamer application process")

	// ErrPipelineStart is returned when the pipeline refuses the PLAYING state.
	ErrPipelineStart = errors.New("unable to start the GStreamer application")

	// ErrPipelineStop is returned when the pipeline refuses the NULL state.
	ErrPipelineStop = errors.New("unable to stop the GStreamer application")

	// ErrClosed is returned by a Manager after Close.
	ErrClosed = errors.New("pipeline manager closed")

	// ErrNoAppSink is returned when the pipeline contains no appsink element.
	ErrNoAppSink = errors.New("pipeline has no appsink")

	// ErrNoAppSrc is returned when the pipeline contains no appsrc element.
	ErrNoAppSrc = errors.New("pipeline has no appsrc")

	// ErrPullBuffer is returned when no buffer could be pulled from the appsink.
	ErrPullBuffer = errors.New("unable to pull buffer")

	// ErrPushBuffer is returned when the appsrc rejects a buffer.
	ErrPushBuffer = errors.New("unable to push buffer")

	// ErrBufferMapped is returned when a buffer map conflicts with an existing one.
	ErrBufferMapped = errors.New("buffer already mapped")

	// ErrLoopStopped is returned when work is posted to a stopped Loop.
	ErrLoopStopped = errors.New("loop stopped")

	// ErrEngineUnavailable is returned when the engine is not compiled into the binary.
	ErrEngineUnavailable = errors.New("pipeline engine unavailable")

	// ErrFlushing is returned by engines when data is pushed into a pipeline
	// that is not PAUSED or PLAYING.
	ErrFlushing = errors.New("pipeline is flushing")

	// ErrRecording is returned when a recording cannot be completed.
	ErrRecording = errors.New("unable to make recording")
)

// passthrough lists the causes that stay matchable with errors.Is after
// translation. Anything else is flattened to text.
var passthrough = []error{
	io.EOF,
	context.Canceled,
	context.DeadlineExceeded,
	ErrClosed,
	ErrNoAppSink,
	ErrNoAppSrc,
	ErrFlushing,
	ErrEngineUnavailable,
	ErrLoopStopped,
}

// translate re-expresses an engine failure in the local vocabulary so engine
// error types never reach callers.
func translate(kind error, cause error) error {
	if cause == nil {
		return kind
	}
	for _, known := range passthrough {
		if errors.Is(cause, known) {
			return fmt.Errorf("%w: %w", kind, cause)
		}
	}
	return fmt.Errorf("%w: %v", kind, cause)
}
