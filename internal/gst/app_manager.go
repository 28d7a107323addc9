// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package gst

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ManuGH/gstmgr/internal/log"
	"github.com/ManuGH/gstmgr/internal/metrics"
)

// PullCallback is notified with every buffer pulled from the appsink.
// Callbacks run on the AppManager's loop goroutine and must not call PullBuffer.
type PullCallback func(buf *Buffer)

// AppManager is a Manager for pipelines that exchange buffers with the
// application through an appsink and/or an appsrc.
type AppManager struct {
	*Manager

	sink AppSink
	src  AppSrc

	loop   *Loop
	cancel context.CancelFunc

	mu        sync.Mutex
	callbacks []PullCallback
	pulled    *Buffer
	installed bool
	closeOnce sync.Once
	closeErr  error
}

// NewAppManager builds the pipeline and resolves its appsink and appsrc.
// At least one of them must be present.
func NewAppManager(engine Engine, description string, opts ...Option) (*AppManager, error) {
	o := buildOptions(opts)
	m, err := newManager(engine, description, o)
	if err != nil {
		return nil, err
	}

	// A missing element is only fatal when it was asked for by name.
	sink, err := m.pipeline.AppSink(o.sinkName)
	if err != nil && (o.sinkName != "" || !errors.Is(err, ErrNoAppSink)) {
		_ = m.Close()
		return nil, translate(ErrPipelineCreation, err)
	}
	src, err := m.pipeline.AppSrc(o.srcName)
	if err != nil && (o.srcName != "" || !errors.Is(err, ErrNoAppSrc)) {
		_ = m.Close()
		return nil, translate(ErrPipelineCreation, err)
	}
	if sink == nil && src == nil {
		_ = m.Close()
		return nil, fmt.Errorf("%w: no appsink or appsrc in %q", ErrPipelineCreation, description)
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &AppManager{
		Manager: m,
		sink:    sink,
		src:     src,
		loop:    NewLoop(0),
		cancel:  cancel,
	}
	go a.loop.Run(ctx)
	return a, nil
}

// HasAppSink reports whether the pipeline has an appsink.
func (a *AppManager) HasAppSink() bool { return a.sink != nil }

// HasAppSrc reports whether the pipeline has an appsrc.
func (a *AppManager) HasAppSrc() bool { return a.src != nil }

// AddPullCallback registers cb. Callbacks are invoked in registration order.
func (a *AppManager) AddPullCallback(cb PullCallback) {
	if cb == nil {
		return
	}
	a.mu.Lock()
	a.callbacks = append(a.callbacks, cb)
	a.mu.Unlock()
}

// PulledBuffer returns the most recently pulled buffer.
func (a *AppManager) PulledBuffer() *Buffer {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pulled
}

// PullBuffer blocks until the appsink yields a buffer, then notifies every
// registered callback before returning it. Once the stream has ended the
// returned error matches both ErrPullBuffer and io.EOF.
func (a *AppManager) PullBuffer(ctx context.Context) (*Buffer, error) {
	if a.sink == nil {
		return nil, ErrNoAppSink
	}
	buf, err := a.sink.PullBuffer(ctx)
	if err != nil {
		return nil, translate(ErrPullBuffer, err)
	}
	a.record(buf)

	if err := a.loop.Invoke(ctx, func() { a.notify(buf) }); err != nil {
		return buf, translate(ErrPullBuffer, err)
	}
	return buf, nil
}

// InstallPullCallback subscribes to the appsink's new-sample notification so
// buffers are pulled and dispatched to callbacks without explicit PullBuffer
// calls. Installing twice is a no-op.
func (a *AppManager) InstallPullCallback() error {
	if a.sink == nil {
		return ErrNoAppSink
	}
	a.mu.Lock()
	if a.installed {
		a.mu.Unlock()
		return nil
	}
	a.installed = true
	a.mu.Unlock()

	a.sink.OnNewSample(func() {
		a.loop.Post(a.drainOne)
	})
	a.logger.Debug().
		Str(log.FieldEvent, "appsink.callback_installed").
		Msg("pull callback installed")
	return nil
}

// drainOne runs on the loop goroutine. It never waits: a notification whose
// buffer was dropped or already pulled finds the queue empty.
func (a *AppManager) drainOne() {
	buf, ok := a.sink.TryPullBuffer()
	if !ok {
		a.logger.Debug().
			Str(log.FieldEvent, "appsink.pull_skipped").
			Msg("no buffer after new-sample notification")
		return
	}
	a.record(buf)
	a.notify(buf)
}

func (a *AppManager) record(buf *Buffer) {
	a.mu.Lock()
	a.pulled = buf
	a.mu.Unlock()
	metrics.ObserveBuffer(metrics.DirectionPull, buf.Size())
}

func (a *AppManager) notify(buf *Buffer) {
	a.mu.Lock()
	cbs := append([]PullCallback(nil), a.callbacks...)
	a.mu.Unlock()
	for _, cb := range cbs {
		cb(buf)
	}
}

// PushBuffer hands buf to the appsrc.
func (a *AppManager) PushBuffer(buf *Buffer) error {
	if a.src == nil {
		return ErrNoAppSrc
	}
	if buf == nil {
		return fmt.Errorf("%w: nil buffer", ErrPushBuffer)
	}
	if err := a.src.PushBuffer(buf); err != nil {
		return translate(ErrPushBuffer, err)
	}
	metrics.ObserveBuffer(metrics.DirectionPush, buf.Size())
	return nil
}

// EndOfStream signals the appsrc that no more buffers follow.
func (a *AppManager) EndOfStream() error {
	if a.src == nil {
		return ErrNoAppSrc
	}
	if err := a.src.EndOfStream(); err != nil {
		return translate(ErrPushBuffer, err)
	}
	return nil
}

// Close stops the dispatch loop and releases the pipeline.
func (a *AppManager) Close() error {
	a.closeOnce.Do(func() {
		if a.sink != nil {
			a.sink.OnNewSample(nil)
		}
		a.cancel()
		a.loop.Quit()
		<-a.loop.Done()
		a.closeErr = a.Manager.Close()
	})
	return a.closeErr
}
