// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package gst

import (
	"context"
	"sync"
)

const defaultLoopQueue = 64

// Loop runs posted tasks one at a time, in FIFO order, on a single goroutine.
// Buffer callbacks are dispatched through it so they never run concurrently.
type Loop struct {
	tasks chan func()
	quit  chan struct{}
	done  chan struct{}

	quitOnce sync.Once
	runOnce  sync.Once
}

// NewLoop creates a loop whose queue holds up to queue pending tasks.
func NewLoop(queue int) *Loop {
	if queue <= 0 {
		queue = defaultLoopQueue
	}
	return &Loop{
		tasks: make(chan func(), queue),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Run dispatches tasks until Quit is called or ctx is done. Only the first
// call runs; later calls return immediately.
func (l *Loop) Run(ctx context.Context) {
	l.runOnce.Do(func() {
		defer close(l.done)
		for {
			select {
			case <-ctx.Done():
				l.Quit()
				return
			case <-l.quit:
				return
			case fn := <-l.tasks:
				fn()
			}
		}
	})
}

// Post queues fn without waiting. It returns false when the loop has quit.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.quit:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.quit:
		return false
	}
}

// Invoke runs fn on the loop and waits for it to finish.
func (l *Loop) Invoke(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrLoopStopped
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		// The loop may have run the task just before exiting.
		select {
		case <-finished:
			return nil
		default:
			return ErrLoopStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Quit stops the loop. Pending tasks are discarded.
func (l *Loop) Quit() {
	l.quitOnce.Do(func() { close(l.quit) })
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
