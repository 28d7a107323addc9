// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ManuGH/gstmgr/internal/gst"
	"github.com/ManuGH/gstmgr/internal/gst/launch"
	"golang.org/x/time/rate"
)

var errReleased = errors.New("pipeline released")

type producer struct {
	source  int
	sink    *appSink
	size    int
	limit   int // -1 for unlimited
	emitted int
}

type pipeline struct {
	engine *Engine
	graph  *launch.Graph

	sinks     map[int]*appSink
	srcs      map[int]*appSrc
	producers []*producer

	mu       sync.Mutex
	current  gst.State
	pending  gst.State
	settled  chan struct{}
	timer    *time.Timer
	closed   bool
	cancel   context.CancelFunc
	running  sync.WaitGroup
	dataFlow bool
}

func newPipeline(e *Engine, g *launch.Graph) *pipeline {
	p := &pipeline{
		engine:  e,
		graph:   g,
		sinks:   make(map[int]*appSink),
		srcs:    make(map[int]*appSrc),
		current: gst.StateNull,
		pending: gst.StateVoidPending,
	}
	for _, i := range g.ByFactory("appsink") {
		el := g.Elements[i]
		p.sinks[i] = newAppSink(el.Name, el.IntProp("max-buffers", DefaultMaxBuffers))
	}
	for _, i := range g.ByFactory("appsrc") {
		src := &appSrc{name: g.Elements[i].Name, p: p}
		if sink, ok := p.sinks[g.Tail(i)]; ok {
			src.sink = sink
		}
		p.srcs[i] = src
	}
	for i, sink := range p.sinks {
		head := g.Head(i)
		el := g.Elements[head]
		f, _ := lookup(el.Factory)
		if !f.generates {
			continue
		}
		p.producers = append(p.producers, &producer{
			source: head,
			sink:   sink,
			size:   el.IntProp("blocksize", f.blocksize),
			limit:  el.IntProp("num-buffers", -1),
		})
	}
	return p
}

// SetState implements gst.Pipeline.
func (p *pipeline) SetState(target gst.State) (gst.StateChangeReturn, error) {
	if target == gst.StateVoidPending || !target.Valid() {
		return gst.StateChangeFailure, fmt.Errorf("invalid target state %d", int(target))
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return gst.StateChangeFailure, errReleased
	}

	if target == p.current && p.pending == gst.StateVoidPending {
		p.mu.Unlock()
		return gst.StateChangeSuccess, nil
	}

	if target <= gst.StateReady {
		wait := p.stopFlowLocked()
		p.stopTimerLocked()
		p.current = target
		p.resolvePendingLocked()
		p.mu.Unlock()
		wait()
		p.setFlushing(true)
		return gst.StateChangeSuccess, nil
	}

	if el, ok := p.missingLocation(); ok {
		p.stopTimerLocked()
		p.current = gst.StateReady
		p.resolvePendingLocked()
		p.mu.Unlock()
		return gst.StateChangeFailure, fmt.Errorf("%s: no file name specified", el.Name)
	}

	if p.pending == target {
		p.mu.Unlock()
		return gst.StateChangeAsync, nil
	}

	p.setFlushing(false)
	p.pending = target
	if p.settled == nil {
		p.settled = make(chan struct{})
	}
	p.stopTimerLocked()

	if p.engine.prerollDelay == 0 {
		wait := p.settleLocked()
		p.mu.Unlock()
		wait()
		return gst.StateChangeSuccess, nil
	}
	p.timer = time.AfterFunc(p.engine.prerollDelay, p.settle)
	p.mu.Unlock()
	return gst.StateChangeAsync, nil
}

func (p *pipeline) settle() {
	p.mu.Lock()
	wait := p.settleLocked()
	p.mu.Unlock()
	wait()
}

// settleLocked completes the pending transition and returns a function that
// waits for stopped producers; call it after releasing mu.
func (p *pipeline) settleLocked() func() {
	if p.closed || p.pending == gst.StateVoidPending {
		return func() {}
	}
	p.current = p.pending
	p.resolvePendingLocked()
	p.timer = nil

	if p.current == gst.StatePlaying {
		p.startFlowLocked()
		return func() {}
	}
	return p.stopFlowLocked()
}

func (p *pipeline) resolvePendingLocked() {
	p.pending = gst.StateVoidPending
	if p.settled != nil {
		close(p.settled)
		p.settled = nil
	}
}

func (p *pipeline) stopTimerLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *pipeline) missingLocation() (launch.Element, bool) {
	for _, el := range p.graph.Elements {
		f, _ := lookup(el.Factory)
		if !f.needsLocation {
			continue
		}
		if loc, ok := el.Prop("location"); !ok || loc == "" {
			return el, true
		}
	}
	return launch.Element{}, false
}

func (p *pipeline) setFlushing(flushing bool) {
	for _, s := range p.sinks {
		s.setFlushing(flushing)
	}
	if flushing {
		for _, s := range p.srcs {
			s.eos.Store(false)
		}
		p.mu.Lock()
		for _, pr := range p.producers {
			pr.emitted = 0
		}
		p.mu.Unlock()
	}
}

// accepting reports whether data may enter the pipeline.
func (p *pipeline) accepting() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	return p.current >= gst.StatePaused || p.pending >= gst.StatePaused
}

func (p *pipeline) startFlowLocked() {
	if p.dataFlow {
		return
	}
	p.dataFlow = true
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	for _, pr := range p.producers {
		p.running.Add(1)
		go p.produce(ctx, pr)
	}
}

func (p *pipeline) stopFlowLocked() func() {
	if !p.dataFlow {
		return func() {}
	}
	p.dataFlow = false
	p.cancel()
	p.cancel = nil
	return p.running.Wait
}

func (p *pipeline) produce(ctx context.Context, pr *producer) {
	defer p.running.Done()

	// One buffer per frame interval; the first leaves immediately.
	pace := rate.NewLimiter(rate.Every(p.engine.frameInterval), 1)
	for {
		if err := pace.Wait(ctx); err != nil {
			return
		}

		p.mu.Lock()
		n := pr.emitted
		done := pr.limit >= 0 && n >= pr.limit
		if !done {
			pr.emitted++
		}
		p.mu.Unlock()

		if done {
			pr.sink.endOfStream()
			return
		}

		buf := gst.NewBuffer(pr.size)
		buf.Offset = uint64(n)
		buf.PTS = time.Duration(n) * p.engine.frameInterval
		buf.Duration = p.engine.frameInterval
		pr.sink.enqueue(buf)
	}
}

// GetState implements gst.Pipeline.
func (p *pipeline) GetState(timeout time.Duration) (gst.StateQuery, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return gst.StateQuery{}, errReleased
		}
		q := gst.StateQuery{Current: p.current, Pending: p.pending}
		ch := p.settled
		p.mu.Unlock()

		if q.Pending == gst.StateVoidPending {
			q.Return = gst.StateChangeSuccess
			return q, nil
		}
		q.Return = gst.StateChangeAsync
		if timeout == 0 {
			return q, nil
		}

		select {
		case <-ch:
		case <-expired:
			return q, nil
		}
	}
}

// AppSink implements gst.Pipeline.
func (p *pipeline) AppSink(name string) (gst.AppSink, error) {
	idx, err := p.find("appsink", name, gst.ErrNoAppSink)
	if err != nil {
		return nil, err
	}
	return p.sinks[idx], nil
}

// AppSrc implements gst.Pipeline.
func (p *pipeline) AppSrc(name string) (gst.AppSrc, error) {
	idx, err := p.find("appsrc", name, gst.ErrNoAppSrc)
	if err != nil {
		return nil, err
	}
	return p.srcs[idx], nil
}

func (p *pipeline) find(factory, name string, missing error) (int, error) {
	if name == "" {
		idx := p.graph.ByFactory(factory)
		if len(idx) == 0 {
			return -1, missing
		}
		return idx[0], nil
	}
	idx, ok := p.graph.ByName(name)
	if !ok || p.graph.Elements[idx].Factory != factory {
		return -1, fmt.Errorf("%w: %q", missing, name)
	}
	return idx, nil
}

// Close implements gst.Pipeline.
func (p *pipeline) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	wait := p.stopFlowLocked()
	p.stopTimerLocked()
	p.resolvePendingLocked()
	p.current = gst.StateNull
	p.closed = true
	p.mu.Unlock()

	wait()
	for _, s := range p.sinks {
		s.setFlushing(true)
	}
	return nil
}

var _ gst.Pipeline = (*pipeline)(nil)
