// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package gst drives multimedia pipelines built from gst-launch style
// descriptions through an Engine.
package gst

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ManuGH/gstmgr/internal/log"
	"github.com/ManuGH/gstmgr/internal/metrics"
	"github.com/rs/zerolog"
)

// Manager owns exactly one pipeline for its whole lifetime.
type Manager struct {
	engine      Engine
	description string
	id          string
	logger      zerolog.Logger

	mu       sync.Mutex
	pipeline Pipeline
	closed   bool
}

// New initialises the engine and builds the pipeline described by description.
func New(engine Engine, description string, opts ...Option) (*Manager, error) {
	o := buildOptions(opts)
	return newManager(engine, description, o)
}

func newManager(engine Engine, description string, o options) (*Manager, error) {
	logger := o.logger.With().Str(log.FieldPipelineID, o.id).Logger()
	if engine != nil {
		logger = logger.With().Str(log.FieldEngine, engine.Name()).Logger()
	}

	p, err := Make(engine, description)
	if err != nil {
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "pipeline.make_failed").
			Str(log.FieldDescription, description).
			Msg("failed to build pipeline")
		return nil, err
	}

	metrics.PipelinesActive.Inc()
	logger.Info().
		Str(log.FieldEvent, "pipeline.created").
		Str(log.FieldDescription, description).
		Msg("pipeline created")

	return &Manager{
		engine:      engine,
		description: description,
		id:          o.id,
		logger:      logger,
		pipeline:    p,
	}, nil
}

// Make asks engine to parse description into a runnable pipeline.
func Make(engine Engine, description string) (Pipeline, error) {
	if err := Setup(engine); err != nil {
		metrics.IncPipelineCreated(false)
		return nil, translate(ErrPipelineCreation, err)
	}

	p, err := engine.ParseLaunch(description)
	if err == nil && p == nil {
		err = errors.New("engine returned no pipeline")
	}
	metrics.IncPipelineCreated(err == nil)
	if err != nil {
		return nil, translate(ErrPipelineCreation, err)
	}
	return p, nil
}

// ID returns the pipeline ID used in logs.
func (m *Manager) ID() string { return m.id }

// Description returns the description the pipeline was built from.
func (m *Manager) Description() string { return m.description }

// Start requests the PLAYING state. An asynchronous transition counts as success.
func (m *Manager) Start() error {
	return m.setState(StatePlaying, ErrPipelineStart)
}

// Stop requests the NULL state.
func (m *Manager) Stop() error {
	return m.setState(StateNull, ErrPipelineStop)
}

func (m *Manager) setState(target State, kind error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("%w: %w", kind, ErrClosed)
	}

	ret, err := m.pipeline.SetState(target)
	if err == nil && ret == StateChangeFailure {
		err = fmt.Errorf("state change to %s failed", target)
	}
	metrics.IncStateChange(target.String(), err == nil)
	if err != nil {
		m.logger.Error().
			Err(err).
			Str(log.FieldEvent, "pipeline.state_change_failed").
			Str(log.FieldNewState, target.String()).
			Msg("state change refused")
		return translate(kind, err)
	}

	m.logger.Debug().
		Str(log.FieldEvent, "pipeline.state_requested").
		Str(log.FieldNewState, target.String()).
		Str(log.FieldResult, ret.String()).
		Msg("state change requested")
	return nil
}

// GetState blocks until any in-flight transition settles and returns the
// current state. Engine errors are returned as-is.
func (m *Manager) GetState() (State, error) {
	q, err := m.QueryState(ClockTimeNone)
	if err != nil {
		return StateVoidPending, err
	}
	return q.Current, nil
}

// QueryState returns the full state triple, waiting at most timeout for the
// pipeline to settle. A negative timeout waits without bound.
func (m *Manager) QueryState(timeout time.Duration) (StateQuery, error) {
	m.mu.Lock()
	p, closed := m.pipeline, m.closed
	m.mu.Unlock()

	if closed {
		return StateQuery{}, ErrClosed
	}
	return p.GetState(timeout)
}

// Close moves the pipeline to NULL and releases it. Further calls are no-ops.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	metrics.PipelinesActive.Dec()

	var errs []error
	if ret, err := m.pipeline.SetState(StateNull); err != nil || ret == StateChangeFailure {
		if err == nil {
			err = fmt.Errorf("state change to %s failed", StateNull)
		}
		errs = append(errs, translate(ErrPipelineStop, err))
	}
	if err := m.pipeline.Close(); err != nil {
		errs = append(errs, fmt.Errorf("release pipeline: %v", err))
	}

	m.logger.Info().
		Str(log.FieldEvent, "pipeline.closed").
		Msg("pipeline released")
	return errors.Join(errs...)
}
