// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package gst_test

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/ManuGH/gstmgr/internal/gst"
	"github.com/ManuGH/gstmgr/internal/gst/sim"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDescription = "videotestsrc ! fakesink"

func quietLogger() gst.Option {
	return gst.WithLogger(zerolog.New(io.Discard))
}

func newSimEngine() *sim.Engine {
	return sim.New(sim.WithFrameInterval(time.Millisecond))
}

func newManager(t *testing.T, desc string) *gst.Manager {
	t.Helper()
	m, err := gst.New(newSimEngine(), desc, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestMakeReturnsPipeline(t *testing.T) {
	p, err := gst.Make(newSimEngine(), testDescription)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.NoError(t, p.Close())
}

func TestMakeRejectsBadDescriptions(t *testing.T) {
	for _, desc := range []string{
		"",
		"videotestsrc !",
		"videotestsrc ! nosuchelement",
	} {
		t.Run(desc, func(t *testing.T) {
			p, err := gst.Make(newSimEngine(), desc)
			require.Nil(t, p)
			require.ErrorIs(t, err, gst.ErrPipelineCreation)
			require.Contains(t, err.Error(), "unable to make the GStreamer application process")
		})
	}
}

func TestNewFailsWithCreationError(t *testing.T) {
	m, err := gst.New(newSimEngine(), "bogus-element", quietLogger())
	require.Nil(t, m)
	require.ErrorIs(t, err, gst.ErrPipelineCreation)
}

func TestGetStateIsNullBeforeStart(t *testing.T) {
	m := newManager(t, testDescription)

	state, err := m.GetState()
	require.NoError(t, err)
	assert.Equal(t, gst.StateNull, state)
}

func TestStartReachesPlaying(t *testing.T) {
	m := newManager(t, testDescription)

	require.NoError(t, m.Start())
	state, err := m.GetState()
	require.NoError(t, err)
	assert.Equal(t, gst.StatePlaying, state)
}

func TestStopAfterStartReachesNull(t *testing.T) {
	m := newManager(t, testDescription)

	require.NoError(t, m.Start())
	require.NoError(t, m.Stop())

	state, err := m.GetState()
	require.NoError(t, err)
	assert.Equal(t, gst.StateNull, state)
}

func TestStopInNullIsNoop(t *testing.T) {
	m := newManager(t, testDescription)

	require.NoError(t, m.Stop())
	require.NoError(t, m.Stop())

	state, err := m.GetState()
	require.NoError(t, err)
	assert.Equal(t, gst.StateNull, state)
}

func TestStartTwiceStaysPlaying(t *testing.T) {
	m := newManager(t, testDescription)

	require.NoError(t, m.Start())
	require.NoError(t, m.Start())

	state, err := m.GetState()
	require.NoError(t, err)
	assert.Equal(t, gst.StatePlaying, state)

	require.NoError(t, m.Start())
	state, err = m.GetState()
	require.NoError(t, err)
	assert.Equal(t, gst.StatePlaying, state)
}

func TestQueryStateReportsPendingTransition(t *testing.T) {
	m, err := gst.New(sim.New(sim.WithPrerollDelay(time.Hour)), testDescription, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	require.NoError(t, m.Start())

	q, err := m.QueryState(5 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, gst.StateChangeAsync, q.Return)
	assert.Equal(t, gst.StateNull, q.Current)
	assert.Equal(t, gst.StatePlaying, q.Pending)
}

func TestStartFailureIsTranslated(t *testing.T) {
	m := newManager(t, "videotestsrc ! filesink")

	err := m.Start()
	require.ErrorIs(t, err, gst.ErrPipelineStart)
	require.Contains(t, err.Error(), "unable to start the GStreamer application")
}

func TestCloseIsIdempotentAndFinal(t *testing.T) {
	m, err := gst.New(newSimEngine(), testDescription, quietLogger(), gst.WithID("pipe-1"))
	require.NoError(t, err)
	require.Equal(t, "pipe-1", m.ID())
	require.Equal(t, testDescription, m.Description())

	require.NoError(t, m.Start())
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	err = m.Start()
	require.ErrorIs(t, err, gst.ErrPipelineStart)
	require.ErrorIs(t, err, gst.ErrClosed)

	require.ErrorIs(t, m.Stop(), gst.ErrClosed)

	_, err = m.GetState()
	require.ErrorIs(t, err, gst.ErrClosed)
}

func TestManagerConcurrentUse(t *testing.T) {
	m := newManager(t, testDescription)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				assert.NoError(t, m.Start())
			} else {
				_, err := m.GetState()
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	state, err := m.GetState()
	require.NoError(t, err)
	assert.Equal(t, gst.StatePlaying, state)
}

// fakeEngine lets tests inject engine failures.
type fakeEngine struct {
	name     string
	initErr  error
	parseErr error
	pipeline *fakePipeline
	inits    int
}

func (e *fakeEngine) Name() string { return e.name }

func (e *fakeEngine) Init() error {
	e.inits++
	return e.initErr
}

func (e *fakeEngine) ParseLaunch(string) (gst.Pipeline, error) {
	if e.parseErr != nil {
		return nil, e.parseErr
	}
	if e.pipeline == nil {
		return nil, nil
	}
	return e.pipeline, nil
}

type engineError struct{ msg string }

func (e *engineError) Error() string { return e.msg }

type fakePipeline struct {
	setErr error
	setRet gst.StateChangeReturn
	getErr error
}

func (p *fakePipeline) SetState(gst.State) (gst.StateChangeReturn, error) {
	return p.setRet, p.setErr
}

func (p *fakePipeline) GetState(time.Duration) (gst.StateQuery, error) {
	return gst.StateQuery{Return: gst.StateChangeSuccess, Current: gst.StateNull}, p.getErr
}

func (p *fakePipeline) AppSink(string) (gst.AppSink, error) { return nil, gst.ErrNoAppSink }
func (p *fakePipeline) AppSrc(string) (gst.AppSrc, error)   { return nil, gst.ErrNoAppSrc }
func (p *fakePipeline) Close() error                        { return nil }

func TestEngineErrorTypesDoNotLeak(t *testing.T) {
	native := &engineError{msg: "native parse failure"}
	e := &fakeEngine{name: t.Name(), parseErr: native}

	_, err := gst.Make(e, testDescription)
	require.ErrorIs(t, err, gst.ErrPipelineCreation)
	require.Contains(t, err.Error(), "native parse failure")

	var leaked *engineError
	require.False(t, errors.As(err, &leaked), "engine error type must not be reachable")
}

func TestStartAndStopTranslateEngineErrors(t *testing.T) {
	p := &fakePipeline{setErr: &engineError{msg: "boom"}}
	e := &fakeEngine{name: t.Name(), pipeline: p}

	m, err := gst.New(e, testDescription, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	require.ErrorIs(t, m.Start(), gst.ErrPipelineStart)
	require.ErrorIs(t, m.Stop(), gst.ErrPipelineStop)

	p.setErr = nil
	p.setRet = gst.StateChangeFailure
	require.ErrorIs(t, m.Start(), gst.ErrPipelineStart)

	p.setRet = gst.StateChangeAsync
	require.NoError(t, m.Start())
}

func TestGetStatePropagatesEngineErrorsUnchanged(t *testing.T) {
	native := &engineError{msg: "query failed"}
	p := &fakePipeline{setRet: gst.StateChangeSuccess, getErr: native}
	m, err := gst.New(&fakeEngine{name: t.Name(), pipeline: p}, testDescription, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	_, err = m.GetState()
	require.Same(t, native, err)
}

func TestNilPipelineFromEngineIsCreationError(t *testing.T) {
	_, err := gst.Make(&fakeEngine{name: t.Name()}, testDescription)
	require.ErrorIs(t, err, gst.ErrPipelineCreation)
}

func TestSetupInitialisesOncePerEngineName(t *testing.T) {
	e := &fakeEngine{name: t.Name(), pipeline: &fakePipeline{setRet: gst.StateChangeSuccess}}

	for i := 0; i < 3; i++ {
		m, err := gst.New(e, testDescription, quietLogger())
		require.NoError(t, err)
		require.NoError(t, m.Close())
	}
	require.NoError(t, gst.Setup(e))
	require.Equal(t, 1, e.inits)
}

func TestSetupFailureIsSticky(t *testing.T) {
	e := &fakeEngine{name: t.Name(), initErr: errors.New("no runtime")}

	require.Error(t, gst.Setup(e))
	_, err := gst.New(e, testDescription, quietLogger())
	require.ErrorIs(t, err, gst.ErrPipelineCreation)
	require.Equal(t, 1, e.inits)

	require.ErrorIs(t, gst.Setup(nil), gst.ErrEngineUnavailable)
}
