// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ManuGH/gstmgr/internal/gst"
	"github.com/ManuGH/gstmgr/internal/gst/sim"
	"github.com/ManuGH/gstmgr/internal/log"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, cfg Config, rec Recorder) (*httptest.Server, *gst.Manager) {
	t.Helper()
	engine := sim.New(sim.WithFrameInterval(time.Millisecond))
	m, err := gst.New(engine, "videotestsrc ! fakesink", gst.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	if cfg.StateTimeout == 0 {
		cfg.StateTimeout = 2 * time.Second
	}
	srv := httptest.NewServer(New(cfg, m, rec).Handler())
	t.Cleanup(srv.Close)
	return srv, m
}

func do(t *testing.T, method, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, Config{Version: "v0.1.0"}, nil)

	resp := do(t, http.MethodGet, srv.URL+"/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "v0.1.0", body["version"])
}

func TestReadyzFollowsPipeline(t *testing.T) {
	srv, m := newTestServer(t, Config{}, nil)

	resp := do(t, http.MethodGet, srv.URL+"/readyz")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, m.Close())
	resp = do(t, http.MethodGet, srv.URL+"/readyz")
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestPipelineLifecycle(t *testing.T) {
	srv, m := newTestServer(t, Config{}, nil)

	resp := do(t, http.MethodGet, srv.URL+"/api/v1/pipeline")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[PipelineResponse](t, resp)
	assert.Equal(t, m.ID(), got.ID)
	assert.Equal(t, "videotestsrc ! fakesink", got.Description)
	assert.Equal(t, "NULL", got.State)

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/pipeline/start")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/pipeline")
	got = decode[PipelineResponse](t, resp)
	assert.Equal(t, "PLAYING", got.State)
	assert.Empty(t, got.Pending)

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/pipeline/stop")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	state, err := m.GetState()
	require.NoError(t, err)
	assert.Equal(t, gst.StateNull, state)
}

func TestPipelineClosedReturns503(t *testing.T) {
	srv, m := newTestServer(t, Config{}, nil)
	require.NoError(t, m.Close())

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/pipeline/start")
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body := decode[errorResponse](t, resp)
	assert.Contains(t, body.Error, "unable to start the GStreamer application")
	assert.NotEmpty(t, body.RequestID)
}

type failingPipeline struct{}

func (failingPipeline) ID() string          { return "p" }
func (failingPipeline) Description() string { return "filesrc ! fakesink" }
func (failingPipeline) Start() error {
	return fmt.Errorf("%w: %v", gst.ErrPipelineStart, errors.New("no file name specified"))
}
func (failingPipeline) Stop() error { return nil }
func (failingPipeline) QueryState(time.Duration) (gst.StateQuery, error) {
	return gst.StateQuery{Return: gst.StateChangeSuccess, Current: gst.StateNull}, nil
}

func TestStartFailureReturns500(t *testing.T) {
	srv := httptest.NewServer(New(Config{}, failingPipeline{}, nil).Handler())
	t.Cleanup(srv.Close)

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/pipeline/start")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decode[errorResponse](t, resp)
	assert.True(t, strings.HasPrefix(body.Error, gst.ErrPipelineStart.Error()))
}

func TestCreateRecording(t *testing.T) {
	dir := t.TempDir()
	rec := gst.NewRecorder(sim.New(sim.WithFrameInterval(time.Millisecond)), gst.RecorderConfig{
		Dir:         dir,
		Description: "videotestsrc num-buffers=3 blocksize=16 ! appsink",
	})
	srv, _ := newTestServer(t, Config{RecordingDir: dir}, rec)

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/recordings")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	got := decode[gst.Recording](t, resp)
	assert.Equal(t, 3, got.Buffers)
	assert.EqualValues(t, 48, got.Bytes)

	info, err := os.Stat(got.Path)
	require.NoError(t, err)
	assert.EqualValues(t, 48, info.Size())
}

func TestCreateRecordingDisabled(t *testing.T) {
	srv, _ := newTestServer(t, Config{}, nil)

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/recordings")
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

type blockingRecorder struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingRecorder) MakeRecording(ctx context.Context) (gst.Recording, error) {
	close(b.started)
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return gst.Recording{ID: "r1"}, nil
}

func TestCreateRecordingConflict(t *testing.T) {
	rec := &blockingRecorder{started: make(chan struct{}), release: make(chan struct{})}
	srv, _ := newTestServer(t, Config{}, rec)

	done := make(chan int, 1)
	go func() {
		resp, err := http.Post(srv.URL+"/api/v1/recordings", "application/json", nil)
		if err != nil {
			done <- 0
			return
		}
		_ = resp.Body.Close()
		done <- resp.StatusCode
	}()
	<-rec.started

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/recordings")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	close(rec.release)
	assert.Equal(t, http.StatusCreated, <-done)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type failingRecorder struct{}

func (failingRecorder) MakeRecording(context.Context) (gst.Recording, error) {
	return gst.Recording{}, errors.New("appsink never produced a buffer")
}

func TestCreateRecordingFailureIsLoggedWithPipelineID(t *testing.T) {
	var out syncBuffer
	log.Configure(log.Config{Output: &out})
	t.Cleanup(func() { log.Configure(log.Config{}) })

	srv, m := newTestServer(t, Config{}, failingRecorder{})

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/recordings")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decode[errorResponse](t, resp)
	assert.Contains(t, body.Error, "never produced")

	var failed map[string]any
	for _, line := range strings.Split(out.String(), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry[log.FieldEvent] == "recording.failed" {
			failed = entry
		}
	}
	require.NotNil(t, failed, "recording failure was not logged")
	assert.Equal(t, m.ID(), failed[log.FieldPipelineID])
	assert.NotEmpty(t, failed[log.FieldRequestID])
}

func TestRateLimitAppliesToAPIOnly(t *testing.T) {
	srv, _ := newTestServer(t, Config{RateLimit: 1}, nil)

	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/api/v1/pipeline").StatusCode)
	require.Equal(t, http.StatusTooManyRequests, do(t, http.MethodGet, srv.URL+"/api/v1/pipeline").StatusCode)
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/healthz").StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, Config{}, nil)

	resp := do(t, http.MethodGet, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "gstmgr_pipelines_created_total")
	assert.Contains(t, string(body), "gstmgr_http_requests_in_flight")
}
