// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ManuGH/gstmgr/internal/config"
	"github.com/ManuGH/gstmgr/internal/gst"
	"github.com/ManuGH/gstmgr/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockedBuffer is a bytes.Buffer safe for the concurrent writes of the logger.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestMain(m *testing.M) {
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "GSTMGR_") {
			_ = os.Unsetenv(strings.SplitN(e, "=", 2)[0])
		}
	}
	os.Exit(m.Run())
}

func TestValidateCLI(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantExit   int
		wantStdout string
		wantStderr string
	}{
		{"valid minimal config", []string{"-f", "testdata/valid-minimal.yaml"}, 0, "is valid", ""},
		{"long flag", []string{"--file", "testdata/valid-minimal.yaml"}, 0, "is valid", ""},
		{"invalid unknown key", []string{"-f", "testdata/invalid-unknown-key.yaml"}, 1, "", "unknown config field"},
		{"invalid type mismatch", []string{"-f", "testdata/invalid-type.yaml"}, 1, "", "Configuration error"},
		{"invalid pipeline", []string{"-f", "testdata/invalid-pipeline.yaml"}, 1, "", "pipeline.description"},
		{"no file flag provided", nil, 2, "", "--file is required"},
		{"non-existent file", []string{"-f", "does-not-exist.yaml"}, 1, "", "Configuration error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(config.EnvRecordingDir, t.TempDir())
			var stdout, stderr bytes.Buffer
			code := runValidate(tt.args, &stdout, &stderr)
			assert.Equal(t, tt.wantExit, code, stderr.String())
			assert.Contains(t, stdout.String(), tt.wantStdout)
			assert.Contains(t, stderr.String(), tt.wantStderr)
		})
	}
}

func TestRunDaemonVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := runDaemon(context.Background(), []string{"-version"}, &stdout, &stderr)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), version.Version)
}

func TestRunDaemonBadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.Equal(t, 2, runDaemon(context.Background(), []string{"-nope"}, &stdout, &stderr))
}

func TestRunDaemonConfigError(t *testing.T) {
	var stdout bytes.Buffer
	stderr := &lockedBuffer{}
	code := runDaemon(context.Background(), []string{"-config", "testdata/invalid-unknown-key.yaml"}, &stdout, stderr)
	require.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "config.load_failed")
}

func TestRunDaemonServesUntilCancelled(t *testing.T) {
	t.Setenv(config.EnvListen, "127.0.0.1:0")
	t.Setenv(config.EnvAutoStart, "true")
	t.Setenv(config.EnvRecordingDir, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stdout bytes.Buffer
	stderr := &lockedBuffer{}
	done := make(chan int, 1)
	go func() { done <- runDaemon(ctx, nil, &stdout, stderr) }()

	require.Eventually(t, func() bool {
		return strings.Contains(stderr.String(), "pipeline.autostarted")
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case code := <-done:
		require.Equal(t, 0, code, stderr.String())
	case <-time.After(10 * time.Second):
		t.Fatal("daemon did not stop")
	}
	assert.Contains(t, stderr.String(), "pipeline.closed")
}

func TestRunDaemonUnavailableEngine(t *testing.T) {
	t.Setenv(config.EnvEngine, config.EngineGStreamer)
	t.Setenv(config.EnvRecordingDir, t.TempDir())

	_, err := newEngine(config.EngineGStreamer)
	if err == nil {
		t.Skip("built with gstreamer support")
	}
	require.ErrorIs(t, err, gst.ErrEngineUnavailable)

	var stdout bytes.Buffer
	stderr := &lockedBuffer{}
	require.Equal(t, 1, runDaemon(context.Background(), nil, &stdout, stderr))
	assert.Contains(t, stderr.String(), "daemon.failed")
}

func TestNewEngine(t *testing.T) {
	e, err := newEngine(config.EngineSim)
	require.NoError(t, err)
	assert.Equal(t, "sim", e.Name())

	_, err = newEngine("ffmpeg")
	require.Error(t, err)
}
