// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ManuGH/gstmgr/internal/gst"
	"github.com/ManuGH/gstmgr/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader("", "v1.2.3").Load()
	require.NoError(t, err)

	assert.Equal(t, "v1.2.3", cfg.Version)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultLogService, cfg.LogService)
	assert.Equal(t, EngineSim, cfg.Engine)
	assert.Equal(t, DefaultPipeline, cfg.Pipeline.Description)
	assert.False(t, cfg.Pipeline.AutoStart)
	assert.Equal(t, DefaultStateTimeout, cfg.Pipeline.StateTimeout)
	assert.Equal(t, DefaultListenAddr, cfg.API.ListenAddr)
	assert.Equal(t, DefaultRateLimit, cfg.API.RateLimit)
	assert.Equal(t, gst.DefaultRecordingDescription, cfg.Recording.Description)
	assert.True(t, filepath.IsAbs(cfg.Recording.Dir))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
logLevel: debug
engine: sim
pipeline:
  description: "audiotestsrc ! fakesink"
  autoStart: true
  stateTimeout: 2s
api:
  listenAddr: "127.0.0.1:9000"
  rateLimit: 0
recording:
  dir: `+dir+`
  maxBuffers: 10
`)

	cfg, err := NewLoader(path, "test").Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "audiotestsrc ! fakesink", cfg.Pipeline.Description)
	assert.True(t, cfg.Pipeline.AutoStart)
	assert.Equal(t, 2*time.Second, cfg.Pipeline.StateTimeout)
	assert.Equal(t, "127.0.0.1:9000", cfg.API.ListenAddr)
	assert.Equal(t, 0, cfg.API.RateLimit)
	assert.Equal(t, dir, cfg.Recording.Dir)
	assert.Equal(t, 10, cfg.Recording.MaxBuffers)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
pipeline:
  description: "audiotestsrc ! fakesink"
  autoStart: true
api:
  listenAddr: ":9000"
`)
	t.Setenv(EnvPipeline, "videotestsrc num-buffers=3 ! appsink")
	t.Setenv(EnvAutoStart, "no")
	t.Setenv(EnvListen, ":9100")
	t.Setenv(EnvStateTimeout, "250ms")
	t.Setenv(EnvRecordingMaxBuffers, "7")

	l := NewLoader(path, "test")
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, "videotestsrc num-buffers=3 ! appsink", cfg.Pipeline.Description)
	assert.False(t, cfg.Pipeline.AutoStart)
	assert.Equal(t, ":9100", cfg.API.ListenAddr)
	assert.Equal(t, 250*time.Millisecond, cfg.Pipeline.StateTimeout)
	assert.Equal(t, 7, cfg.Recording.MaxBuffers)
	assert.Contains(t, l.ConsumedEnvKeys, EnvPipeline)
	assert.Contains(t, l.ConsumedEnvKeys, EnvRecordingDir)
}

func TestLoadInvalidEnvFallsBack(t *testing.T) {
	t.Setenv(EnvRateLimit, "lots")
	t.Setenv(EnvStateTimeout, "soon")

	cfg, err := NewLoader("", "test").Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultRateLimit, cfg.API.RateLimit)
	assert.Equal(t, DefaultStateTimeout, cfg.Pipeline.StateTimeout)
}

func TestLoadRejectsUnknownField(t *testing.T) {
	path := writeConfig(t, "pipeline:\n  descriptoin: \"videotestsrc ! fakesink\"\n")

	_, err := NewLoader(path, "test").Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownConfigField), err.Error())
}

func TestLoadRejectsMultipleDocuments(t *testing.T) {
	path := writeConfig(t, "logLevel: info\n---\nlogLevel: debug\n")

	_, err := NewLoader(path, "test").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple documents")
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeConfig(t, "")

	cfg, err := NewLoader(path, "test").Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultPipeline, cfg.Pipeline.Description)
}

func TestLoadRejectsUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	_, err := NewLoader(path, "test").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config format")
}

func TestLoadRejectsBadStateTimeout(t *testing.T) {
	path := writeConfig(t, "pipeline:\n  stateTimeout: later\n")

	_, err := NewLoader(path, "test").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline.stateTimeout")
}

func TestLoadValidationFailure(t *testing.T) {
	t.Setenv(EnvEngine, "ffmpeg")
	t.Setenv(EnvPipeline, "videotestsrc !")

	_, err := NewLoader("", "test").Load()
	require.Error(t, err)

	var ve validate.ValidationError
	require.True(t, errors.As(err, &ve))
	fields := make([]string, 0, len(ve.Errors()))
	for _, e := range ve.Errors() {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"engine", "pipeline.description"}, fields)
}

func TestValidateRecordingNeedsAppSink(t *testing.T) {
	cfg, err := NewLoader("", "test").Load()
	require.NoError(t, err)

	cfg.Recording.Description = "videotestsrc ! fakesink"
	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recording.description")
}
