// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package gst

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ManuGH/gstmgr/internal/log"
	"github.com/ManuGH/gstmgr/internal/metrics"
	"github.com/google/renameio/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultRecordingDescription records thirty test frames.
	DefaultRecordingDescription = "videotestsrc num-buffers=30 ! appsink name=recsink"
	defaultRecordingExt         = ".raw"
)

// RecorderConfig configures a Recorder.
type RecorderConfig struct {
	Dir         string // output directory, created on demand
	Description string // must contain an appsink
	MaxBuffers  int    // 0 records until end of stream
}

// Recording describes a finished recording.
type Recording struct {
	ID        string        `json:"id"`
	Path      string        `json:"path"`
	Buffers   int           `json:"buffers"`
	Bytes     int64         `json:"bytes"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
}

// Recorder captures the buffers of an appsink pipeline into files.
type Recorder struct {
	engine Engine
	cfg    RecorderConfig
	maps   Maps
	logger zerolog.Logger
}

// NewRecorder returns a Recorder using engine.
func NewRecorder(engine Engine, cfg RecorderConfig) *Recorder {
	if cfg.Description == "" {
		cfg.Description = DefaultRecordingDescription
	}
	if cfg.Dir == "" {
		cfg.Dir = os.TempDir()
	}
	return &Recorder{
		engine: engine,
		cfg:    cfg,
		logger: log.WithComponent("recorder"),
	}
}

// MakeRecording runs the recording pipeline until end of stream, MaxBuffers
// or ctx cancellation, and atomically writes the pulled payload to
// Dir/<id>.raw. A cancelled recording leaves no file behind.
func (r *Recorder) MakeRecording(ctx context.Context) (rec Recording, err error) {
	rec = Recording{ID: uuid.NewString(), StartedAt: time.Now()}
	rec.Path = filepath.Join(r.cfg.Dir, rec.ID+defaultRecordingExt)
	logger := r.logger.With().Str(log.FieldRecordingID, rec.ID).Logger()

	defer func() {
		metrics.IncRecording(err == nil)
		if err != nil {
			logger.Error().Err(err).Str(log.FieldEvent, "recording.failed").Msg("recording failed")
		}
	}()

	if err := os.MkdirAll(r.cfg.Dir, 0o750); err != nil {
		return rec, fmt.Errorf("%w: create dir: %v", ErrRecording, err)
	}

	app, err := NewAppManager(r.engine, r.cfg.Description, WithID(rec.ID), WithLogger(logger))
	if err != nil {
		return rec, fmt.Errorf("%w: %w", ErrRecording, err)
	}
	defer func() {
		if cerr := app.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrRecording, cerr)
		}
	}()
	if !app.HasAppSink() {
		return rec, fmt.Errorf("%w: %w", ErrRecording, ErrNoAppSink)
	}

	pending, err := renameio.NewPendingFile(rec.Path)
	if err != nil {
		return rec, fmt.Errorf("%w: create pending file: %v", ErrRecording, err)
	}
	defer func() {
		if cerr := pending.Cleanup(); cerr != nil {
			logger.Debug().Err(cerr).Msg("cleanup pending recording file")
		}
	}()

	if err := app.Start(); err != nil {
		return rec, fmt.Errorf("%w: %w", ErrRecording, err)
	}

	logger.Info().
		Str(log.FieldEvent, "recording.started").
		Str(log.FieldPath, rec.Path).
		Msg("recording started")

	for r.cfg.MaxBuffers <= 0 || rec.Buffers < r.cfg.MaxBuffers {
		buf, err := app.PullBuffer(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rec, fmt.Errorf("%w: %w", ErrRecording, err)
		}
		n, err := r.write(pending, buf)
		if err != nil {
			return rec, fmt.Errorf("%w: write: %v", ErrRecording, err)
		}
		rec.Buffers++
		rec.Bytes += int64(n)
	}

	if err := app.Stop(); err != nil {
		return rec, fmt.Errorf("%w: %w", ErrRecording, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return rec, fmt.Errorf("%w: commit file: %v", ErrRecording, err)
	}
	rec.Duration = time.Since(rec.StartedAt)

	logger.Info().
		Str(log.FieldEvent, "recording.finished").
		Str(log.FieldPath, rec.Path).
		Int(log.FieldBuffers, rec.Buffers).
		Int64(log.FieldBytes, rec.Bytes).
		Dur("duration", rec.Duration).
		Msg("recording finished")
	return rec, nil
}

func (r *Recorder) write(w io.Writer, buf *Buffer) (int, error) {
	info, err := r.maps.MapBuffer(buf, MapRead)
	if err != nil {
		return 0, err
	}
	defer r.maps.UnmapBuffer(buf, info)
	return w.Write(info.Data)
}
