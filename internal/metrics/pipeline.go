// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PipelinesCreatedTotal counts pipeline construction attempts by result.
	PipelinesCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gstmgr_pipelines_created_total",
		Help: "Total number of pipeline construction attempts by result",
	}, []string{"result"})

	// PipelineStateChangesTotal counts requested state transitions by target and result.
	PipelineStateChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gstmgr_pipeline_state_changes_total",
		Help: "Total number of requested pipeline state changes by target state and result",
	}, []string{"target", "result"})

	// PipelinesActive tracks pipelines that are built and not yet closed.
	PipelinesActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gstmgr_pipelines_active",
		Help: "Number of pipelines currently owned by a manager",
	})

	// BuffersTotal counts buffers moved through application sinks and sources.
	BuffersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gstmgr_buffers_total",
		Help: "Total number of buffers pulled from appsinks or pushed to appsrcs",
	}, []string{"direction"})

	// BufferBytesTotal counts payload bytes moved through application sinks and sources.
	BufferBytesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gstmgr_buffer_bytes_total",
		Help: "Total payload bytes pulled from appsinks or pushed to appsrcs",
	}, []string{"direction"})

	// RecordingsTotal counts recordings by result.
	RecordingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gstmgr_recordings_total",
		Help: "Total number of recordings by result",
	}, []string{"result"})
)

const (
	DirectionPull = "pull"
	DirectionPush = "push"
)

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}

// IncPipelineCreated records a pipeline construction attempt.
func IncPipelineCreated(ok bool) {
	PipelinesCreatedTotal.WithLabelValues(result(ok)).Inc()
}

// IncStateChange records a requested state transition.
func IncStateChange(target string, ok bool) {
	if target == "" {
		target = "unknown"
	}
	PipelineStateChangesTotal.WithLabelValues(target, result(ok)).Inc()
}

// ObserveBuffer records one buffer moving in the given direction.
func ObserveBuffer(direction string, size int) {
	if direction == "" {
		direction = "unknown"
	}
	BuffersTotal.WithLabelValues(direction).Inc()
	BufferBytesTotal.WithLabelValues(direction).Add(float64(size))
}

// IncRecording records a finished recording attempt.
func IncRecording(ok bool) {
	RecordingsTotal.WithLabelValues(result(ok)).Inc()
}
