// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// Engine names accepted in configuration.
const (
	EngineSim       = "sim"
	EngineGStreamer = "gstreamer"
)

// Environment variables read by Loader.
const (
	EnvLogLevel            = "GSTMGR_LOG_LEVEL"
	EnvLogService          = "GSTMGR_LOG_SERVICE"
	EnvEngine              = "GSTMGR_ENGINE"
	EnvPipeline            = "GSTMGR_PIPELINE"
	EnvAutoStart           = "GSTMGR_AUTOSTART"
	EnvStateTimeout        = "GSTMGR_STATE_TIMEOUT"
	EnvListen              = "GSTMGR_LISTEN"
	EnvRateLimit           = "GSTMGR_RATE_LIMIT"
	EnvRecordingDir        = "GSTMGR_RECORDING_DIR"
	EnvRecordingPipeline   = "GSTMGR_RECORDING_PIPELINE"
	EnvRecordingMaxBuffers = "GSTMGR_RECORDING_MAX_BUFFERS"
)

// FileConfig is the on-disk YAML shape. Pointer fields distinguish an
// absent key from a zero value.
type FileConfig struct {
	LogLevel   string              `yaml:"logLevel,omitempty"`
	LogService string              `yaml:"logService,omitempty"`
	Engine     string              `yaml:"engine,omitempty"`
	Pipeline   PipelineFileConfig  `yaml:"pipeline,omitempty"`
	API        APIFileConfig       `yaml:"api,omitempty"`
	Recording  RecordingFileConfig `yaml:"recording,omitempty"`
}

// PipelineFileConfig is the pipeline section of FileConfig.
type PipelineFileConfig struct {
	Description  string `yaml:"description,omitempty"`
	AutoStart    *bool  `yaml:"autoStart,omitempty"`
	StateTimeout string `yaml:"stateTimeout,omitempty"`
}

// APIFileConfig is the api section of FileConfig.
type APIFileConfig struct {
	ListenAddr string `yaml:"listenAddr,omitempty"`
	RateLimit  *int   `yaml:"rateLimit,omitempty"`
}

// RecordingFileConfig is the recording section of FileConfig.
type RecordingFileConfig struct {
	Dir         string `yaml:"dir,omitempty"`
	Description string `yaml:"description,omitempty"`
	MaxBuffers  *int   `yaml:"maxBuffers,omitempty"`
}

// AppConfig is the resolved runtime configuration.
type AppConfig struct {
	Version    string
	LogLevel   string
	LogService string
	Engine     string
	Pipeline   PipelineConfig
	API        APIConfig
	Recording  RecordingConfig
}

// PipelineConfig holds the managed pipeline settings.
type PipelineConfig struct {
	Description string
	AutoStart   bool
	// StateTimeout bounds readiness state queries.
	StateTimeout time.Duration
}

// APIConfig holds the HTTP control surface settings.
type APIConfig struct {
	ListenAddr string
	// RateLimit is requests per minute per client IP; 0 disables limiting.
	RateLimit int
}

// RecordingConfig holds the recorder settings.
type RecordingConfig struct {
	Dir         string
	Description string
	MaxBuffers  int
}
