// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ManuGH/gstmgr/internal/gst"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultLogLevel     = "info"
	DefaultLogService   = "gstmgr"
	DefaultPipeline     = "videotestsrc ! fakesink"
	DefaultStateTimeout = 5 * time.Second
	DefaultListenAddr   = ":8088"
	DefaultRateLimit    = 120
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath string
	version    string
	// ConsumedEnvKeys records every environment key the loader looked up.
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults
// and validates the result.
func (l *Loader) Load() (AppConfig, error) {
	cfg := AppConfig{}

	// 1. Set defaults
	l.setDefaults(&cfg)

	// 2. Load from file (if provided)
	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		if err := mergeFileConfig(&cfg, fileCfg); err != nil {
			return cfg, fmt.Errorf("merge file config: %w", err)
		}
	}

	// 3. Override with environment variables (highest priority)
	l.mergeEnvConfig(&cfg)

	if abs, err := filepath.Abs(cfg.Recording.Dir); err == nil {
		cfg.Recording.Dir = abs
	}

	// 4. Version from binary
	cfg.Version = l.version

	// 5. Validate final configuration
	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (l *Loader) setDefaults(cfg *AppConfig) {
	cfg.LogLevel = DefaultLogLevel
	cfg.LogService = DefaultLogService
	cfg.Engine = EngineSim
	cfg.Pipeline = PipelineConfig{
		Description:  DefaultPipeline,
		StateTimeout: DefaultStateTimeout,
	}
	cfg.API = APIConfig{
		ListenAddr: DefaultListenAddr,
		RateLimit:  DefaultRateLimit,
	}
	cfg.Recording = RecordingConfig{
		Dir:         filepath.Join(os.TempDir(), "gstmgr"),
		Description: gst.DefaultRecordingDescription,
	}
}

// loadFile loads configuration from a YAML file with STRICT parsing.
// Unknown fields will cause a fatal error to prevent misconfiguration.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return parseFile(data)
}

func parseFile(data []byte) (*FileConfig, error) {
	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("%w: %v", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	// Strict: Ensure no multiple documents or trailing content
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return &fileCfg, nil
}

func mergeFileConfig(dst *AppConfig, src *FileConfig) error {
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.LogService != "" {
		dst.LogService = src.LogService
	}
	if src.Engine != "" {
		dst.Engine = src.Engine
	}

	if src.Pipeline.Description != "" {
		dst.Pipeline.Description = src.Pipeline.Description
	}
	if src.Pipeline.AutoStart != nil {
		dst.Pipeline.AutoStart = *src.Pipeline.AutoStart
	}
	if src.Pipeline.StateTimeout != "" {
		d, err := time.ParseDuration(src.Pipeline.StateTimeout)
		if err != nil {
			return fmt.Errorf("pipeline.stateTimeout: %w", err)
		}
		dst.Pipeline.StateTimeout = d
	}

	if src.API.ListenAddr != "" {
		dst.API.ListenAddr = src.API.ListenAddr
	}
	if src.API.RateLimit != nil {
		dst.API.RateLimit = *src.API.RateLimit
	}

	if src.Recording.Dir != "" {
		dst.Recording.Dir = src.Recording.Dir
	}
	if src.Recording.Description != "" {
		dst.Recording.Description = src.Recording.Description
	}
	if src.Recording.MaxBuffers != nil {
		dst.Recording.MaxBuffers = *src.Recording.MaxBuffers
	}
	return nil
}

func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.LogLevel = l.envString(EnvLogLevel, cfg.LogLevel)
	cfg.LogService = l.envString(EnvLogService, cfg.LogService)
	cfg.Engine = l.envString(EnvEngine, cfg.Engine)

	cfg.Pipeline.Description = l.envString(EnvPipeline, cfg.Pipeline.Description)
	cfg.Pipeline.AutoStart = l.envBool(EnvAutoStart, cfg.Pipeline.AutoStart)
	cfg.Pipeline.StateTimeout = l.envDuration(EnvStateTimeout, cfg.Pipeline.StateTimeout)

	cfg.API.ListenAddr = l.envString(EnvListen, cfg.API.ListenAddr)
	cfg.API.RateLimit = l.envInt(EnvRateLimit, cfg.API.RateLimit)

	cfg.Recording.Dir = l.envString(EnvRecordingDir, cfg.Recording.Dir)
	cfg.Recording.Description = l.envString(EnvRecordingPipeline, cfg.Recording.Description)
	cfg.Recording.MaxBuffers = l.envInt(EnvRecordingMaxBuffers, cfg.Recording.MaxBuffers)
}
