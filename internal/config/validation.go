// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"github.com/ManuGH/gstmgr/internal/validate"
)

var validLogLevels = []string{"trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled"}

// Validate checks business rules on a resolved configuration.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.OneOf("logLevel", cfg.LogLevel, validLogLevels)
	v.NotEmpty("logService", cfg.LogService)
	v.OneOf("engine", cfg.Engine, []string{EngineSim, EngineGStreamer})

	v.PipelineDescription("pipeline.description", cfg.Pipeline.Description)
	if cfg.Pipeline.StateTimeout <= 0 {
		v.AddError("pipeline.stateTimeout", "must be positive", cfg.Pipeline.StateTimeout)
	}

	v.ListenAddr("api.listenAddr", cfg.API.ListenAddr)
	v.NonNegative("api.rateLimit", cfg.API.RateLimit)

	v.Directory("recording.dir", cfg.Recording.Dir, false)
	v.PipelineWithFactory("recording.description", cfg.Recording.Description, "appsink")
	v.NonNegative("recording.maxBuffers", cfg.Recording.MaxBuffers)

	return v.Err()
}
