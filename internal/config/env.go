// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/gstmgr/internal/log"
	"github.com/rs/zerolog"
)

// fieldWriter attaches a typed value to a log event.
type fieldWriter[T any] func(e *zerolog.Event, key string, v T) *zerolog.Event

// parseEnv reads key from the environment. An unset or empty variable yields
// def, and so does a value parse rejects. Every outcome is logged with its source.
func parseEnv[T any](key string, def T, parse func(string) (T, error), field fieldWriter[T]) T {
	logger := log.WithComponent("config")

	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		msg := "using default value"
		if ok {
			msg = "using default value (environment variable is empty)"
		}
		field(logger.Debug().Str("key", key), "default", def).
			Str("source", "default").
			Msg(msg)
		return def
	}

	v, err := parse(raw)
	if err != nil {
		field(logger.Warn().Str("key", key).Str("value", raw), "default", def).
			Err(err).
			Msg("invalid environment variable, using default")
		return def
	}
	field(logger.Debug().Str("key", key), "value", v).
		Str("source", "environment").
		Msg("using environment variable")
	return v
}

// ParseString reads a string from the environment or returns defaultValue.
func ParseString(key, defaultValue string) string {
	return parseEnv(key, defaultValue, func(s string) (string, error) { return s, nil }, (*zerolog.Event).Str)
}

// ParseInt reads an integer from the environment or returns defaultValue.
func ParseInt(key string, defaultValue int) int {
	return parseEnv(key, defaultValue, strconv.Atoi, (*zerolog.Event).Int)
}

// ParseDuration reads a Go duration ("5s", "1m30s") from the environment or
// returns defaultValue.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	return parseEnv(key, defaultValue, time.ParseDuration, (*zerolog.Event).Dur)
}

// ParseBool reads a boolean from the environment or returns defaultValue.
// It accepts "true", "false", "1", "0", "yes", "no" (case-insensitive).
func ParseBool(key string, defaultValue bool) bool {
	return parseEnv(key, defaultValue, parseBool, (*zerolog.Event).Bool)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}
