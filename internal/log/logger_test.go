// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestConfigureWritesServiceAndComponent(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "gstmgr-test", Version: "v0.0.1"})
	t.Cleanup(func() { Configure(Config{}) })

	l := WithComponent("manager")
	l.Debug().Str(FieldEvent, "test.event").Msg("debug line")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "gstmgr-test", entry["service"])
	require.Equal(t, "v0.0.1", entry["version"])
	require.Equal(t, "manager", entry[FieldComponent])
	require.Equal(t, "test.event", entry[FieldEvent])
}

func TestConfigureRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "warn", Output: &buf})
	t.Cleanup(func() { Configure(Config{}) })

	l := Base()
	l.Info().Msg("dropped")
	require.Zero(t, buf.Len())

	l.Warn().Msg("kept")
	require.NotZero(t, buf.Len())
}

func TestConfigureIgnoresInvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "not-a-level", Output: &buf})
	t.Cleanup(func() { Configure(Config{}) })

	require.Equal(t, zerolog.InfoLevel, Base().GetLevel())
}
