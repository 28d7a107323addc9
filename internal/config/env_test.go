// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ManuGH/gstmgr/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseString(t *testing.T) {
	const key = "GSTMGR_TEST_STRING"
	assert.Equal(t, "def", ParseString(key, "def"))

	t.Setenv(key, "")
	assert.Equal(t, "def", ParseString(key, "def"))

	t.Setenv(key, "val")
	assert.Equal(t, "val", ParseString(key, "def"))
}

func TestParseBool(t *testing.T) {
	const key = "GSTMGR_TEST_BOOL"
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"YES", true},
		{"1", true},
		{"false", false},
		{"no", false},
		{"0", false},
		{"maybe", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv(key, tt.value)
			assert.Equal(t, tt.want, ParseBool(key, true))
		})
	}
}

func TestParseInt(t *testing.T) {
	const key = "GSTMGR_TEST_INT"
	assert.Equal(t, 3, ParseInt(key, 3))

	t.Setenv(key, "42")
	assert.Equal(t, 42, ParseInt(key, 3))

	t.Setenv(key, "4x")
	assert.Equal(t, 3, ParseInt(key, 3))
}

func TestParseDuration(t *testing.T) {
	const key = "GSTMGR_TEST_DURATION"
	assert.Equal(t, time.Second, ParseDuration(key, time.Second))

	t.Setenv(key, "1m30s")
	assert.Equal(t, 90*time.Second, ParseDuration(key, time.Second))

	t.Setenv(key, "90")
	assert.Equal(t, time.Second, ParseDuration(key, time.Second))
}

func TestParseEnvLogsSource(t *testing.T) {
	var buf bytes.Buffer
	log.Configure(log.Config{Level: "debug", Output: &buf})
	t.Cleanup(func() { log.Configure(log.Config{}) })

	const key = "GSTMGR_TEST_SOURCE"
	t.Setenv(key, "7")
	require.Equal(t, 7, ParseInt(key, 1))
	t.Setenv(key, "seven")
	require.Equal(t, 1, ParseInt(key, 1))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var ok, bad map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &ok))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &bad))

	assert.Equal(t, "environment", ok["source"])
	assert.EqualValues(t, 7, ok["value"])
	assert.Equal(t, "warn", bad["level"])
	assert.Equal(t, "seven", bad["value"])
	assert.EqualValues(t, 1, bad["default"])
}
