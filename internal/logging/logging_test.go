package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer

	logger, err := New(Config{Level: "debug", Format: "json", Writer: &buf})
	require.NoError(t, err)

	logger.Debug("parsed", "units", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "parsed", entry["msg"])
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, float64(3), entry["units"])
}

func TestNewFiltersLevel(t *testing.T) {
	var buf bytes.Buffer

	logger, err := New(Config{Level: "warn", Writer: &buf})
	require.NoError(t, err)

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestNewInvalid(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)

	_, err = New(Config{Format: "xml"})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in     string
		expect slog.Level
		fail   bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}

	for _, c := range cases {
		level, err := ParseLevel(c.in)
		if c.fail {
			assert.Error(t, err, c.in)
			continue
		}

		require.NoError(t, err, c.in)
		assert.Equal(t, c.expect, level, c.in)
	}
}
