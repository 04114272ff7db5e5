package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/AshkanYarmoradi/go-foundation"
)

func TestZapAdapter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapAdapter(zap.New(core).Sugar())

	logger.Debug("debug message", "artifact", "local_bus")
	logger.Info("info message", "files", 3)
	logger.Warn("warn message")
	logger.Error("error message", "error", "boom")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "local_bus", entries[0].ContextMap()["artifact"])
	assert.Equal(t, int64(3), entries[1].ContextMap()["files"])
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "error message", entries[3].Message)
}

func TestNewZapAdapter_Nil(t *testing.T) {
	assert.Equal(t, foundation.NopLogger(), NewZapAdapter(nil))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"":      zapcore.InfoLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseLevel("trace")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New("info", "json", &buf)
		require.NoError(t, err)

		logger.Debug("hidden")
		logger.Info("Generation completed", "files", 2)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "Generation completed", entry["msg"])
		assert.Equal(t, float64(2), entry["files"])
		assert.Contains(t, entry, "time")
	})

	t.Run("console", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New("debug", "console", &buf)
		require.NoError(t, err)

		logger.Debug("Generated file", "path", "a.go")
		assert.Contains(t, buf.String(), "DEBUG")
		assert.Contains(t, buf.String(), "Generated file")
		assert.Contains(t, buf.String(), "a.go")
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := New("info", "logfmt", &bytes.Buffer{})
		assert.Error(t, err)
		_, err = New("loud", "json", &bytes.Buffer{})
		assert.Error(t, err)
	})
}
