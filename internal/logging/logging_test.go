package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jask/tviewer/internal/config"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"INFO":  zapcore.InfoLevel,
		"":      zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	require.Error(t, err)
}

func TestNewWithoutOutputsIsNop(t *testing.T) {
	l, err := New(config.LogConfig{Level: "debug"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.ErrorLevel))
}

func TestFileLoggerWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tviewer.log")
	l, err := New(config.LogConfig{Level: "info", File: path, MaxSize: 1})
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("object added", zap.String("object", "sphere"))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "object added", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "sphere", entry["object"])
}

func TestStderrLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := newLogger(config.LogConfig{Level: "warn", Stderr: true}, &buf)
	require.NoError(t, err)

	l.Info("quiet")
	l.Warn("loud")
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "chatty"})
	require.Error(t, err)
}
