package logger

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogFunctions(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := SetLogger(zap.New(core))
	defer restore()

	fields := map[string]interface{}{"workflow": "thumbs"}
	LogDebug("debug", nil)
	LogInfo("info", fields)
	LogWarn("warn", fields)
	LogError("error", fmt.Errorf("boom"), fields)
	LogError("no error", nil, nil)

	entries := logs.All()
	require.Len(t, entries, 5)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "thumbs", entries[2].ContextMap()["workflow"])
	assert.Equal(t, "boom", entries[3].ContextMap()["error"])
	assert.NotContains(t, fields, "error", "caller fields are not modified")
	assert.Empty(t, entries[4].ContextMap())
}

func TestMergeFields(t *testing.T) {
	base := map[string]interface{}{"a": 1, "b": 2}
	merged := MergeFields(base, map[string]interface{}{"b": 3, "c": 4})

	assert.Equal(t, map[string]interface{}{"a": 1, "b": 3, "c": 4}, merged)
	assert.Equal(t, 2, base["b"])
}

func TestInitLogger(t *testing.T) {
	prev := Logger
	defer func() { Logger = prev }()

	logFile := filepath.Join(t.TempDir(), "logs", "app.log")
	require.NoError(t, InitLogger(LoggerConfig{LogFormat: "json", LogFile: logFile, Quiet: true}))
	assert.FileExists(t, logFile)
	assert.False(t, Logger.Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, Logger.Desugar().Core().Enabled(zapcore.WarnLevel))
}
