package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := FromZap(zap.New(core))

	l.Info("engine", "workflow finished", map[string]interface{}{"workflow_id": "wf-1"})
	l.Error("api", "request failed", map[string]interface{}{"error": errors.New("boom")})
	l.Debug("store", "no details", nil)

	entries := logs.All()
	require.Len(t, entries, 3)

	first := entries[0].ContextMap()
	assert.Equal(t, "workflow finished", entries[0].Message)
	assert.Equal(t, "engine", first["module"])
	assert.Equal(t, map[string]interface{}{"workflow_id": "wf-1"}, first["details"])

	second := entries[1].ContextMap()
	assert.Equal(t, "boom", second["error"])

	assert.Equal(t, map[string]interface{}{}, entries[2].ContextMap()["details"])
}

func TestErrorDetailsAreText(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := FromZap(zap.New(core))

	details := map[string]interface{}{"error": errors.New("missing workflow id"), "status": 400}
	l.Warn("api", "request rejected", details)

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "missing workflow id", ctx["error"])
	assert.Equal(t, map[string]interface{}{"error": "missing workflow id", "status": 400}, ctx["details"])
	_, stillError := details["error"].(error)
	assert.True(t, stillError, "caller's map must not be modified")
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auraflow.log")
	l := New(path, true)

	l.Info("test", "hello file", nil)
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello file"`)
	assert.Contains(t, string(data), `"module":"test"`)
}

func TestNopDoesNotPanic(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() {
		l.Warn("x", "y", map[string]interface{}{"a": 1})
		l.Error("x", "y", nil)
	})
}
