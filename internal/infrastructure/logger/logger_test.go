package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, Config{Level: "info", Format: "json"})
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("job done", "paths", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "job done", rec["msg"])
	require.EqualValues(t, 3, rec["paths"])
}

func TestNew_DebugOverridesLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, Config{Level: "error", Debug: true})
	require.NoError(t, err)

	l.Debug(">> PENUP")
	require.Contains(t, buf.String(), ">> PENUP")
	require.Contains(t, buf.String(), "source=")
}

func TestNew_Rejects(t *testing.T) {
	_, err := New(&bytes.Buffer{}, Config{Level: "loud"})
	require.Error(t, err)

	_, err = New(&bytes.Buffer{}, Config{Format: "xml"})
	require.Error(t, err)
}
