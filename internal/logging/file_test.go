package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileLogger_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.log")

	log, closer := NewFileLogger(path, slog.LevelWarn)
	log.With("module", "sync").Warn(context.Background(), "sync finished", "pushed", 2)
	log.Info(context.Background(), "hidden")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1, "info must be filtered at warn level")

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "sync finished", rec["msg"])
	assert.Equal(t, "sync", rec["module"])
	assert.EqualValues(t, 2, rec["pushed"])
}

func TestNewFileLogger_EmptyPathUsesStderr(t *testing.T) {
	log, closer := NewFileLogger("", slog.LevelError)
	require.NotNil(t, log)
	require.NoError(t, closer.Close())
}

func TestNewRotatingWriter_Limits(t *testing.T) {
	w := NewRotatingWriter("x.log")
	assert.Equal(t, "x.log", w.Filename)
	assert.Equal(t, maxLogSizeMB, w.MaxSize)
	assert.Equal(t, maxLogBackups, w.MaxBackups)
	assert.Equal(t, maxLogAgeDays, w.MaxAge)
	assert.True(t, w.Compress)
}

func TestNop_DiscardsAndChains(t *testing.T) {
	l := Nop()
	l.Info(context.Background(), "x")
	l.Warn(context.Background(), "x")
	l.Error(context.Background(), "x")
	assert.NotNil(t, l.With("k", "v"))
}
