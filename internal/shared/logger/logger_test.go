package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptuchik/billing/internal/shared/config"
)

func TestInit_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "billing.log")

	err := Init(&config.LoggerConfig{Level: "warn", Format: "json", OutputPath: path}, "release")
	require.NoError(t, err)
	t.Cleanup(func() { Logger = nil })

	Info("renewal sweep finished", "processed", 3)
	Warn("renewal attempt failed", "subscription_id", 42)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	require.Len(t, lines, 1, "info must be filtered at warn level")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "renewal attempt failed", entry["msg"])
	assert.EqualValues(t, 42, entry["subscription_id"])
	assert.Contains(t, entry, slog.SourceKey)
}

func TestInit_InvalidOutputPath(t *testing.T) {
	err := Init(&config.LoggerConfig{OutputPath: filepath.Join(t.TempDir(), "missing", "x.log")}, "debug")
	assert.Error(t, err)
}

func TestConditionalSourceHandler_Levels(t *testing.T) {
	tests := []struct {
		name       string
		level      slog.Level
		wantSource bool
	}{
		{"info has no source", slog.LevelInfo, false},
		{"warn has source", slog.LevelWarn, true},
		{"error has source", slog.LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			base := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
			h := NewConditionalSourceHandler(base, slog.LevelWarn, slog.LevelError)

			slog.New(h).Log(context.Background(), tt.level, "message")

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			_, ok := entry[slog.SourceKey]
			assert.Equal(t, tt.wantSource, ok)
		})
	}
}

func TestNewNopLogger(t *testing.T) {
	l := NewNopLogger()
	assert.NotPanics(t, func() {
		l.Infow("ignored", "key", "value")
		l.With("component", "test").Errorw("ignored")
	})
}
