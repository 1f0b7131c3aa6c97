package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{" error ", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMultiHandler(t *testing.T) {
	var a, b bytes.Buffer
	logger := slog.New(NewMultiHandler(slog.LevelInfo, &a, &b))

	logger.Debug("hidden")
	logger.With("component", "runs").WithGroup("req").Info("shown", "id", "r1")

	for _, out := range []string{a.String(), b.String()} {
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, "msg=shown")
		assert.Contains(t, out, "component=runs")
		assert.Contains(t, out, "req.id=r1")
	}
	assert.False(t, logger.Enabled(t.Context(), slog.LevelDebug))
}

func TestSetup(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	dir := filepath.Join(t.TempDir(), "logs")
	var console bytes.Buffer

	logger, closer, err := Setup("simdesk-test", dir, "debug", &console)
	require.NoError(t, err)
	logger.Debug("hello", "n", 1)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, FileName("simdesk-test", time.Now())))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "msg=hello"))
	assert.Contains(t, console.String(), "n=1")

	_, _, err = Setup("x", dir, "loud", &console)
	assert.Error(t, err)
}
