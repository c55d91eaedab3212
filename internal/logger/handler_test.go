package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer, level slog.Level) *slog.Logger {
	h := NewPrettyHandler(buf, &slog.HandlerOptions{Level: level})
	h.color = false
	return slog.New(h)
}

func TestPrettyHandler(t *testing.T) {
	t.Parallel()

	t.Run("writes level message and attributes", func(t *testing.T) {
		var buf bytes.Buffer
		newTestLogger(&buf, slog.LevelInfo).Info("request", "status", 303, "path", "/login")

		line := buf.String()
		require.Contains(t, line, "INFO  request")
		require.Contains(t, line, "status=303")
		require.Contains(t, line, "path=/login")
		require.True(t, strings.HasSuffix(line, "\n"))
	})

	t.Run("redacts credentials", func(t *testing.T) {
		var buf bytes.Buffer
		newTestLogger(&buf, slog.LevelInfo).Warn("login", "password", "hunter2", "Token", "eyJ.x.y")

		require.NotContains(t, buf.String(), "hunter2")
		require.NotContains(t, buf.String(), "eyJ.x.y")
		require.Contains(t, buf.String(), "password=[redacted]")
	})

	t.Run("redacts raw session ids", func(t *testing.T) {
		var buf bytes.Buffer
		newTestLogger(&buf, slog.LevelInfo).Info("request", "session_id", "5b7e3f52-4c1e-4f0a-9a44-1f1b7a2d9c10")

		require.NotContains(t, buf.String(), "5b7e3f52")
		require.Contains(t, buf.String(), "session_id=[redacted]")
	})

	t.Run("filters below the configured level", func(t *testing.T) {
		var buf bytes.Buffer
		newTestLogger(&buf, slog.LevelWarn).Info("hidden")
		require.Empty(t, buf.String())
	})

	t.Run("prefixes grouped and stored attributes", func(t *testing.T) {
		var buf bytes.Buffer
		newTestLogger(&buf, slog.LevelInfo).With("component", "audit").WithGroup("event").Info("audit", "type", "session.started")

		require.Contains(t, buf.String(), " component=audit")
		require.Contains(t, buf.String(), "event.type=session.started")
	})
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	require.Equal(t, slog.LevelDebug, LevelFromEnv("LOG_LEVEL", slog.LevelInfo))

	t.Setenv("LOG_LEVEL", "nonsense")
	require.Equal(t, slog.LevelInfo, LevelFromEnv("LOG_LEVEL", slog.LevelInfo))
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	id := "5b7e3f52-4c1e-4f0a-9a44-1f1b7a2d9c10"
	fp := Fingerprint(id)

	require.Len(t, fp, 12)
	require.Equal(t, fp, Fingerprint(id))
	require.NotEqual(t, fp, Fingerprint("7d1e0a9c-0b52-4f4e-8e0d-3c9a1b2f4e55"))
	require.Empty(t, Fingerprint(""))
}
