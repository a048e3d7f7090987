package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/go-logr/logr"
	"github.com/go-logr/zerologr"
	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	t.Setenv("KUBERNETES_SERVICE_HOST", "")

	var buf bytes.Buffer
	logger, err := New(&buf, "warn")
	assert.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewJSONInCluster(t *testing.T) {
	t.Setenv("KUBERNETES_SERVICE_HOST", "10.0.0.1")

	var buf bytes.Buffer
	logger, err := New(&buf, "info")
	assert.NoError(t, err)

	logger.Info().Str("path", "out.dot").Msg("Wrote graph")
	assert.Contains(t, buf.String(), `"path":"out.dot"`)
	assert.Contains(t, buf.String(), `"message":"Wrote graph"`)
}

func TestBridgedSlogDebug(t *testing.T) {
	t.Setenv("KUBERNETES_SERVICE_HOST", "10.0.0.1")

	bridged := func(t *testing.T, level string) string {
		t.Helper()
		var buf bytes.Buffer
		logger, err := New(&buf, level)
		assert.NoError(t, err)

		log := slog.New(logr.ToSlogHandler(zerologr.New(logger)))
		log.Debug("Skipping non-consumer group", "group", "connect")
		log.Info("Collected consumer group", "group", "billing")
		return buf.String()
	}

	t.Run("debug level writes debug records", func(t *testing.T) {
		out := bridged(t, "debug")
		assert.Contains(t, out, `"message":"Skipping non-consumer group"`)
		assert.Contains(t, out, `"message":"Collected consumer group"`)
	})

	t.Run("info level drops debug records", func(t *testing.T) {
		out := bridged(t, "info")
		assert.NotContains(t, out, "Skipping non-consumer group")
		assert.Contains(t, out, `"message":"Collected consumer group"`)
	})
}

func TestParseLevel(t *testing.T) {
	for level, want := range map[string]zerolog.Level{
		"":      zerolog.InfoLevel,
		"DEBUG": zerolog.TraceLevel,
		"warn":  zerolog.WarnLevel,
		"error": zerolog.ErrorLevel,
	} {
		got, err := parseLevel(level)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := parseLevel("loud")
	assert.Error(t, err)
}
