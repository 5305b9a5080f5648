package logging_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/swallow/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWriter_RenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWriter(&buf, slog.LevelInfo)
	logger.Info("commit failed", "error", errors.New("locked"))
	logger.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "err=locked")
	assert.NotContains(t, out, "error=")
	assert.NotContains(t, out, "hidden")
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"":      slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := logging.ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := logging.ParseLevel("loud")
	assert.Error(t, err)
}
