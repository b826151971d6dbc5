package app

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/gleaner/config"
)

func TestNew(t *testing.T) {
	cfg := config.Defaults()
	cfg.Extract.Parser = "strip"
	cfg.Pool.Workers = 3

	a, err := New(cfg, "1.2.3")
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, 3, a.Scraper.Defaults().Workers)
	assert.Contains(t, a.Exports.Names(), "sqlite")
	assert.NotNil(t, a.Metrics.Handler())
}

func TestNew_BadParser(t *testing.T) {
	cfg := config.Defaults()
	cfg.Extract.Parser = "xpath"
	_, err := New(cfg, "x")
	assert.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	InitLogger(config.LogConfig{Level: "warn", Format: "text"}, &buf)

	slog.Info("hidden")
	slog.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "k=v")

	buf.Reset()
	InitLogger(config.LogConfig{Level: "debug"}, &buf)
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
	slog.Debug("json")
	assert.Contains(t, buf.String(), `"msg":"json"`)
}
