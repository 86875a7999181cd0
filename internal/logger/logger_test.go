package logger

import (
	"blogdigest/internal/config"
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadableHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewReadableHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	log.With(slog.String("component", "fetcher"), slog.String("run_id", "r-1")).
		Info("Fetching URL",
			slog.String("op", "fetch"),
			slog.Int("count", 3),
			slog.Duration("duration", 1234567*time.Microsecond),
			slog.Any("error", errors.New("boom")),
		)

	line := buf.String()
	assert.Regexp(t, `^\[\d{2}:\d{2}:\d{2}\.\d{3}\] INFO \[fetcher\] \(fetch\): Fetching URL \| `, line)
	assert.Contains(t, line, "run_id=r-1")
	assert.Contains(t, line, "count=3")
	assert.Contains(t, line, "duration=1.235s")
	assert.Contains(t, line, `error="boom"`)
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestReadableHandler_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewReadableHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "WARN: shown")
}

func TestReadableHandler_GroupAndLongURL(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewReadableHandler(&buf, nil))

	log.WithGroup("source").Info("fetched", slog.String("status", "200"))
	log.Info("url", slog.String("url", "https://srinijobpostings.blogspot.com/feeds/posts/default?alt=rss"))

	out := buf.String()
	assert.Contains(t, out, "source.status=200")
	assert.Contains(t, out, "url=https://srinijobpostings.blogspot.com/...")
}

func TestLevelDispatcherHandler_RoutesErrors(t *testing.T) {
	var def, errs bytes.Buffer
	log := slog.New(NewLevelDispatcherHandler(&def, &errs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log.Debug("debug message")
	log.Info("info message")
	log.With(slog.String("component", "writer")).Error("error message")

	assert.Contains(t, def.String(), "debug message")
	assert.Contains(t, def.String(), "info message")
	assert.NotContains(t, def.String(), "error message")
	assert.Contains(t, errs.String(), "ERROR [writer]: error message")
}

func TestNew_StderrByDefault(t *testing.T) {
	var buf bytes.Buffer
	log, closeFn, err := New(config.LoggerConfig{Level: "warn"}, &buf)
	require.NoError(t, err)
	defer closeFn()

	log.Info("quiet")
	log.Error("loud")

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}

func TestNew_Files(t *testing.T) {
	dir := t.TempDir()
	cfg := config.LoggerConfig{
		Level:      "info",
		File:       filepath.Join(dir, "logs", "blogdigest.log"),
		ErrorFile:  filepath.Join(dir, "logs", "blogdigest_error.log"),
		MaxSizeMB:  1,
		MaxBackups: 1,
		MaxAgeDays: 1,
	}
	var stderr bytes.Buffer
	log, closeFn, err := New(cfg, &stderr)
	require.NoError(t, err)

	log.Info("to main file")
	log.Error("to error file")
	require.NoError(t, closeFn())

	main, err := os.ReadFile(cfg.File)
	require.NoError(t, err)
	errLog, err := os.ReadFile(cfg.ErrorFile)
	require.NoError(t, err)

	assert.Contains(t, string(main), "to main file")
	assert.NotContains(t, string(main), "to error file")
	assert.Contains(t, string(errLog), "to error file")
	assert.Empty(t, stderr.String())
}
