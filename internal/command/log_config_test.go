package command

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/walkthrough/internal/config"
	"github.com/joeycumines/walkthrough/internal/logging"
)

func TestResolveLogOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		unsetEnv(t, "WALKTHROUGH_LOG_LEVEL", "WALKTHROUGH_LOG_FILE")
		opts, err := resolveLogOptions("", "", "play", config.NewConfig())
		require.NoError(t, err)
		assert.Equal(t, slog.LevelInfo, opts.Level)
		assert.Empty(t, opts.File)
		assert.Equal(t, 1000, opts.BufferSize)
		assert.Equal(t, 10, opts.MaxSizeMB)
		assert.Equal(t, 5, opts.MaxFiles)
	})

	t.Run("config", func(t *testing.T) {
		unsetEnv(t, "WALKTHROUGH_LOG_LEVEL", "WALKTHROUGH_LOG_FILE")
		cfg := config.NewConfig()
		cfg.SetGlobalOption("log.level", "warn")
		cfg.SetGlobalOption("log.file", "/tmp/global.log")
		cfg.SetCommandOption("print", "log.level", "debug")
		cfg.SetGlobalOption("log.max-files", "0")

		opts, err := resolveLogOptions("", "", "print", cfg)
		require.NoError(t, err)
		assert.Equal(t, slog.LevelDebug, opts.Level)
		assert.Equal(t, "/tmp/global.log", opts.File)
		assert.Equal(t, 0, opts.MaxFiles)

		opts, err = resolveLogOptions("", "", "play", cfg)
		require.NoError(t, err)
		assert.Equal(t, slog.LevelWarn, opts.Level)
	})

	t.Run("flags win", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.SetGlobalOption("log.level", "warn")
		cfg.SetGlobalOption("log.file", "/tmp/global.log")

		opts, err := resolveLogOptions("/tmp/flag.log", "error", "play", cfg)
		require.NoError(t, err)
		assert.Equal(t, slog.LevelError, opts.Level)
		assert.Equal(t, "/tmp/flag.log", opts.File)
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := resolveLogOptions("", "loud", "play", config.NewConfig())
		assert.ErrorIs(t, err, logging.ErrInvalidLevel)
	})

	t.Run("invalid number", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.SetGlobalOption("log.buffer-size", "lots")
		_, err := resolveLogOptions("", "info", "play", cfg)
		assert.Error(t, err)
	})
}

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestOpenLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "walkthrough.log")
	logger, err := openLogger(path, "debug", "print", config.NewConfig(), nil)
	require.NoError(t, err)
	logger.Debug("hello", "k", "v")
	require.NoError(t, logger.Close())

	records := logger.Ring.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "hello", records[0].Message)
	assert.FileExists(t, path)
}
