// Package logging builds the application logger: an in-memory ring for the
// TUI log pane, fanned out with an optional size-rotated log file.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	slogmulti "github.com/samber/slog-multi"
)

// Defaults for Options fields left at zero.
const (
	DefaultBufferSize = 1000
	DefaultMaxSizeMB  = 10
	DefaultMaxFiles   = 5
)

// Options configures New.
type Options struct {
	Level slog.Level
	// File is the log file path. Empty disables file logging.
	File      string
	MaxSizeMB int
	// MaxFiles is the number of rotated backups kept. Negative selects the
	// default; zero keeps none.
	MaxFiles   int
	BufferSize int
	// Extra receives every record too, when non-nil (e.g. stderr for
	// headless commands).
	Extra io.Writer
}

// Logger is the application logger plus the resources behind it.
type Logger struct {
	*slog.Logger
	Ring  *RingHandler
	RunID string
	file  io.Closer
}

// New builds a Logger. Every record carries a "run" attribute unique to
// this process. The caller must Close it.
func New(opts Options) (*Logger, error) {
	level := new(slog.LevelVar)
	level.Set(opts.Level)

	bufferSize := opts.BufferSize
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	ring := NewRingHandler(bufferSize, level)
	handlers := []slog.Handler{ring}

	l := &Logger{Ring: ring, RunID: uuid.NewString()}

	if opts.File != "" {
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = DefaultMaxSizeMB
		}
		maxFiles := opts.MaxFiles
		if maxFiles < 0 {
			maxFiles = DefaultMaxFiles
		}
		f, err := NewRotatingFile(opts.File, maxSize, maxFiles)
		if err != nil {
			return nil, err
		}
		l.file = f
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	}
	if opts.Extra != nil {
		handlers = append(handlers, slog.NewTextHandler(opts.Extra, &slog.HandlerOptions{Level: level}))
	}

	l.Logger = slog.New(slogmulti.Fanout(handlers...)).With("run", l.RunID)
	return l, nil
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// ErrInvalidLevel is returned by ParseLevel.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses debug, info, warn or error (case-insensitive). Empty
// means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}
