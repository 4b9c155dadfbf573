package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingHandlerKeepsNewest(t *testing.T) {
	t.Parallel()

	h := NewRingHandler(3, slog.LevelDebug)
	log := slog.New(h)
	for _, msg := range []string{"a", "b", "c", "d"} {
		log.Info(msg)
	}

	var got []string
	for _, r := range h.Records() {
		got = append(got, r.Message)
	}
	assert.Equal(t, []string{"b", "c", "d"}, got)

	recent := h.Recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, "d", recent[0].Message)
	assert.Len(t, h.Recent(10), 3)
}

func TestRingHandlerLevelAndAttrs(t *testing.T) {
	t.Parallel()

	h := NewRingHandler(10, slog.LevelInfo)
	var notified atomic.Int32
	h.OnRecord(func() { notified.Add(1) })

	log := slog.New(h).With("step", 3).WithGroup("stream")
	log.Debug("hidden")
	log.Info("tick", "chars", 5)

	records := h.Records()
	require.Len(t, records, 1)
	assert.EqualValues(t, 1, notified.Load())
	r := records[0]
	assert.Equal(t, slog.LevelInfo, r.Level)
	require.Len(t, r.Attrs, 2)
	assert.Equal(t, "step", r.Attrs[0].Key)
	assert.Equal(t, "stream.chars", r.Attrs[1].Key)
	assert.True(t, strings.HasSuffix(r.String(), "INFO tick step=3 stream.chars=5"), r.String())
}

func TestNewWritesEverywhere(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "walkthrough.log")
	var extra bytes.Buffer
	l, err := New(Options{Level: slog.LevelDebug, File: path, MaxFiles: -1, Extra: &extra})
	require.NoError(t, err)
	require.NotEmpty(t, l.RunID)

	l.Debug("advance", "step", 1)
	require.NoError(t, l.Close())

	records := l.Ring.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "run", records[0].Attrs[0].Key)
	assert.Equal(t, l.RunID, records[0].Attrs[0].Value.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &line))
	assert.Equal(t, "advance", line["msg"])
	assert.Equal(t, l.RunID, line["run"])

	assert.Contains(t, extra.String(), "msg=advance")
}

func TestNewRespectsLevel(t *testing.T) {
	t.Parallel()

	l, err := New(Options{Level: slog.LevelWarn})
	require.NoError(t, err)
	defer l.Close()
	l.Info("dropped")
	l.Warn("kept")
	records := l.Ring.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "kept", records[0].Message)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.ErrorIs(t, err, ErrInvalidLevel)
}
