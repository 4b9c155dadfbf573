package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Record is one captured log line.
type Record struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   []slog.Attr
}

// String formats the record as a single display line.
func (r Record) String() string {
	var b strings.Builder
	b.WriteString(r.Time.Format("15:04:05.000"))
	b.WriteByte(' ')
	b.WriteString(r.Level.String())
	b.WriteByte(' ')
	b.WriteString(r.Message)
	for _, a := range r.Attrs {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteByte('=')
		b.WriteString(a.Value.String())
	}
	return b.String()
}

type ring struct {
	mu      sync.RWMutex
	records []Record
	max     int
	notify  func()
}

// RingHandler is a slog.Handler keeping the most recent records in memory,
// for display in the TUI log pane. Handlers derived through WithAttrs and
// WithGroup share the same buffer.
type RingHandler struct {
	ring   *ring
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string
}

// NewRingHandler returns a handler holding up to size records (default
// 1000).
func NewRingHandler(size int, level slog.Leveler) *RingHandler {
	if size <= 0 {
		size = 1000
	}
	if level == nil {
		level = slog.LevelInfo
	}
	return &RingHandler{
		ring:  &ring{records: make([]Record, 0, size), max: size},
		level: level,
	}
}

// OnRecord registers a hook called after each record is stored. It must
// not log.
func (h *RingHandler) OnRecord(f func()) {
	h.ring.mu.Lock()
	defer h.ring.mu.Unlock()
	h.ring.notify = f
}

// Enabled implements slog.Handler.
func (h *RingHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *RingHandler) Handle(_ context.Context, r slog.Record) error {
	rec := Record{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs()),
	}
	rec.Attrs = append(rec.Attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		a.Key = h.prefix + a.Key
		rec.Attrs = append(rec.Attrs, a)
		return true
	})

	h.ring.mu.Lock()
	if len(h.ring.records) == h.ring.max {
		copy(h.ring.records, h.ring.records[1:])
		h.ring.records = h.ring.records[:len(h.ring.records)-1]
	}
	h.ring.records = append(h.ring.records, rec)
	notify := h.ring.notify
	h.ring.mu.Unlock()

	if notify != nil {
		notify()
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *RingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	c.attrs = append(c.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		c.attrs = append(c.attrs, a)
	}
	return &c
}

// WithGroup implements slog.Handler. Groups are flattened into dotted keys.
func (h *RingHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix = h.prefix + name + "."
	return &c
}

// Records returns a copy of every stored record, oldest first.
func (h *RingHandler) Records() []Record {
	return h.Recent(0)
}

// Recent returns up to n of the newest records, oldest first. n <= 0
// returns all of them.
func (h *RingHandler) Recent(n int) []Record {
	h.ring.mu.RLock()
	defer h.ring.mu.RUnlock()
	records := h.ring.records
	if n > 0 && n < len(records) {
		records = records[len(records)-n:]
	}
	out := make([]Record, len(records))
	copy(out, records)
	return out
}
