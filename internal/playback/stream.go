package playback

import (
	"time"

	"github.com/joeycumines/walkthrough/internal/highlight"
)

// stream reveals text one grapheme cluster per tick. The pointer itself is
// the ownership ticket: a tick whose stream is no longer e.stream is stale
// and does nothing.
type stream struct {
	text     string
	total    int
	revealed int
	interval time.Duration
	render   func(string)
	timer    Timer
}

// startStream replaces any running stream. Must be called with e.mu held.
func (e *Engine) startStream(text string, render func(string)) {
	e.cancelStream()

	s := &stream{
		text:     text,
		total:    highlight.Graphemes(text),
		interval: time.Second / time.Duration(e.cps),
		render:   render,
	}
	if s.total == 0 {
		render(text)
		return
	}
	render("")
	e.stream = s
	s.timer = e.sched.AfterFunc(s.interval, func() { e.tick(s) })
	e.logger.Debug("stream started", "step", e.cursor, "chars", s.total, "interval", s.interval)
}

func (e *Engine) tick(s *stream) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stream != s {
		return
	}
	s.revealed++
	if s.revealed >= s.total {
		s.render(s.text)
		e.stream = nil
		e.logger.Debug("stream finished", "step", e.cursor)
		e.publish()
		return
	}
	s.render(highlight.Prefix(s.text, s.revealed))
	s.timer = e.sched.AfterFunc(s.interval, func() { e.tick(s) })
}

// cancelStream stops the running stream and renders its full text before
// returning. Must be called with e.mu held.
func (e *Engine) cancelStream() {
	s := e.stream
	if s == nil {
		return
	}
	e.stream = nil
	if s.timer != nil {
		s.timer.Stop()
	}
	s.render(s.text)
	e.logger.Debug("stream cancelled", "step", e.cursor, "revealed", s.revealed, "chars", s.total)
}
