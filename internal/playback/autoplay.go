package playback

import (
	"time"

	"github.com/joeycumines/walkthrough/internal/highlight"
)

type autoplay struct {
	timer Timer
}

// ToggleAutoplay stops autoplay if it is running. Otherwise it advances
// once immediately and keeps advancing, pausing after each step for long
// enough to read it, until the last step is reached.
func (e *Engine) ToggleAutoplay() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	if e.auto != nil {
		e.stopAutoplay()
		e.publish()
		return
	}
	a := &autoplay{}
	e.auto = a
	e.logger.Debug("autoplay started", "step", e.cursor)
	e.autoStep(a)
	e.publish()
}

// autoStep is one autoplay tick. Must be called with e.mu held.
func (e *Engine) autoStep(a *autoplay) {
	if e.auto != a {
		return
	}
	if !e.advance() {
		e.stopAutoplay()
		return
	}
	a.timer = e.sched.AfterFunc(e.autoplayDelay(), func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.auto != a {
			return
		}
		e.autoStep(a)
		e.publish()
	})
}

// autoplayDelay is the pause after the current step: long enough to stream
// its text plus a pad, or the fixed delay.
func (e *Engine) autoplayDelay() time.Duration {
	step, err := e.script.At(e.cursor)
	if err != nil {
		return e.delay
	}
	text, ok := step.StreamedText()
	if !ok {
		return e.delay
	}
	return time.Duration(highlight.Graphemes(text))*time.Second/time.Duration(e.cps) + e.pad
}

func (e *Engine) stopAutoplay() {
	a := e.auto
	if a == nil {
		return
	}
	e.auto = nil
	if a.timer != nil {
		a.timer.Stop()
	}
	e.logger.Debug("autoplay stopped", "step", e.cursor)
}
