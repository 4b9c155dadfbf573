// Package playback implements the step playback engine: a cursor into an
// immutable script, navigation that rebuilds every display surface by
// replaying the script from the start, character streaming of the live step,
// and timer driven autoplay.
//
// The engine owns all mutable playback state. Display surfaces receive
// commands and are never read back. Streaming and autoplay are independent;
// at most one of each is alive at a time, and every navigation cancels the
// running stream (forcing its full text) before it changes anything else.
//
// All methods are safe for concurrent use. Timer callbacks and method calls
// are serialised on one lock, and surfaces are invoked with that lock held,
// so a surface must never call back into the engine.
package playback

import (
	"log/slog"
	"sync"
	"time"

	"github.com/joeycumines/walkthrough/internal/script"
)

const (
	// DefaultCharsPerSecond is the default streaming reveal rate.
	DefaultCharsPerSecond = 55
	// DefaultAutoplayDelay is the autoplay pause after a step that streams
	// nothing.
	DefaultAutoplayDelay = 2 * time.Second
	// DefaultStreamPad is added to the streaming time of a step when
	// computing the autoplay pause.
	DefaultStreamPad = 800 * time.Millisecond
)

// Option configures an Engine.
type Option func(*Engine)

// WithScheduler sets the timer source. The default is SystemScheduler.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) {
		if s != nil {
			e.sched = s
		}
	}
}

// WithCharsPerSecond sets the streaming reveal rate. Values below one keep
// the default.
func WithCharsPerSecond(cps int) Option {
	return func(e *Engine) {
		if cps > 0 {
			e.cps = cps
		}
	}
}

// WithAutoplayDelay sets the autoplay pause after steps that stream nothing.
func WithAutoplayDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.delay = d
		}
	}
}

// WithStreamPad sets the extra autoplay pause after a streamed step.
func WithStreamPad(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.pad = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// Engine is the step playback engine.
type Engine struct {
	mu sync.Mutex

	script   *script.Script
	surfaces Surfaces
	sched    Scheduler
	logger   *slog.Logger
	cps      int
	delay    time.Duration
	pad      time.Duration

	cursor int
	stream *stream
	auto   *autoplay
	closed bool

	// lastAssistant is the latest assistant text applied, for Deliver steps.
	lastAssistant string
}

// New builds an engine positioned before the first step, and publishes the
// initial status.
func New(s *script.Script, surfaces Surfaces, opts ...Option) *Engine {
	e := &Engine{
		script:   s,
		surfaces: surfaces.withDefaults(),
		sched:    SystemScheduler{},
		logger:   slog.New(slog.DiscardHandler),
		cps:      DefaultCharsPerSecond,
		delay:    DefaultAutoplayDelay,
		pad:      DefaultStreamPad,
		cursor:   -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.publish()
	return e
}

// CurrentIndex returns the cursor; -1 means before the first step.
func (e *Engine) CurrentIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// StepCount returns the number of steps in the script.
func (e *Engine) StepCount() int {
	return e.script.Len()
}

// IsAutoplaying reports whether autoplay is active.
func (e *Engine) IsAutoplaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.auto != nil
}

// IsStreaming reports whether a stream is in progress.
func (e *Engine) IsStreaming() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stream != nil
}

// State returns the current status.
func (e *Engine) State() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status()
}

// Advance moves to the next step, making it live. It returns false, with no
// other effect, at the last step.
func (e *Engine) Advance() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || !e.advance() {
		return false
	}
	e.publish()
	return true
}

// Retreat moves to the previous step by replaying up to it.
func (e *Engine) Retreat() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.cursor <= -1 {
		return
	}
	e.jumpTo(e.cursor - 1)
	e.publish()
}

// JumpTo rebuilds every surface for step n, clamped into [-1, StepCount()-1].
// Autoplay stops.
func (e *Engine) JumpTo(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.jumpTo(n)
	e.publish()
}

// ResetToStart is JumpTo(-1).
func (e *Engine) ResetToStart() {
	e.JumpTo(-1)
}

// Close stops all timers. The engine ignores every later call.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.cancelStream()
	e.stopAutoplay()
	e.closed = true
	e.publish()
}

func (e *Engine) advance() bool {
	if e.cursor >= e.script.Len()-1 {
		return false
	}
	e.cancelStream()
	e.cursor++
	e.logger.Debug("advance", "step", e.cursor)
	e.applyStep(e.cursor, true)
	return true
}

func (e *Engine) jumpTo(n int) {
	e.cancelStream()
	e.stopAutoplay()

	n = max(-1, min(n, e.script.Len()-1))
	e.logger.Debug("jump", "from", e.cursor, "to", n)

	e.surfaces.Diagram.Reset()
	e.surfaces.Transcript.Clear()
	e.surfaces.Output.Clear()
	e.surfaces.UserView.Clear()
	e.lastAssistant = ""

	e.cursor = -1
	for i := 0; i <= n; i++ {
		e.cursor = i
		e.applyStep(i, i == n)
	}
}

// applyStep sends one step's directives to the surfaces. Replayed steps are
// applied instantly; a live step marks its entries recent and streams its
// streamed block.
func (e *Engine) applyStep(i int, live bool) {
	step, err := e.script.At(i)
	if err != nil {
		e.logger.Error("apply step", "step", i, "error", err)
		return
	}

	d := e.surfaces.Diagram
	d.Reset()
	e.check("activate edges", d.ActivateEdges(step.Arrows))
	e.check("glow nodes", d.GlowNodes(step.HighlightNodes))
	if step.HighlightTool != "" {
		e.check("mark tool", d.MarkToolActive(step.HighlightTool))
	}
	d.SetToolActivity(step.ToolActivity)

	t := e.surfaces.Transcript
	uv := e.surfaces.UserView
	if live {
		t.DimAll()
	}
	for _, entry := range step.Transcript {
		if entry.Streamed && live {
			id := t.Append(entry.Role, "", true)
			e.startStream(entry.Text, func(text string) { t.Update(id, text) })
		} else {
			t.Append(entry.Role, entry.Text, live)
		}
		switch entry.Role {
		case script.RoleUser:
			uv.ShowUserMessage(entry.Text)
		case script.RoleAssistant:
			e.lastAssistant = entry.Text
		}
	}

	out := e.surfaces.Output
	switch {
	case step.Output != "" && live:
		e.startStream(step.Output, out.Render)
	case step.Output != "":
		out.Render(step.Output)
	case live:
		out.Clear()
	}

	if step.Deliver && e.lastAssistant != "" {
		uv.ShowAssistantMessage(e.lastAssistant)
	}
}

func (e *Engine) check(op string, err error) {
	if err != nil {
		e.logger.Debug("surface command skipped", "op", op, "step", e.cursor, "error", err)
	}
}

func (e *Engine) status() Status {
	s := Status{
		Cursor:      e.cursor,
		Total:       e.script.Len(),
		Autoplaying: e.auto != nil,
		Streaming:   e.stream != nil,
	}
	if step, err := e.script.At(e.cursor); err == nil {
		s.Insight = step.Insight
	}
	return s
}

func (e *Engine) publish() {
	e.surfaces.Status.Update(e.status())
}
