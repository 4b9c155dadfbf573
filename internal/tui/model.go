// Package tui is the interactive terminal front end of a walkthrough. It
// renders a surface.Board and maps keys and button clicks onto the playback
// engine.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/joeycumines/walkthrough/internal/logging"
	"github.com/joeycumines/walkthrough/internal/playback"
	"github.com/joeycumines/walkthrough/internal/script"
	"github.com/joeycumines/walkthrough/internal/surface"
)

const logLines = 8

// Config wires a Model to its collaborators.
type Config struct {
	Engine *playback.Engine
	Board  *surface.Board
	Meta   script.Meta
	// Logs, if set, backs the log pane.
	Logs *logging.RingHandler
	// Changes wakes the model when the board (or the log ring) changed.
	Changes <-chan struct{}
	// Zones is the mouse zone manager; one is created when nil.
	Zones *zone.Manager
}

// Model is the bubbletea model of the walkthrough screen.
type Model struct {
	engine  *playback.Engine
	board   *surface.Board
	meta    script.Meta
	logs    *logging.RingHandler
	changes <-chan struct{}
	zones   *zone.Manager

	keys       keyMap
	help       help.Model
	styles     styles
	transcript viewport.Model

	width, height int
	showLogs      bool
	snap          surface.Snapshot

	// pre-rendered sections, rebuilt by refresh
	top, bottom string
}

// New returns a model for cfg.
func New(cfg Config) *Model {
	zones := cfg.Zones
	if zones == nil {
		zones = zone.New()
	}
	vp := viewport.New(80, 10)
	vp.MouseWheelEnabled = true
	m := &Model{
		engine:     cfg.Engine,
		board:      cfg.Board,
		meta:       cfg.Meta,
		logs:       cfg.Logs,
		changes:    cfg.Changes,
		zones:      zones,
		keys:       defaultKeyMap(),
		help:       help.New(),
		styles:     defaultStyles(),
		transcript: vp,
		width:      80,
		height:     24,
	}
	m.refresh()
	return m
}

// Init starts listening for board changes.
func (m *Model) Init() tea.Cmd {
	return waitForChange(m.changes)
}

// Update handles a message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.refresh()
		return m, nil

	case changedMsg:
		m.refresh()
		return m, waitForChange(m.changes)

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft {
			for _, id := range []string{zonePrev, zoneNext, zoneAuto, zoneReset} {
				if z := m.zones.Get(id); z != nil && !z.IsZero() && z.InBounds(msg) {
					m.handleButton(id)
					return m, nil
				}
			}
		}
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Next):
		m.engine.Advance()
	case key.Matches(msg, m.keys.Prev):
		m.engine.Retreat()
	case key.Matches(msg, m.keys.Autoplay):
		m.engine.ToggleAutoplay()
	case key.Matches(msg, m.keys.Reset):
		m.engine.ResetToStart()
	case key.Matches(msg, m.keys.First):
		m.engine.JumpTo(0)
	case key.Matches(msg, m.keys.Last):
		m.engine.JumpTo(m.engine.StepCount() - 1)
	case key.Matches(msg, m.keys.Logs):
		m.showLogs = !m.showLogs
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	default:
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		return cmd
	}
	m.refresh()
	return nil
}

// handleButton performs the action of a clicked control.
func (m *Model) handleButton(id string) {
	switch id {
	case zonePrev:
		m.engine.Retreat()
	case zoneNext:
		m.engine.Advance()
	case zoneAuto:
		m.engine.ToggleAutoplay()
	case zoneReset:
		m.engine.ResetToStart()
	default:
		return
	}
	m.refresh()
}

// refresh re-reads the board and rebuilds every section around the
// transcript, then sizes the transcript to the remaining height.
func (m *Model) refresh() {
	m.snap = m.board.Snapshot()
	s := m.styles
	w := m.width

	var top []string
	top = append(top, renderHeader(s, m.meta, m.snap))
	if d := renderDiagram(s, m.meta.Diagram, m.snap, w); d != "" {
		top = append(top, d)
	}
	side := nonEmpty(
		renderToolActivity(s, m.snap.ToolActivity, w/2),
		renderUserView(s, m.snap, w-w/2),
	)
	if len(side) > 0 {
		top = append(top, lipgloss.JoinHorizontal(lipgloss.Top, side...))
	}
	m.top = strings.Join(top, "\n")

	bottom := nonEmpty(
		renderOutput(s, m.snap.Output, w),
		renderInsight(s, m.snap.Status.Insight, w),
	)
	if m.showLogs && m.logs != nil {
		bottom = append(bottom, renderLogs(s, m.logs.Recent(logLines), w))
	}
	bottom = append(bottom,
		renderButtons(s, m.zones.Mark, m.snap),
		m.help.View(m.keys),
	)
	m.bottom = strings.Join(bottom, "\n")

	m.transcript.Width = max(w-1, 1)
	m.transcript.Height = max(m.height-lipgloss.Height(m.top)-lipgloss.Height(m.bottom)-1, 3)
	follow := m.transcript.AtBottom()
	m.transcript.SetContent(renderTranscript(s, m.snap.Entries, m.transcript.Width))
	if follow {
		m.transcript.GotoBottom()
	}
}

// View renders the screen.
func (m *Model) View() string {
	return m.zones.Scan(m.top + "\n" + m.transcriptView() + "\n" + m.bottom)
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
