package tui

import (
	"fmt"
	"log/slog"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/walkthrough/internal/logging"
	"github.com/joeycumines/walkthrough/internal/playback"
	"github.com/joeycumines/walkthrough/internal/script"
	"github.com/joeycumines/walkthrough/internal/surface"
	"github.com/joeycumines/walkthrough/internal/testutil"
)

type fixture struct {
	model  *Model
	engine *playback.Engine
	sched  *testutil.ManualScheduler
	notify *surface.Notifier
	logs   *logging.RingHandler
}

func newFixture(t *testing.T, n int) *fixture {
	t.Helper()
	meta := script.Meta{
		Name:  "demo",
		Title: "Demo walkthrough",
		Diagram: script.Diagram{
			Nodes: []script.Node{{ID: "user", Label: "User"}, {ID: "orch", Label: "Orchestrator"}},
			Edges: []script.Edge{{ID: "user-orch", From: "user", To: "orch"}},
			Tools: []script.Tool{{ID: "calc", Label: "Calculator"}},
		},
	}
	steps := make([]script.Step, n)
	for i := range steps {
		steps[i] = script.Step{
			Arrows:         []string{"user-orch"},
			HighlightNodes: []string{"orch"},
			Transcript:     []script.Entry{{Role: script.RoleSystem, Text: fmt.Sprintf("entry number %d", i)}},
			Insight:        fmt.Sprintf("insight **%d**", i),
		}
	}
	s, err := script.New(meta, steps)
	require.NoError(t, err)

	f := &fixture{
		sched:  testutil.NewManualScheduler(),
		notify: surface.NewNotifier(),
		logs:   logging.NewRingHandler(50, slog.LevelDebug),
	}
	board := surface.New(meta.Diagram, surface.WithNotify(f.notify.Notify))
	f.engine = playback.New(s, board.Surfaces(),
		playback.WithScheduler(f.sched),
		playback.WithLogger(slog.New(f.logs)),
	)
	t.Cleanup(f.engine.Close)

	zones := zone.New()
	t.Cleanup(zones.Close)
	f.model = New(Config{
		Engine:  f.engine,
		Board:   board,
		Meta:    meta,
		Logs:    f.logs,
		Changes: f.notify.C(),
		Zones:   zones,
	})
	f.model.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return f
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func (f *fixture) press(msgs ...tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = f.model.Update(msg)
	}
	return cmd
}

func TestKeysDriveEngine(t *testing.T) {
	f := newFixture(t, 4)

	f.press(runes("n"))
	assert.Equal(t, 0, f.engine.CurrentIndex())
	f.press(tea.KeyMsg{Type: tea.KeyRight}, runes("l"))
	assert.Equal(t, 2, f.engine.CurrentIndex())
	f.press(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 1, f.engine.CurrentIndex())
	f.press(runes("G"))
	assert.Equal(t, 3, f.engine.CurrentIndex())
	f.press(runes("g"))
	assert.Equal(t, 0, f.engine.CurrentIndex())
	f.press(runes("r"))
	assert.Equal(t, -1, f.engine.CurrentIndex())
}

func TestAutoplayKey(t *testing.T) {
	f := newFixture(t, 3)

	f.press(tea.KeyMsg{Type: tea.KeySpace})
	require.True(t, f.engine.IsAutoplaying())
	assert.Contains(t, f.model.View(), "Pause")

	f.press(tea.KeyMsg{Type: tea.KeySpace})
	assert.False(t, f.engine.IsAutoplaying())
	assert.Contains(t, f.model.View(), "Auto-play")
}

func TestQuit(t *testing.T) {
	f := newFixture(t, 1)
	cmd := f.press(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestHandleButton(t *testing.T) {
	f := newFixture(t, 3)

	f.model.handleButton(zoneNext)
	f.model.handleButton(zoneNext)
	assert.Equal(t, 1, f.engine.CurrentIndex())
	f.model.handleButton(zonePrev)
	assert.Equal(t, 0, f.engine.CurrentIndex())
	f.model.handleButton(zoneAuto)
	assert.True(t, f.engine.IsAutoplaying())
	f.model.handleButton(zoneReset)
	assert.Equal(t, -1, f.engine.CurrentIndex())
	assert.False(t, f.engine.IsAutoplaying())
	f.model.handleButton("btn-unknown")
	assert.Equal(t, -1, f.engine.CurrentIndex())
}

func TestViewReflectsBoard(t *testing.T) {
	f := newFixture(t, 3)

	view := f.model.View()
	assert.Contains(t, view, "Demo walkthrough")
	assert.Contains(t, view, "step 0/3")
	assert.NotContains(t, view, "entry number")

	f.press(runes("n"), runes("n"))
	view = f.model.View()
	assert.Contains(t, view, "step 2/3")
	assert.Contains(t, view, "entry number 0")
	assert.Contains(t, view, "entry number 1")
	assert.Contains(t, view, "User -> Orchestrator")
	assert.Contains(t, view, "Calculator")
	assert.Contains(t, view, "insight 1")
	assert.NotContains(t, view, "**")
}

func TestChangesFromTimersRefresh(t *testing.T) {
	f := newFixture(t, 3)

	f.press(tea.KeyMsg{Type: tea.KeySpace})
	f.sched.Advance(playback.DefaultAutoplayDelay)
	require.Equal(t, 1, f.engine.CurrentIndex())
	assert.NotContains(t, f.model.View(), "step 2/3")

	_, cmd := f.model.Update(changedMsg{})
	assert.Contains(t, f.model.View(), "step 2/3")
	require.NotNil(t, cmd)
	assert.Equal(t, changedMsg{}, cmd())
}

func TestLogPane(t *testing.T) {
	f := newFixture(t, 2)
	slog.New(f.logs).Info("pane check", "k", "v")

	assert.NotContains(t, f.model.View(), "pane check")
	f.press(runes("L"))
	assert.Contains(t, f.model.View(), "pane check k=v")
	f.press(runes("L"))
	assert.NotContains(t, f.model.View(), "pane check")
}

func TestButtonsState(t *testing.T) {
	t.Parallel()
	byID := func(snap surface.Snapshot) map[string]bool {
		out := make(map[string]bool)
		for _, b := range buttons(snap) {
			out[b.id] = b.enabled
		}
		return out
	}

	start := byID(surface.Snapshot{Status: playback.Status{Cursor: -1, Total: 2}})
	assert.Equal(t, map[string]bool{zonePrev: false, zoneNext: true, zoneAuto: true, zoneReset: false}, start)

	end := byID(surface.Snapshot{Status: playback.Status{Cursor: 1, Total: 2}})
	assert.Equal(t, map[string]bool{zonePrev: true, zoneNext: false, zoneAuto: false, zoneReset: true}, end)
}

func TestWindowSizeKeepsTranscriptVisible(t *testing.T) {
	f := newFixture(t, 2)
	f.model.Update(tea.WindowSizeMsg{Width: 40, Height: 5})
	assert.GreaterOrEqual(t, f.model.transcript.Height, 3)
	assert.Equal(t, 39, f.model.transcript.Width, "one column is kept for the scrollbar")
}
