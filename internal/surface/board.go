// Package surface provides an in-memory implementation of every playback
// display surface. A Board holds the displayed state; renderers (the TUI,
// the plain text printer, the MCP state tool) read it through Snapshot.
package surface

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/joeycumines/walkthrough/internal/playback"
	"github.com/joeycumines/walkthrough/internal/script"
)

// Entry is a displayed transcript entry.
type Entry struct {
	ID     playback.EntryID `json:"id"`
	Role   script.Role      `json:"role"`
	Text   string           `json:"text"`
	Recent bool             `json:"recent,omitempty"`
}

// Bubble is one message in the user-facing view.
type Bubble struct {
	Role script.Role `json:"role"`
	Text string      `json:"text"`
}

// Snapshot is a deep copy of the displayed state.
type Snapshot struct {
	Edges        []string          `json:"edges"`
	Nodes        []string          `json:"nodes"`
	Tool         string            `json:"tool,omitempty"`
	ToolActivity []script.ToolLine `json:"toolActivity,omitempty"`
	Entries      []Entry           `json:"entries"`
	Output       string            `json:"output,omitempty"`
	Bubbles      []Bubble          `json:"bubbles,omitempty"`
	// Pending is the "agent is working" indicator of the user-facing view.
	Pending bool            `json:"pending,omitempty"`
	Status  playback.Status `json:"status"`
}

func (s Snapshot) clone() Snapshot {
	s.Edges = slices.Clone(s.Edges)
	s.Nodes = slices.Clone(s.Nodes)
	s.ToolActivity = slices.Clone(s.ToolActivity)
	s.Entries = slices.Clone(s.Entries)
	s.Bubbles = slices.Clone(s.Bubbles)
	return s
}

// Option configures a Board.
type Option func(*Board)

// WithNotify registers a hook called, without the board lock held, after
// every mutation. It must not block.
func WithNotify(f func()) Option {
	return func(b *Board) {
		b.notify = f
	}
}

// Board is the in-memory display. It validates diagram ids against a
// layout; with an empty layout every id is accepted.
type Board struct {
	mu     sync.Mutex
	state  Snapshot
	nextID playback.EntryID
	notify func()

	nodes, edges, tools map[string]bool
}

// New returns an empty board for layout.
func New(layout script.Diagram, opts ...Option) *Board {
	b := &Board{}
	if !layout.IsZero() {
		b.nodes = make(map[string]bool, len(layout.Nodes))
		for _, n := range layout.Nodes {
			b.nodes[n.ID] = true
		}
		b.edges = make(map[string]bool, len(layout.Edges))
		for _, e := range layout.Edges {
			b.edges[e.ID] = true
		}
		b.tools = make(map[string]bool, len(layout.Tools))
		for _, t := range layout.Tools {
			b.tools[t.ID] = true
		}
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Snapshot returns a copy of the displayed state.
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.clone()
}

// Surfaces exposes the board as the full set of playback surfaces.
func (b *Board) Surfaces() playback.Surfaces {
	return playback.Surfaces{
		Diagram:    diagram{b},
		Transcript: transcript{b},
		Output:     output{b},
		UserView:   userView{b},
		Status:     status{b},
	}
}

// mutate applies f under the lock and then notifies.
func (b *Board) mutate(f func(s *Snapshot)) {
	b.mu.Lock()
	f(&b.state)
	b.mu.Unlock()
	if b.notify != nil {
		b.notify()
	}
}

func known(set map[string]bool, id string) bool {
	return set == nil || set[id]
}

type diagram struct{ b *Board }

func (d diagram) Reset() {
	d.b.mutate(func(s *Snapshot) {
		s.Edges = nil
		s.Nodes = nil
		s.Tool = ""
		s.ToolActivity = nil
	})
}

func (d diagram) ActivateEdges(ids []string) error {
	return d.b.addIDs(ids, d.b.edges, "edge", func(s *Snapshot) *[]string { return &s.Edges })
}

func (d diagram) GlowNodes(ids []string) error {
	return d.b.addIDs(ids, d.b.nodes, "node", func(s *Snapshot) *[]string { return &s.Nodes })
}

func (d diagram) MarkToolActive(id string) error {
	if !known(d.b.tools, id) {
		return fmt.Errorf("%w: tool %q", playback.ErrMissingElement, id)
	}
	d.b.mutate(func(s *Snapshot) { s.Tool = id })
	return nil
}

func (d diagram) SetToolActivity(lines []script.ToolLine) {
	d.b.mutate(func(s *Snapshot) { s.ToolActivity = slices.Clone(lines) })
}

func (b *Board) addIDs(ids []string, set map[string]bool, kind string, field func(*Snapshot) *[]string) error {
	var errs []error
	b.mutate(func(s *Snapshot) {
		list := field(s)
		for _, id := range ids {
			if !known(set, id) {
				errs = append(errs, fmt.Errorf("%w: %s %q", playback.ErrMissingElement, kind, id))
				continue
			}
			if !slices.Contains(*list, id) {
				*list = append(*list, id)
			}
		}
	})
	return errors.Join(errs...)
}

type transcript struct{ b *Board }

// Clear restarts entry ids too, so a replay numbers its entries the same
// way every time.
func (t transcript) Clear() {
	t.b.mutate(func(s *Snapshot) {
		s.Entries = nil
		t.b.nextID = 0
	})
}

func (t transcript) DimAll() {
	t.b.mutate(func(s *Snapshot) {
		for i := range s.Entries {
			s.Entries[i].Recent = false
		}
	})
}

func (t transcript) Append(role script.Role, text string, recent bool) playback.EntryID {
	var id playback.EntryID
	t.b.mutate(func(s *Snapshot) {
		t.b.nextID++
		id = t.b.nextID
		s.Entries = append(s.Entries, Entry{ID: id, Role: role, Text: text, Recent: recent})
	})
	return id
}

func (t transcript) Update(id playback.EntryID, text string) {
	t.b.mutate(func(s *Snapshot) {
		for i := range s.Entries {
			if s.Entries[i].ID == id {
				s.Entries[i].Text = text
				return
			}
		}
	})
}

type output struct{ b *Board }

func (o output) Clear() {
	o.b.mutate(func(s *Snapshot) { s.Output = "" })
}

func (o output) Render(text string) {
	o.b.mutate(func(s *Snapshot) { s.Output = text })
}

type userView struct{ b *Board }

func (u userView) Clear() {
	u.b.mutate(func(s *Snapshot) {
		s.Bubbles = nil
		s.Pending = false
	})
}

func (u userView) ShowUserMessage(text string) {
	u.b.mutate(func(s *Snapshot) {
		s.Bubbles = append(s.Bubbles, Bubble{Role: script.RoleUser, Text: text})
		s.Pending = true
	})
}

func (u userView) ShowAssistantMessage(text string) {
	u.b.mutate(func(s *Snapshot) {
		s.Bubbles = append(s.Bubbles, Bubble{Role: script.RoleAssistant, Text: text})
		s.Pending = false
	})
}

type status struct{ b *Board }

func (st status) Update(v playback.Status) {
	st.b.mutate(func(s *Snapshot) { s.Status = v })
}
