package playback

import (
	"errors"

	"github.com/joeycumines/walkthrough/internal/script"
)

// ErrMissingElement is returned (wrapped) by a surface that cannot find the
// element a command refers to. The engine logs it and carries on.
var ErrMissingElement = errors.New("surface element missing")

// EntryID identifies a transcript entry within one Transcript.
type EntryID int

// Diagram shows edges, node groups, the active tool and tool activity. All
// commands are absolute and idempotent.
type Diagram interface {
	Reset()
	ActivateEdges(ids []string) error
	GlowNodes(ids []string) error
	MarkToolActive(id string) error
	// SetToolActivity replaces the activity lines; nil clears them.
	SetToolActivity(lines []script.ToolLine)
}

// Transcript is the append-only conversation log.
type Transcript interface {
	Clear()
	// DimAll drops the recent marker from every entry.
	DimAll()
	Append(role script.Role, text string, recent bool) EntryID
	// Update replaces the text of an entry. Unknown ids are ignored.
	Update(id EntryID, text string)
}

// Output is the model output panel.
type Output interface {
	Clear()
	Render(text string)
}

// UserView is what the end user of the demo agent would see.
type UserView interface {
	Clear()
	ShowUserMessage(text string)
	ShowAssistantMessage(text string)
}

// StatusSink receives the engine status after every change.
type StatusSink interface {
	Update(Status)
}

// Status is a read-only view of the playback state.
type Status struct {
	Cursor      int    `json:"cursor"`
	Total       int    `json:"total"`
	Autoplaying bool   `json:"autoplaying"`
	Streaming   bool   `json:"streaming"`
	Insight     string `json:"insight,omitempty"`
}

// CanRetreat reports whether a retreat would move the cursor.
func (s Status) CanRetreat() bool { return s.Cursor > -1 }

// CanAdvance reports whether an advance would move the cursor.
func (s Status) CanAdvance() bool { return s.Cursor < s.Total-1 }

// Surfaces groups the display collaborators. Nil members are treated as
// absent surfaces.
type Surfaces struct {
	Diagram    Diagram
	Transcript Transcript
	Output     Output
	UserView   UserView
	Status     StatusSink
}

func (s Surfaces) withDefaults() Surfaces {
	if s.Diagram == nil {
		s.Diagram = nopDiagram{}
	}
	if s.Transcript == nil {
		s.Transcript = nopTranscript{}
	}
	if s.Output == nil {
		s.Output = nopOutput{}
	}
	if s.UserView == nil {
		s.UserView = nopUserView{}
	}
	if s.Status == nil {
		s.Status = nopStatus{}
	}
	return s
}

type nopDiagram struct{}

func (nopDiagram) Reset() {}
func (nopDiagram) ActivateEdges([]string) error { return nil }
func (nopDiagram) GlowNodes([]string) error { return nil }
func (nopDiagram) MarkToolActive(string) error { return nil }
func (nopDiagram) SetToolActivity([]script.ToolLine) {}

type nopTranscript struct{}

func (nopTranscript) Clear() {}
func (nopTranscript) DimAll() {}
func (nopTranscript) Append(script.Role, string, bool) EntryID { return 0 }
func (nopTranscript) Update(EntryID, string) {}

type nopOutput struct{}

func (nopOutput) Clear() {}
func (nopOutput) Render(string) {}

type nopUserView struct{}

func (nopUserView) Clear() {}
func (nopUserView) ShowUserMessage(string) {}
func (nopUserView) ShowAssistantMessage(string) {}

type nopStatus struct{}

func (nopStatus) Update(Status) {}
