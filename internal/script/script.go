// Package script holds the immutable scripted sequence of steps that drives a
// walkthrough, along with the diagram layout the steps refer to.
//
// A Script is loaded once (usually from YAML, see Decode) and never changes
// afterwards. Steps are handed out by value, with their slices copied, so no
// caller can mutate the store.
package script

import (
	"errors"
	"fmt"
	"slices"
)

// MaxToolActivityLines is the maximum number of tool activity lines a step
// may carry.
const MaxToolActivityLines = 4

// ErrOutOfRange is returned by Script.At for an index outside [0, Len()-1].
var ErrOutOfRange = errors.New("step index out of range")

// ToolLine is one line of the tool activity panel.
type ToolLine struct {
	Text  string `yaml:"text" json:"text"`
	Class string `yaml:"class" json:"class,omitempty"`
}

// Entry is a transcript record appended by a step.
type Entry struct {
	Role Role
	Text string
	// Streamed marks the entry for incremental reveal when its step is live.
	Streamed bool
}

// Step is one immutable element of a Script.
type Step struct {
	Arrows         []string
	HighlightNodes []string
	HighlightTool  string
	ToolActivity   []ToolLine
	Transcript     []Entry
	// Output is the text shown in the model output panel. It is always
	// streamed when its step is live.
	Output  string
	Insight string
	// Deliver hands the most recent assistant text to the user-facing view.
	Deliver bool
}

// StreamedText returns the text this step reveals incrementally when live,
// if any.
func (s Step) StreamedText() (string, bool) {
	if s.Output != "" {
		return s.Output, true
	}
	for _, e := range s.Transcript {
		if e.Streamed {
			return e.Text, true
		}
	}
	return "", false
}

func (s Step) clone() Step {
	s.Arrows = slices.Clone(s.Arrows)
	s.HighlightNodes = slices.Clone(s.HighlightNodes)
	s.ToolActivity = slices.Clone(s.ToolActivity)
	s.Transcript = slices.Clone(s.Transcript)
	return s
}

// Node is a diagram node group.
type Node struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
}

// Edge is a directed diagram edge (an arrow).
type Edge struct {
	ID    string `yaml:"id" json:"id"`
	From  string `yaml:"from" json:"from"`
	To    string `yaml:"to" json:"to"`
	Label string `yaml:"label" json:"label,omitempty"`
}

// Tool is a tool slot in the diagram.
type Tool struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
	Icon  string `yaml:"icon" json:"icon,omitempty"`
}

// Diagram describes the elements steps may reference. An empty Diagram
// means ids are not checked.
type Diagram struct {
	Nodes []Node `yaml:"nodes" json:"nodes"`
	Edges []Edge `yaml:"edges" json:"edges"`
	Tools []Tool `yaml:"tools" json:"tools"`
}

// IsZero reports whether no layout was declared.
func (d Diagram) IsZero() bool {
	return len(d.Nodes) == 0 && len(d.Edges) == 0 && len(d.Tools) == 0
}

// Meta is descriptive script metadata.
type Meta struct {
	Name        string
	Title       string
	Description string
	// UserQuery is the end user's original message.
	UserQuery string
	Diagram   Diagram
}

// Script is the immutable, ordered scenario.
type Script struct {
	meta     Meta
	steps    []Step
	warnings []string
}

// New validates steps and builds a Script. The inputs are copied.
func New(meta Meta, steps []Step) (*Script, error) {
	s := &Script{
		meta:  cloneMeta(meta),
		steps: make([]Step, len(steps)),
	}
	for i, step := range steps {
		if err := validateStep(step); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		s.steps[i] = step.clone()
	}
	s.warnings = checkReferences(s.meta.Diagram, s.steps)
	return s, nil
}

// Len returns the number of steps.
func (s *Script) Len() int {
	return len(s.steps)
}

// At returns the step at index i.
func (s *Script) At(i int) (Step, error) {
	if i < 0 || i >= len(s.steps) {
		return Step{}, fmt.Errorf("%w: %d not in [0, %d]", ErrOutOfRange, i, len(s.steps)-1)
	}
	return s.steps[i].clone(), nil
}

// Meta returns a copy of the script metadata.
func (s *Script) Meta() Meta {
	return cloneMeta(s.meta)
}

// Warnings lists non-fatal problems found at load, such as steps that
// reference diagram ids the layout does not declare.
func (s *Script) Warnings() []string {
	return slices.Clone(s.warnings)
}

func cloneMeta(m Meta) Meta {
	m.Diagram.Nodes = slices.Clone(m.Diagram.Nodes)
	m.Diagram.Edges = slices.Clone(m.Diagram.Edges)
	m.Diagram.Tools = slices.Clone(m.Diagram.Tools)
	return m
}
