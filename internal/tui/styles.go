package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/joeycumines/walkthrough/internal/highlight"
)

var (
	colorAccent = lipgloss.AdaptiveColor{Light: "#5A3FC0", Dark: "#A48BFF"}
	colorActive = lipgloss.AdaptiveColor{Light: "#0B7A4B", Dark: "#4ADE80"}
	colorTool   = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}
	colorDim    = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6B7280"}
	colorUser   = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	colorBorder = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#374151"}
)

type styles struct {
	title      lipgloss.Style
	counter    lipgloss.Style
	panel      lipgloss.Style
	panelTitle lipgloss.Style
	nodeOn     lipgloss.Style
	nodeOff    lipgloss.Style
	edgeOn     lipgloss.Style
	edgeOff    lipgloss.Style
	toolOn     lipgloss.Style
	toolOff    lipgloss.Style
	roles      map[string]lipgloss.Style
	recent     lipgloss.Style
	dim        lipgloss.Style
	button     lipgloss.Style
	buttonOff  lipgloss.Style
	insight    lipgloss.Style
	pending    lipgloss.Style
	activity   map[string]lipgloss.Style
	classes    map[highlight.Class]lipgloss.Style

	scrollThumb lipgloss.Style
	scrollTrack lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		counter:    lipgloss.NewStyle().Foreground(colorDim),
		panel:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorBorder).Padding(0, 1),
		panelTitle: lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		nodeOn:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorActive).Foreground(colorActive).Bold(true).Padding(0, 1),
		nodeOff:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorBorder).Foreground(colorDim).Padding(0, 1),
		edgeOn:     lipgloss.NewStyle().Foreground(colorActive).Bold(true),
		edgeOff:    lipgloss.NewStyle().Foreground(colorDim),
		toolOn:     lipgloss.NewStyle().Foreground(colorTool).Bold(true).Reverse(true).Padding(0, 1),
		toolOff:    lipgloss.NewStyle().Foreground(colorDim).Padding(0, 1),
		roles: map[string]lipgloss.Style{
			"System":    lipgloss.NewStyle().Foreground(colorDim).Bold(true),
			"User":      lipgloss.NewStyle().Foreground(colorUser).Bold(true),
			"Assistant": lipgloss.NewStyle().Foreground(colorAccent).Bold(true),
			"Tool":      lipgloss.NewStyle().Foreground(colorTool).Bold(true),
		},
		recent:    lipgloss.NewStyle().Foreground(colorActive),
		dim:       lipgloss.NewStyle().Foreground(colorDim),
		button:    lipgloss.NewStyle().Foreground(colorAccent).Bold(true),
		buttonOff: lipgloss.NewStyle().Foreground(colorDim).Faint(true),
		insight:   lipgloss.NewStyle().Italic(true),
		pending:   lipgloss.NewStyle().Foreground(colorDim).Italic(true),
		activity: map[string]lipgloss.Style{
			"ta-name":    lipgloss.NewStyle().Bold(true).Foreground(colorTool),
			"ta-input":   lipgloss.NewStyle(),
			"ta-desc":    lipgloss.NewStyle().Foreground(colorDim),
			"ta-running": lipgloss.NewStyle().Italic(true).Foreground(colorTool),
			"ta-output":  lipgloss.NewStyle().Foreground(colorActive),
			"ta-done":    lipgloss.NewStyle().Bold(true).Foreground(colorActive),
		},
		classes: map[highlight.Class]lipgloss.Style{
			highlight.Thinking:    lipgloss.NewStyle().Italic(true).Foreground(colorDim),
			highlight.ToolCall:    lipgloss.NewStyle().Foreground(colorTool),
			highlight.Thought:     lipgloss.NewStyle().Italic(true).Foreground(colorAccent),
			highlight.Action:      lipgloss.NewStyle().Bold(true).Foreground(colorTool),
			highlight.ActionInput: lipgloss.NewStyle().Foreground(colorTool),
			highlight.Observation: lipgloss.NewStyle().Foreground(colorUser),
			highlight.Final:       lipgloss.NewStyle().Bold(true).Foreground(colorActive),
			highlight.JSON:        lipgloss.NewStyle().Foreground(colorTool),
			highlight.Bold:        lipgloss.NewStyle().Bold(true),
			highlight.Code:        lipgloss.NewStyle().Foreground(colorAccent),
		},

		scrollThumb: lipgloss.NewStyle().Background(colorActive),
		scrollTrack: lipgloss.NewStyle().Foreground(colorDim),
	}
}

func (s styles) class(c highlight.Class) lipgloss.Style {
	if st, ok := s.classes[c]; ok {
		return st
	}
	return lipgloss.NewStyle()
}
