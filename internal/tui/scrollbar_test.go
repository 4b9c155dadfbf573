package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestThumbSpan(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		name                    string
		height, content, offset int
		top, size               int
	}{
		{"fits", 10, 5, 0, 0, 10},
		{"exact", 10, 10, 0, 0, 10},
		{"top", 10, 20, 0, 0, 5},
		{"middle", 10, 20, 5, 2, 5},
		{"bottom", 10, 20, 10, 5, 5},
		{"offset clamped", 10, 20, 99, 5, 5},
		{"negative offset", 10, 20, -3, 0, 5},
		{"tiny thumb", 4, 1000, 996, 3, 1},
		{"no track", 0, 100, 0, 0, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			top, size := thumbSpan(tc.height, tc.content, tc.offset)
			assert.Equal(t, tc.top, top, "top")
			assert.Equal(t, tc.size, size, "size")
		})
	}
}

func TestRenderScrollbar(t *testing.T) {
	t.Parallel()
	s := defaultStyles()
	s.scrollThumb = lipgloss.NewStyle()
	s.scrollTrack = lipgloss.NewStyle()

	bar := renderScrollbar(s, 4, 8, 4)
	assert.Equal(t, "│\n│\n\u00a0\n\u00a0", bar)
	assert.Equal(t, 4, lipgloss.Height(bar))
	assert.Equal(t, 1, lipgloss.Width(bar))

	assert.Equal(t, 3, strings.Count(renderScrollbar(s, 3, 1, 0), "\u00a0"))
	assert.Empty(t, renderScrollbar(s, 0, 1, 0))
}
