package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// thumbSpan places the scrollbar thumb on a track of height rows: its size
// is the visible share of content lines, its top follows offset. Content
// that fits yields a full-height thumb.
func thumbSpan(height, content, offset int) (top, size int) {
	if height <= 0 {
		return 0, 0
	}
	if content <= height {
		return 0, height
	}
	maxOffset := content - height
	offset = min(max(offset, 0), maxOffset)

	size = min(max(height*height/content, 1), height)
	maxTop := height - size
	if maxTop > 0 {
		top = offset * maxTop / maxOffset
	}
	return min(top, maxTop), size
}

// renderScrollbar renders a one-column bar exactly height rows tall.
func renderScrollbar(s styles, height, content, offset int) string {
	top, size := thumbSpan(height, content, offset)
	rows := make([]string, height)
	for i := range rows {
		if i >= top && i < top+size {
			// A no-break space keeps the background from being dropped.
			rows[i] = s.scrollThumb.Render("\u00a0")
		} else {
			rows[i] = s.scrollTrack.Render("│")
		}
	}
	return strings.Join(rows, "\n")
}

func (m *Model) transcriptView() string {
	vp := m.transcript
	bar := renderScrollbar(m.styles, vp.Height, vp.TotalLineCount(), vp.YOffset)
	return lipgloss.JoinHorizontal(lipgloss.Top, vp.View(), bar)
}
