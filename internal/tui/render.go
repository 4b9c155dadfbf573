package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/joeycumines/walkthrough/internal/highlight"
	"github.com/joeycumines/walkthrough/internal/logging"
	"github.com/joeycumines/walkthrough/internal/script"
	"github.com/joeycumines/walkthrough/internal/surface"
)

// Zone ids of the clickable controls.
const (
	zonePrev  = "btn-prev"
	zoneNext  = "btn-next"
	zoneAuto  = "btn-auto"
	zoneReset = "btn-reset"
)

func (s styles) lines(lines []highlight.Line) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		var b strings.Builder
		for _, span := range line {
			if span.Class == highlight.Plain {
				b.WriteString(span.Text)
				continue
			}
			b.WriteString(s.class(span.Class).Render(span.Text))
		}
		out[i] = b.String()
	}
	return strings.Join(out, "\n")
}

func (s styles) section(title, body string, width int) string {
	inner := width - s.panel.GetHorizontalFrameSize()
	if inner < 10 {
		inner = 10
	}
	content := s.panelTitle.Render(title)
	if body != "" {
		content += "\n" + lipgloss.NewStyle().Width(inner).Render(body)
	}
	return s.panel.Width(inner + s.panel.GetHorizontalPadding()).Render(content)
}

func renderHeader(s styles, meta script.Meta, snap surface.Snapshot) string {
	title := meta.Title
	if title == "" {
		title = meta.Name
	}
	counter := fmt.Sprintf("step %d/%d", snap.Status.Cursor+1, snap.Status.Total)
	if snap.Status.Autoplaying {
		counter += " | autoplay"
	}
	if snap.Status.Streaming {
		counter += " | streaming"
	}
	return s.title.Render(title) + "  " + s.counter.Render(counter)
}

func renderDiagram(s styles, d script.Diagram, snap surface.Snapshot, width int) string {
	if d.IsZero() {
		return ""
	}

	var nodes []string
	for i, n := range d.Nodes {
		if i > 0 {
			nodes = append(nodes, s.edgeOff.Render(" ─ "))
		}
		label := n.Label
		if label == "" {
			label = n.ID
		}
		if slices.Contains(snap.Nodes, n.ID) {
			nodes = append(nodes, s.nodeOn.Render(label))
		} else {
			nodes = append(nodes, s.nodeOff.Render(label))
		}
	}
	rows := []string{lipgloss.JoinHorizontal(lipgloss.Center, nodes...)}

	var edges []string
	for _, e := range d.Edges {
		label := surface.EdgeLabel(d, e.ID)
		if slices.Contains(snap.Edges, e.ID) {
			edges = append(edges, s.edgeOn.Render("● "+label))
		} else {
			edges = append(edges, s.edgeOff.Render("○ "+label))
		}
	}
	if len(edges) > 0 {
		rows = append(rows, strings.Join(edges, "\n"))
	}

	var tools []string
	for _, t := range d.Tools {
		label := strings.TrimSpace(t.Icon + " " + t.Label)
		if t.ID == snap.Tool {
			tools = append(tools, s.toolOn.Render(label))
		} else {
			tools = append(tools, s.toolOff.Render(label))
		}
	}
	if len(tools) > 0 {
		rows = append(rows, "Tools: "+strings.Join(tools, " "))
	}

	return s.section("Architecture", strings.Join(rows, "\n"), width)
}

func renderToolActivity(s styles, lines []script.ToolLine, width int) string {
	if len(lines) == 0 {
		return ""
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		st, ok := s.activity[l.Class]
		if !ok {
			st = lipgloss.NewStyle()
		}
		out[i] = st.Render(l.Text)
	}
	return s.section("Tool activity", strings.Join(out, "\n"), width)
}

func renderUserView(s styles, snap surface.Snapshot, width int) string {
	if len(snap.Bubbles) == 0 && !snap.Pending {
		return ""
	}
	var out []string
	for _, b := range snap.Bubbles {
		who := "Agent"
		if b.Role == script.RoleUser {
			who = "You"
		}
		out = append(out, s.roles[b.Role.String()].Render(who+":")+" "+b.Text)
	}
	if snap.Pending {
		out = append(out, s.pending.Render("Agent is working..."))
	}
	return s.section("What the user sees", strings.Join(out, "\n"), width)
}

func renderTranscript(s styles, entries []surface.Entry, width int) string {
	if len(entries) == 0 {
		return s.dim.Render("Press → or n to start.")
	}
	body := lipgloss.NewStyle().Width(max(width-2, 10))
	var out []string
	for _, e := range entries {
		role, ok := s.roles[string(e.Role.Kind())]
		if !ok {
			role = s.roles["Tool"]
		}
		marker := "  "
		if e.Recent {
			marker = s.recent.Render("▌ ")
		}
		text := s.lines(highlight.ForRole(e.Role)(e.Text))
		if !e.Recent {
			text = s.dim.Render(highlight.String(highlight.ForRole(e.Role)(e.Text)))
		}
		block := role.Render(e.Role.String()) + "\n" + body.Render(text)
		for i, line := range strings.Split(block, "\n") {
			if i == 0 {
				out = append(out, marker+line)
			} else {
				out = append(out, strings.Repeat(" ", lipgloss.Width(marker))+line)
			}
		}
	}
	return strings.Join(out, "\n")
}

func renderOutput(s styles, text string, width int) string {
	if text == "" {
		return ""
	}
	return s.section("Model output", s.lines(highlight.ReAct(text)), width)
}

func renderInsight(s styles, text string, width int) string {
	if text == "" {
		return ""
	}
	return s.section("Insight", s.insight.Render(s.lines(highlight.Insight(text))), width)
}

func renderLogs(s styles, records []logging.Record, width int) string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.String()
	}
	if len(out) == 0 {
		out = []string{s.dim.Render("(no log records)")}
	}
	return s.section("Logs", strings.Join(out, "\n"), width)
}

type button struct {
	id      string
	label   string
	enabled bool
}

func buttons(snap surface.Snapshot) []button {
	st := snap.Status
	auto := "▶ Auto-play"
	if st.Autoplaying {
		auto = "⏸ Pause"
	}
	return []button{
		{id: zonePrev, label: "◀ Prev", enabled: st.CanRetreat()},
		{id: zoneAuto, label: auto, enabled: st.Autoplaying || st.CanAdvance()},
		{id: zoneNext, label: "Next ▶", enabled: st.CanAdvance()},
		{id: zoneReset, label: "↺ Reset", enabled: st.Cursor > -1},
	}
}

func renderButtons(s styles, mark func(id, v string) string, snap surface.Snapshot) string {
	var out []string
	for _, b := range buttons(snap) {
		label := "[ " + b.label + " ]"
		if b.enabled {
			label = s.button.Render(label)
		} else {
			label = s.buttonOff.Render(label)
		}
		out = append(out, mark(b.id, label))
	}
	return strings.Join(out, " ")
}
