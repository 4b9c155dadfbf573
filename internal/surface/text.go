package surface

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/joeycumines/walkthrough/internal/script"
)

// WriteText prints a snapshot as plain text, one section per surface. Empty
// sections are skipped.
func WriteText(w io.Writer, meta script.Meta, snap Snapshot) error {
	bw := bufio.NewWriter(w)

	title := meta.Title
	if title == "" {
		title = meta.Name
	}
	fmt.Fprintf(bw, "%s: step %d/%d\n", title, snap.Status.Cursor+1, snap.Status.Total)

	if len(snap.Edges) > 0 || len(snap.Nodes) > 0 || snap.Tool != "" {
		fmt.Fprintln(bw, "\n== Diagram")
		for _, id := range snap.Edges {
			fmt.Fprintf(bw, "  %s\n", EdgeLabel(meta.Diagram, id))
		}
		if len(snap.Nodes) > 0 {
			fmt.Fprintf(bw, "  active: %s\n", strings.Join(nodeLabels(meta.Diagram, snap.Nodes), ", "))
		}
		if snap.Tool != "" {
			fmt.Fprintf(bw, "  tool: %s\n", snap.Tool)
		}
	}

	if len(snap.ToolActivity) > 0 {
		fmt.Fprintln(bw, "\n== Tool activity")
		for _, line := range snap.ToolActivity {
			fmt.Fprintf(bw, "  %s\n", line.Text)
		}
	}

	if len(snap.Entries) > 0 {
		fmt.Fprintln(bw, "\n== Transcript")
		for _, e := range snap.Entries {
			marker := " "
			if e.Recent {
				marker = "*"
			}
			fmt.Fprintf(bw, "%s[%s] %s\n", marker, e.Role, indent(e.Text))
		}
	}

	if snap.Output != "" {
		fmt.Fprintln(bw, "\n== Output")
		fmt.Fprintf(bw, "  %s\n", indent(snap.Output))
	}

	if len(snap.Bubbles) > 0 || snap.Pending {
		fmt.Fprintln(bw, "\n== User view")
		for _, bubble := range snap.Bubbles {
			fmt.Fprintf(bw, "  %s: %s\n", bubble.Role, indent(bubble.Text))
		}
		if snap.Pending {
			fmt.Fprintln(bw, "  ...")
		}
	}

	if snap.Status.Insight != "" {
		fmt.Fprintln(bw, "\n== Insight")
		fmt.Fprintf(bw, "  %s\n", indent(snap.Status.Insight))
	}

	return bw.Flush()
}

// EdgeLabel describes an edge as "From -> To", falling back to its id.
func EdgeLabel(d script.Diagram, id string) string {
	for _, e := range d.Edges {
		if e.ID != id {
			continue
		}
		label := fmt.Sprintf("%s -> %s", NodeLabel(d, e.From), NodeLabel(d, e.To))
		if e.Label != "" {
			label += " (" + e.Label + ")"
		}
		return label
	}
	return id
}

func nodeLabels(d script.Diagram, ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = NodeLabel(d, id)
	}
	return out
}

// NodeLabel returns the label of a node, falling back to its id.
func NodeLabel(d script.Diagram, id string) string {
	for _, n := range d.Nodes {
		if n.ID == id && n.Label != "" {
			return n.Label
		}
	}
	return id
}

func indent(s string) string {
	return strings.ReplaceAll(s, "\n", "\n    ")
}
