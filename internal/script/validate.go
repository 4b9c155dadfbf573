package script

import (
	"errors"
	"fmt"
)

var (
	// ErrTooManyToolLines is returned for a step with more than
	// MaxToolActivityLines tool activity lines.
	ErrTooManyToolLines = errors.New("too many tool activity lines")
	// ErrMultipleStreams is returned for a step that would start more than
	// one stream.
	ErrMultipleStreams = errors.New("more than one streamed block")
)

func validateStep(step Step) error {
	if len(step.ToolActivity) > MaxToolActivityLines {
		return fmt.Errorf("%w: %d > %d", ErrTooManyToolLines, len(step.ToolActivity), MaxToolActivityLines)
	}
	streams := 0
	if step.Output != "" {
		streams++
	}
	for i, e := range step.Transcript {
		if _, err := ParseRole(string(e.Role)); err != nil {
			return fmt.Errorf("transcript entry %d: %w", i, err)
		}
		if e.Streamed {
			streams++
		}
	}
	if streams > 1 {
		return fmt.Errorf("%w: %d", ErrMultipleStreams, streams)
	}
	return nil
}

// checkReferences reports ids not declared by the diagram. These are
// tolerated at runtime.
func checkReferences(d Diagram, steps []Step) []string {
	if d.IsZero() {
		return nil
	}
	nodes := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		nodes[n.ID] = true
	}
	edges := make(map[string]bool, len(d.Edges))
	for _, e := range d.Edges {
		edges[e.ID] = true
	}
	tools := make(map[string]bool, len(d.Tools))
	for _, t := range d.Tools {
		tools[t.ID] = true
	}

	var warnings []string
	for i, step := range steps {
		for _, id := range step.Arrows {
			if !edges[id] {
				warnings = append(warnings, fmt.Sprintf("step %d: unknown arrow %q", i, id))
			}
		}
		for _, id := range step.HighlightNodes {
			if !nodes[id] {
				warnings = append(warnings, fmt.Sprintf("step %d: unknown node %q", i, id))
			}
		}
		if step.HighlightTool != "" && !tools[step.HighlightTool] {
			warnings = append(warnings, fmt.Sprintf("step %d: unknown tool %q", i, step.HighlightTool))
		}
	}
	return warnings
}
