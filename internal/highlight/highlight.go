// Package highlight turns walkthrough text into classified spans. Every
// transform is a pure function of its input, so a streamed prefix and the
// final text are classified the same way.
package highlight

import (
	"strings"

	"github.com/joeycumines/walkthrough/internal/script"
)

// Class names the visual treatment of a span.
type Class string

const (
	Plain       Class = ""
	Thinking    Class = "thinking"
	ToolCall    Class = "tool-call"
	Thought     Class = "thought"
	Action      Class = "action"
	ActionInput Class = "action-input"
	Observation Class = "observation"
	Final       Class = "final"
	JSON        Class = "json"
	Bold        Class = "bold"
	Code        Class = "code"
)

// Span is a run of text sharing one class.
type Span struct {
	Text  string
	Class Class
}

// Line is one rendered line.
type Line []Span

// Func classifies a (possibly partial) text.
type Func func(text string) []Line

// ForRole picks the transcript transform for a role.
func ForRole(role script.Role) Func {
	switch role.Kind() {
	case script.RoleAssistant:
		return Assistant
	case "Tool":
		return Tool
	default:
		return Text
	}
}

// Text classifies every line as Plain.
func Text(text string) []Line {
	return mapLines(text, func(line string) Class { return Plain })
}

// Tool classifies tool output as JSON.
func Tool(text string) []Line {
	return mapLines(text, func(line string) Class { return JSON })
}

// Assistant highlights "thinking:" lines, and everything from the first
// "tool_call:" line to the end.
func Assistant(text string) []Line {
	inToolCall := false
	return mapLines(text, func(line string) Class {
		if strings.HasPrefix(line, "tool_call:") {
			inToolCall = true
		}
		switch {
		case inToolCall:
			return ToolCall
		case strings.HasPrefix(line, "thinking:"):
			return Thinking
		default:
			return Plain
		}
	})
}

// reactPrefixes is checked in order; "Action Input:" must precede "Action:".
var reactPrefixes = []struct {
	prefix string
	class  Class
}{
	{"Thought:", Thought},
	{"Action Input:", ActionInput},
	{"Action:", Action},
	{"Final Answer:", Final},
	{"Observation:", Observation},
}

// ReAct highlights Thought / Action / Action Input / Observation / Final
// Answer lines of model output.
func ReAct(text string) []Line {
	return mapLines(text, func(line string) Class {
		for _, p := range reactPrefixes {
			if strings.HasPrefix(line, p.prefix) {
				return p.class
			}
		}
		return Plain
	})
}

// Insight renders **bold** and `code` markup. Unterminated markers are kept
// as literal text.
func Insight(text string) []Line {
	var out []Line
	for _, raw := range strings.Split(text, "\n") {
		out = append(out, inlineMarkup(raw))
	}
	return out
}

func inlineMarkup(s string) Line {
	var line Line
	var plain strings.Builder
	flush := func() {
		if plain.Len() > 0 {
			line = append(line, Span{Text: plain.String()})
			plain.Reset()
		}
	}
	for len(s) > 0 {
		if rest, ok := strings.CutPrefix(s, "**"); ok {
			if end := strings.Index(rest, "**"); end > 0 {
				flush()
				line = append(line, Span{Text: rest[:end], Class: Bold})
				s = rest[end+2:]
				continue
			}
		}
		if rest, ok := strings.CutPrefix(s, "`"); ok {
			if end := strings.Index(rest, "`"); end > 0 {
				flush()
				line = append(line, Span{Text: rest[:end], Class: Code})
				s = rest[end+1:]
				continue
			}
		}
		plain.WriteByte(s[0])
		s = s[1:]
	}
	flush()
	return line
}

func mapLines(text string, classify func(line string) Class) []Line {
	raw := strings.Split(text, "\n")
	out := make([]Line, len(raw))
	for i, line := range raw {
		if line == "" {
			out[i] = Line{}
			continue
		}
		out[i] = Line{{Text: line, Class: classify(line)}}
	}
	return out
}

// String flattens lines back to text.
func String(lines []Line) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, span := range line {
			b.WriteString(span.Text)
		}
	}
	return b.String()
}
