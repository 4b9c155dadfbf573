package script

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

type file struct {
	Name        string     `yaml:"name"`
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	UserQuery   string     `yaml:"userQuery"`
	Diagram     Diagram    `yaml:"diagram"`
	Steps       []fileStep `yaml:"steps"`
}

type fileStep struct {
	Arrows         []string   `yaml:"arrows"`
	HighlightNodes []string   `yaml:"highlightNodes"`
	HighlightTool  string     `yaml:"highlightTool"`
	ToolActivity   []ToolLine `yaml:"toolActivity"`
	Transcript     entryList  `yaml:"transcript"`
	Output         string     `yaml:"output"`
	Insight        string     `yaml:"insight"`
	Deliver        bool       `yaml:"deliver"`
}

type fileEntry struct {
	Role     string `yaml:"role"`
	Text     string `yaml:"text"`
	Stream   bool   `yaml:"stream"`
	Streamed bool   `yaml:"streamed"`
}

// entryList accepts either a single entry mapping or a sequence of them.
type entryList []fileEntry

func (l *entryList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.AliasNode && value.Alias != nil {
		value = value.Alias
	}
	switch value.Kind {
	case yaml.MappingNode:
		var e fileEntry
		if err := value.Decode(&e); err != nil {
			return err
		}
		*l = entryList{e}
		return nil
	case yaml.SequenceNode:
		var es []fileEntry
		if err := value.Decode(&es); err != nil {
			return err
		}
		*l = es
		return nil
	default:
		return fmt.Errorf("line %d: transcript must be a mapping or a sequence", value.Line)
	}
}

// Decode reads a YAML scenario. All text is normalised to NFC so that
// grapheme-wise streaming behaves the same regardless of how the file was
// authored.
func Decode(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty scenario")
		}
		return nil, fmt.Errorf("decode scenario: %w", err)
	}

	meta := Meta{
		Name:        f.Name,
		Title:       nfc(f.Title),
		Description: nfc(f.Description),
		UserQuery:   nfc(f.UserQuery),
		Diagram:     f.Diagram,
	}

	steps := make([]Step, 0, len(f.Steps))
	for i, fs := range f.Steps {
		step := Step{
			Arrows:         fs.Arrows,
			HighlightNodes: fs.HighlightNodes,
			HighlightTool:  fs.HighlightTool,
			Output:         nfc(fs.Output),
			Insight:        nfc(fs.Insight),
			Deliver:        fs.Deliver,
		}
		for _, tl := range fs.ToolActivity {
			step.ToolActivity = append(step.ToolActivity, ToolLine{Text: nfc(tl.Text), Class: tl.Class})
		}
		for j, fe := range fs.Transcript {
			role, err := ParseRole(fe.Role)
			if err != nil {
				return nil, fmt.Errorf("step %d: transcript entry %d: %w", i, j, err)
			}
			step.Transcript = append(step.Transcript, Entry{
				Role:     role,
				Text:     nfc(fe.Text),
				Streamed: fe.Stream || fe.Streamed,
			})
		}
		steps = append(steps, step)
	}

	return New(meta, steps)
}

func nfc(s string) string {
	return norm.NFC.String(s)
}
