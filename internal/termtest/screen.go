package termtest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rivo/uniseg"

	"github.com/joeycumines/walkthrough/internal/testutil"
)

// Screen replays everything written so far on a virtual Rows x Cols
// screen and returns its rows, trailing spaces trimmed. It understands the
// cursor movement and erase sequences a bubbletea renderer emits; SGR and
// private modes other than the alternate screen are ignored.
func (t *Terminal) Screen() []string {
	t.mu.Lock()
	raw := t.output.String()
	t.mu.Unlock()
	return ParseScreen(raw, Rows, Cols)
}

type screen struct {
	cells    [][]string
	row, col int
}

func newScreen(rows, cols int) *screen {
	s := &screen{cells: make([][]string, rows)}
	for r := range s.cells {
		s.cells[r] = make([]string, cols)
	}
	s.clear(0, rows)
	return s
}

func (s *screen) clear(from, to int) {
	for r := max(from, 0); r < min(to, len(s.cells)); r++ {
		s.clearLine(r, 0, len(s.cells[r]))
	}
}

func (s *screen) clearLine(r, from, to int) {
	if r < 0 || r >= len(s.cells) {
		return
	}
	for c := max(from, 0); c < min(to, len(s.cells[r])); c++ {
		s.cells[r][c] = " "
	}
}

func (s *screen) put(cluster string, width int) {
	if s.row >= len(s.cells) {
		// Scroll.
		n := s.row - len(s.cells) + 1
		cols := len(s.cells[0])
		s.cells = s.cells[n:]
		for range n {
			line := make([]string, cols)
			for c := range line {
				line[c] = " "
			}
			s.cells = append(s.cells, line)
		}
		s.row = len(s.cells) - 1
	}
	if s.col >= len(s.cells[s.row]) {
		return
	}
	s.cells[s.row][s.col] = cluster
	for i := 1; i < width && s.col+i < len(s.cells[s.row]); i++ {
		s.cells[s.row][s.col+i] = ""
	}
	s.col += max(width, 1)
}

func (s *screen) lines() []string {
	out := make([]string, len(s.cells))
	for r, line := range s.cells {
		out[r] = strings.TrimRight(strings.Join(line, ""), " ")
	}
	return out
}

// ParseScreen replays raw terminal output on a rows x cols screen.
func ParseScreen(raw string, rows, cols int) []string {
	s := newScreen(rows, cols)
	for i := 0; i < len(raw); {
		switch b := raw[i]; {
		case b == '\x1b':
			i = s.escape(raw, i+1)
		case b == '\r':
			s.col = 0
			i++
		case b == '\n':
			s.row++
			i++
		case b == '\b':
			s.col = max(s.col-1, 0)
			i++
		case b == '\t':
			s.col = (s.col/8 + 1) * 8
			i++
		case b < 0x20 || b == 0x7f:
			i++
		default:
			cluster, _, width, _ := uniseg.FirstGraphemeClusterInString(raw[i:], -1)
			s.put(cluster, width)
			i += len(cluster)
		}
	}
	return s.lines()
}

// escape handles the sequence after ESC at raw[i] and returns the index
// following it.
func (s *screen) escape(raw string, i int) int {
	if i >= len(raw) {
		return i
	}
	switch raw[i] {
	case '[':
		i++
		start := i
		for i < len(raw) && raw[i] >= 0x30 && raw[i] <= 0x3f {
			i++
		}
		params := raw[start:i]
		for i < len(raw) && raw[i] >= 0x20 && raw[i] <= 0x2f {
			i++
		}
		if i >= len(raw) {
			return i
		}
		s.csi(raw[i], params)
		return i + 1
	case ']', 'P', '_':
		// OSC, DCS and APC run to BEL or ST.
		for i++; i < len(raw); i++ {
			if raw[i] == '\x07' {
				return i + 1
			}
			if raw[i] == '\x1b' && i+1 < len(raw) && raw[i+1] == '\\' {
				return i + 2
			}
		}
		return i
	default:
		return i + 1
	}
}

func (s *screen) csi(cmd byte, params string) {
	private := strings.HasPrefix(params, "?")
	args := strings.Split(strings.TrimPrefix(params, "?"), ";")
	arg := func(n, def int) int {
		if n < len(args) {
			if v, err := strconv.Atoi(args[n]); err == nil && v > 0 {
				return v
			}
		}
		return def
	}
	rows := len(s.cells)
	switch cmd {
	case 'H', 'f':
		s.row, s.col = min(arg(0, 1), rows)-1, arg(1, 1)-1
	case 'A':
		s.row = max(s.row-arg(0, 1), 0)
	case 'B':
		s.row = min(s.row+arg(0, 1), rows-1)
	case 'C':
		s.col += arg(0, 1)
	case 'D':
		s.col = max(s.col-arg(0, 1), 0)
	case 'G':
		s.col = arg(0, 1) - 1
	case 'd':
		s.row = min(arg(0, 1), rows) - 1
	case 'J':
		switch arg(0, 0) {
		case 0:
			s.clearLine(s.row, s.col, len(s.cells[0]))
			s.clear(s.row+1, rows)
		case 1:
			s.clear(0, s.row)
			s.clearLine(s.row, 0, s.col+1)
		default:
			s.clear(0, rows)
		}
	case 'K':
		switch arg(0, 0) {
		case 0:
			s.clearLine(s.row, s.col, len(s.cells[0]))
		case 1:
			s.clearLine(s.row, 0, s.col+1)
		default:
			s.clearLine(s.row, 0, len(s.cells[0]))
		}
	case 'h', 'l':
		if private && (args[0] == "1049" || args[0] == "47") {
			s.clear(0, rows)
			s.row, s.col = 0, 0
		}
	}
}

// Find returns the 0-based column and row of the first occurrence of text
// on the screen.
func (t *Terminal) Find(text string) (x, y int, ok bool) {
	for row, line := range t.Screen() {
		if i := strings.Index(line, text); i >= 0 {
			return uniseg.StringWidth(line[:i]), row, true
		}
	}
	return 0, 0, false
}

// Click sends a left click at the 0-based cell (x, y) using SGR mouse
// encoding.
func (t *Terminal) Click(x, y int) error {
	if _, err := fmt.Fprintf(t.ptm, "\x1b[<0;%d;%dM", x+1, y+1); err != nil {
		return fmt.Errorf("failed to send mouse press: %w", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := fmt.Fprintf(t.ptm, "\x1b[<0;%d;%dm", x+1, y+1); err != nil {
		return fmt.Errorf("failed to send mouse release: %w", err)
	}
	return nil
}

// ClickText waits for text to be on screen and clicks its first cell.
func (t *Terminal) ClickText(ctx context.Context, text string, timeout time.Duration) error {
	var x, y int
	err := testutil.Poll(ctx, func() bool {
		var ok bool
		x, y, ok = t.Find(text)
		return ok
	}, timeout, 10*time.Millisecond)
	if err != nil {
		return fmt.Errorf("%q not on screen: %w\nscreen:\n%s", text, err, strings.Join(t.Screen(), "\n"))
	}
	return t.Click(x, y)
}
