// Package termtest drives terminal programs through a real pseudo-terminal.
package termtest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/creack/pty"

	"github.com/joeycumines/walkthrough/internal/testutil"
)

// Default terminal size.
const (
	Rows = 40
	Cols = 120
)

// Terminal is a pty pair. A program under test reads from and writes to
// TTY(); the test types on the other side and inspects what was written.
type Terminal struct {
	ptm *os.File
	pts *os.File

	mu     sync.Mutex
	output strings.Builder
	done   chan struct{}

	closeOnce sync.Once
}

// Open creates a pty pair sized Rows x Cols and starts capturing output.
func Open() (*Terminal, error) {
	ptm, pts, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open pty: %w", err)
	}
	if err := pty.Setsize(ptm, &pty.Winsize{Rows: Rows, Cols: Cols}); err != nil {
		_ = ptm.Close()
		_ = pts.Close()
		return nil, fmt.Errorf("failed to size pty: %w", err)
	}
	t := &Terminal{ptm: ptm, pts: pts, done: make(chan struct{})}
	go t.readOutput()
	return t, nil
}

// TTY returns the program side of the pair.
func (t *Terminal) TTY() *os.File {
	return t.pts
}

// Type writes input as if typed, one rune at a time.
func (t *Terminal) Type(input string) error {
	for _, r := range input {
		if _, err := t.ptm.WriteString(string(r)); err != nil {
			return fmt.Errorf("failed to write input: %w", err)
		}
		time.Sleep(5 * time.Millisecond)
	}
	return nil
}

var keySequences = map[string]string{
	"ctrl+c": "\x03",
	"esc":    "\x1b",
	"tab":    "\t",
	"enter":  "\r",
	"space":  " ",
	"up":     "\x1b[A",
	"down":   "\x1b[B",
	"right":  "\x1b[C",
	"left":   "\x1b[D",
	"home":   "\x1b[H",
	"end":    "\x1b[F",
}

// SendKeys sends named keys, e.g. "right" or "ctrl+c".
func (t *Terminal) SendKeys(keys ...string) error {
	for _, k := range keys {
		seq, ok := keySequences[strings.ToLower(k)]
		if !ok {
			return fmt.Errorf("unknown key: %s", k)
		}
		if _, err := t.ptm.WriteString(seq); err != nil {
			return fmt.Errorf("failed to write key %s: %w", k, err)
		}
		time.Sleep(5 * time.Millisecond)
	}
	return nil
}

// Output returns everything written so far with escape sequences removed.
func (t *Terminal) Output() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Normalize(t.output.String())
}

// Len reports the raw output length, for use with WaitForOutputSince.
func (t *Terminal) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.output.Len()
}

// WaitForOutput waits for text to appear anywhere in the output.
func (t *Terminal) WaitForOutput(ctx context.Context, text string, timeout time.Duration) error {
	return t.WaitForOutputSince(ctx, text, 0, timeout)
}

// WaitForOutputSince waits for text to appear in the output written after
// the raw offset start.
func (t *Terminal) WaitForOutputSince(ctx context.Context, text string, start int, timeout time.Duration) error {
	err := testutil.Poll(ctx, func() bool {
		return strings.Contains(t.since(start), text)
	}, timeout, 10*time.Millisecond)
	if err != nil {
		return fmt.Errorf("expected %q in output: %w\noutput:\n%s", text, err, t.since(start))
	}
	return nil
}

func (t *Terminal) since(start int) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	raw := t.output.String()
	if start > len(raw) {
		start = len(raw)
	}
	return Normalize(raw[start:])
}

// Close closes both sides of the pair.
func (t *Terminal) Close() error {
	var err error
	t.closeOnce.Do(func() {
		errPTS := t.pts.Close()
		errPTM := t.ptm.Close()
		<-t.done
		if errPTS != nil {
			err = errPTS
		} else {
			err = errPTM
		}
	})
	return err
}

func (t *Terminal) readOutput() {
	defer close(t.done)
	buf := make([]byte, 4096)
	for {
		n, err := t.ptm.Read(buf)
		if n > 0 {
			t.mu.Lock()
			t.output.Write(buf[:n])
			t.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// Normalize strips escape sequences and carriage returns.
func Normalize(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "")
}
