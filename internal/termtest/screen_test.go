package termtest

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/term"
)

func TestParseScreen(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		raw      string
		expected []string
	}{
		{"Plain", "hello\r\nworld", []string{"hello", "world", ""}},
		{"SGR ignored", "\x1b[1;31mred\x1b[0m", []string{"red", "", ""}},
		{"Cursor position", "\x1b[2;3Hx", []string{"", "  x", ""}},
		{"Overwrite after up", "one\r\ntwo\x1b[1A\rONE", []string{"ONE", "two", ""}},
		{"Erase line", "abcdef\x1b[3D\x1b[K", []string{"abc", "", ""}},
		{"Erase whole line", "abcdef\x1b[2K", []string{"", "", ""}},
		{"Clear screen", "a\r\nb\x1b[2J\x1b[Hc", []string{"c", "", ""}},
		{"Alt screen", "before\x1b[?1049hafter", []string{"after", "", ""}},
		{"Wide glyph", "▶ 🔢 x", []string{"▶ 🔢 x", "", ""}},
		{"Scroll", "1\r\n2\r\n3\r\n4", []string{"2", "3", "4"}},
		{"OSC skipped", "\x1b]0;title\x07ok", []string{"ok", "", ""}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseScreen(tc.raw, 3, 20))
		})
	}
}

func TestFindAndClick(t *testing.T) {
	t.Parallel()
	tt, err := Open()
	require.NoError(t, err)
	defer tt.Close()

	// Raw mode, so the program side reads the click bytes unbuffered.
	_, err = term.MakeRaw(int(tt.TTY().Fd()))
	require.NoError(t, err)

	_, err = tt.TTY().WriteString("\x1b[3;1H🔢 [ Next ▶ ]")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, tt.WaitForOutput(ctx, "Next", 2*time.Second))
	x, y, ok := tt.Find("[ Next")
	require.True(t, ok)
	assert.Equal(t, 3, x)
	assert.Equal(t, 2, y)

	require.NoError(t, tt.ClickText(ctx, "[ Next", time.Second))
	want := "\x1b[<0;4;3M\x1b[<0;4;3m"
	got := make([]byte, len(want))
	_, err = io.ReadFull(tt.TTY(), got)
	require.NoError(t, err)
	assert.Equal(t, want, string(got))
}
