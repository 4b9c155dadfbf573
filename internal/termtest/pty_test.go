package termtest

import (
	"bufio"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"Plain text", "hello world", "hello world"},
		{"Carriage return", "hello\rworld", "helloworld"},
		{"CRLF", "hello\r\nworld", "hello\nworld"},
		{"ANSI color codes", "hello \x1b[31mred\x1b[0m world", "hello red world"},
		{"ANSI cursor movement", "hello\x1b[2Aworld", "helloworld"},
		{"Mixed", "line 1\r\n\x1b[32mline 2\x1b[0m", "line 1\nline 2"},
		{"Empty", "", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Normalize(tc.input))
		})
	}
}

func TestTerminalRoundTrip(t *testing.T) {
	t.Parallel()
	term, err := Open()
	require.NoError(t, err)
	defer term.Close()

	ctx := context.Background()

	// Program side writes, test side sees it.
	_, err = term.TTY().WriteString("\x1b[1mstep 1/3\x1b[0m\n")
	require.NoError(t, err)
	require.NoError(t, term.WaitForOutput(ctx, "step 1/3", 2*time.Second))

	start := term.Len()
	_, err = term.TTY().WriteString("step 2/3\n")
	require.NoError(t, err)
	require.NoError(t, term.WaitForOutputSince(ctx, "step 2/3", start, 2*time.Second))
	assert.Error(t, term.WaitForOutputSince(ctx, "step 1/3", start, 50*time.Millisecond))

	// Test side types, program side reads the line.
	require.NoError(t, term.Type("next"))
	require.NoError(t, term.SendKeys("enter"))
	line, err := bufio.NewReader(term.TTY()).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "next\n", line)
}

func TestSendKeysUnknown(t *testing.T) {
	t.Parallel()
	term, err := Open()
	require.NoError(t, err)
	defer term.Close()
	assert.EqualError(t, term.SendKeys("hyper+q"), "unknown key: hyper+q")
}

func TestCloseIsIdempotent(t *testing.T) {
	t.Parallel()
	term, err := Open()
	require.NoError(t, err)
	require.NoError(t, term.Close())
	require.NoError(t, term.Close())
}
