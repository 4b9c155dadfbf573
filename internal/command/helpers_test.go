package command

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeycumines/walkthrough/internal/config"
)

const tinyScenario = `title: Tiny
steps:
  - transcript: {role: User, text: hi}
  - transcript: {role: Assistant, text: hello there, stream: true}
    deliver: true
`

// parseFlags sets up cmd's flags and parses args, returning the
// positional arguments.
func parseFlags(t *testing.T, cmd Command, args ...string) []string {
	t.Helper()
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetupFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs.Args()
}

// writeScenario writes a scenario file named name.yaml into a new temp dir.
func writeScenario(t *testing.T, name, body string) (dir, file string) {
	t.Helper()
	dir = t.TempDir()
	file = filepath.Join(dir, name+".yaml")
	require.NoError(t, os.WriteFile(file, []byte(body), 0o644))
	return dir, file
}

func TestOptionalBool(t *testing.T) {
	t.Parallel()
	cfg := config.NewConfig()
	cfg.SetCommandOption("play", "autoplay", "true")

	for _, tc := range []struct {
		args []string
		want bool
	}{
		{nil, true},
		{[]string{"-autoplay"}, true},
		{[]string{"-autoplay=false"}, false},
		{[]string{"-autoplay=true"}, true},
	} {
		var v optionalBool
		fs := flag.NewFlagSet("play", flag.ContinueOnError)
		fs.Var(&v, "autoplay", "")
		require.NoError(t, fs.Parse(tc.args))
		got, err := v.resolve(cfg, "play", "autoplay")
		require.NoError(t, err)
		if got != tc.want {
			t.Errorf("%v: got %v, want %v", tc.args, got, tc.want)
		}
	}

	var v optionalBool
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Var(&v, "autoplay", "")
	if err := fs.Parse([]string{"-autoplay=maybe"}); err == nil {
		t.Fatal("expected a parse error")
	}
}
