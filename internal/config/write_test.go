package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read config file: %v", err)
	}
	return string(data)
}

func TestSetKeyInFile_NewKeyEmptyFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "config")

	if err := SetKeyInFile(path, "ui.mouse", "false"); err != nil {
		t.Fatalf("SetKeyInFile returned error: %v", err)
	}
	if got := strings.TrimSpace(readFile(t, path)); got != "ui.mouse false" {
		t.Fatalf("expected 'ui.mouse false', got %q", got)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath returned error: %v", err)
	}
	if v, ok := cfg.GetGlobalOption("ui.mouse"); !ok || v != "false" {
		t.Fatalf("expected ui.mouse=false after round-trip, got %q exists=%v", v, ok)
	}
}

func TestSetKeyInFile_UpdatePreservesLayout(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config")
	initial := "# playback\nstream.chars-per-second 55\nautoplay.delay 2s\n\n[play]\nstream.chars-per-second 90\n"
	if err := os.WriteFile(path, []byte(initial), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := SetKeyInFile(path, "stream.chars-per-second", "20"); err != nil {
		t.Fatal(err)
	}
	want := "# playback\nstream.chars-per-second 20\nautoplay.delay 2s\n\n[play]\nstream.chars-per-second 90\n"
	if got := readFile(t, path); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSetKeyInFile_InsertsBeforeFirstSection(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte("log.level debug\n[play]\nautoplay true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := SetKeyInFile(path, "autoplay.pad", "1s"); err != nil {
		t.Fatal(err)
	}
	want := "log.level debug\nautoplay.pad 1s\n[play]\nautoplay true\n"
	if got := readFile(t, path); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSetKeyInFile_AppendsAndClears(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte("log.level debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := SetKeyInFile(path, "log.file", "/tmp/my logs/w.log"); err != nil {
		t.Fatal(err)
	}
	if err := SetKeyInFile(path, "log.level", ""); err != nil {
		t.Fatal(err)
	}
	want := "log.level\nlog.file /tmp/my logs/w.log\n"
	if got := readFile(t, path); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-config-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestSetSectionKeyInFile(t *testing.T) {
	t.Parallel()
	const initial = "log.level debug\n\n[play]\n# opening step\nstart 2\n\n[print]\nstream true\n"
	for _, tc := range []struct {
		name    string
		initial string
		section string
		key     string
		value   string
		want    string
	}{
		{
			name:    "replaces in its own section only",
			initial: initial + "[mcp]\nstart 9\n",
			section: "play",
			key:     "start",
			value:   "5",
			want:    "log.level debug\n\n[play]\n# opening step\nstart 5\n\n[print]\nstream true\n[mcp]\nstart 9\n",
		},
		{
			name:    "adds after the last option of the section",
			initial: initial,
			section: "play",
			key:     "autoplay",
			value:   "true",
			want:    "log.level debug\n\n[play]\n# opening step\nstart 2\nautoplay true\n\n[print]\nstream true\n",
		},
		{
			name:    "adds to the last section",
			initial: initial,
			section: "print",
			key:     "log.level",
			value:   "warn",
			want:    "log.level debug\n\n[play]\n# opening step\nstart 2\n\n[print]\nstream true\nlog.level warn\n",
		},
		{
			name:    "appends a missing section",
			initial: initial,
			section: "mcp",
			key:     "scenario.default",
			value:   "rag",
			want:    initial + "\n[mcp]\nscenario.default rag\n",
		},
		{
			name:    "new section in an empty file",
			section: "play",
			key:     "autoplay",
			value:   "true",
			want:    "[play]\nautoplay true\n",
		},
		{
			name:    "empty section header",
			initial: "log.level debug\n[play]\n[print]\nstream true\n",
			section: "play",
			key:     "start",
			value:   "0",
			want:    "log.level debug\n[play]\nstart 0\n[print]\nstream true\n",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "config")
			if tc.initial != "" {
				if err := os.WriteFile(path, []byte(tc.initial), 0o644); err != nil {
					t.Fatal(err)
				}
			}
			if err := SetSectionKeyInFile(path, tc.section, tc.key, tc.value); err != nil {
				t.Fatalf("SetSectionKeyInFile returned error: %v", err)
			}
			if got := readFile(t, path); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSetSectionKeyInFile_RoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config")
	if err := SetKeyInFile(path, "autoplay.delay", "1s"); err != nil {
		t.Fatal(err)
	}
	if err := SetSectionKeyInFile(path, "play", "autoplay.delay", "3s"); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath returned error: %v", err)
	}
	if v, _ := cfg.GetGlobalOption("autoplay.delay"); v != "1s" {
		t.Fatalf("global autoplay.delay = %q, want 1s", v)
	}
	if v, _ := cfg.GetCommandOption("play", "autoplay.delay"); v != "3s" {
		t.Fatalf("play autoplay.delay = %q, want 3s", v)
	}
}
