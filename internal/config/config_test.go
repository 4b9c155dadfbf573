package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigParsing(t *testing.T) {
	t.Parallel()
	configContent := `# Global options
stream.chars-per-second 30
log.file /tmp/walkthrough log.json

[play]
autoplay yes
stream.chars-per-second 80

[print]
stream true`

	config, err := LoadFromReader(strings.NewReader(configContent))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if value, ok := config.GetGlobalOption("stream.chars-per-second"); !ok || value != "30" {
		t.Errorf("Expected stream.chars-per-second=30, got %s (exists: %v)", value, ok)
	}
	if value, ok := config.GetGlobalOption("log.file"); !ok || value != "/tmp/walkthrough log.json" {
		t.Errorf("Expected the rest of the line as value, got %q", value)
	}
	if value, ok := config.GetCommandOption("play", "stream.chars-per-second"); !ok || value != "80" {
		t.Errorf("Expected play override 80, got %s (exists: %v)", value, ok)
	}
	if value, ok := config.GetCommandOption("print", "stream.chars-per-second"); !ok || value != "30" {
		t.Errorf("Expected fallback to global 30, got %s (exists: %v)", value, ok)
	}
	if value, ok := config.GetCommandOption("nonexistent", "option"); ok {
		t.Errorf("Expected nonexistent option to not exist, but got %s", value)
	}
	if config.HasWarnings() {
		t.Errorf("unexpected warnings: %v", config.Warnings)
	}
}

func TestConfigWarnings(t *testing.T) {
	t.Parallel()
	input := "bogus 1\nautoplay.delay soon\n[play]\nautoplay maybe\n\n[print]\nstream.chars-per-second 0\nstart 2\nstream on\nstream off\n"
	config, err := LoadFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	want := []string{
		`line 10: [print] stream repeats line 9; the later value wins`,
		`line 1: bogus: unknown option`,
		`line 2: autoplay.delay: expected a duration like 2s or 800ms, got "soon"`,
		`line 4: [play] autoplay: expected true or false, got "maybe"`,
		`line 7: [print] stream.chars-per-second: must be at least 1, got 0`,
		`line 8: [print] start: unknown option`,
	}
	if len(config.Warnings) != len(want) {
		t.Fatalf("warnings = %q, want %q", config.Warnings, want)
	}
	for i := range want {
		if config.Warnings[i] != want[i] {
			t.Errorf("warning %d = %q, want %q", i, config.Warnings[i], want[i])
		}
	}
}

func TestConfigTabSeparatedValues(t *testing.T) {
	t.Parallel()
	config, err := LoadFromReader(strings.NewReader("autoplay.pad\t1s\n[ play ]\nstart\t \t3\n[]\nui.mouse off\n"))
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := config.GetGlobalOption("autoplay.pad"); v != "1s" {
		t.Errorf("autoplay.pad = %q", v)
	}
	if v, _ := config.GetCommandOption("play", "start"); v != "3" {
		t.Errorf("[play] start = %q", v)
	}
	if v, ok := config.GetGlobalOption("ui.mouse"); !ok || v != "off" {
		t.Errorf("[] should return to the global block, ui.mouse = %q", v)
	}
	if config.HasWarnings() {
		t.Errorf("unexpected warnings: %v", config.Warnings)
	}
}

func TestEmptyConfig(t *testing.T) {
	t.Parallel()
	config, err := LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Failed to load empty config: %v", err)
	}
	if len(config.Global) != 0 || len(config.Commands) != 0 {
		t.Errorf("Expected empty config, got %+v", config)
	}
}

func TestSetGlobalAndCommandOptions(t *testing.T) {
	t.Parallel()
	config := NewConfig()
	config.SetGlobalOption("ui.mouse", "false")
	config.SetCommandOption("play", "start", "3")

	if v, _ := config.GetCommandOption("play", "start"); v != "3" {
		t.Errorf("play.start = %q", v)
	}
	if v, _ := config.GetCommandOption("play", "ui.mouse"); v != "false" {
		t.Errorf("play ui.mouse = %q", v)
	}
}

func TestLoadFromPath(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	config, err := LoadFromPath(filepath.Join(dir, "missing"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if len(config.Global) != 0 {
		t.Errorf("expected empty config for missing file")
	}

	path := filepath.Join(dir, "config")
	if err := os.WriteFile(path, []byte("scenario.default rag\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	config, err = LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if v, _ := config.GetGlobalOption("scenario.default"); v != "rag" {
		t.Errorf("scenario.default = %q", v)
	}

	link := filepath.Join(dir, "link")
	if err := os.Symlink(path, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if _, err := LoadFromPath(link); err == nil || !strings.Contains(err.Error(), "symlink") {
		t.Errorf("expected symlink rejection, got %v", err)
	}
}

func TestLoadUsesConfigPathEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom")
	if err := os.WriteFile(path, []byte("ui.alt-screen false\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigPath, path)

	got, err := GetConfigPath()
	if err != nil || got != path {
		t.Fatalf("GetConfigPath = %q, %v", got, err)
	}
	config, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v, _ := config.GetGlobalOption("ui.alt-screen"); v != "false" {
		t.Errorf("ui.alt-screen = %q", v)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvConfigPath, "")
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	got, err := GetConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, ".walkthrough", "config"); got != want {
		t.Errorf("GetConfigPath = %q, want %q", got, want)
	}
}
