package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SetKeyInFile updates or adds a global option in the config file,
// preserving comments and layout. A new key goes before the first
// [section] header, or at the end when there is none.
func SetKeyInFile(path, key, value string) error {
	return SetSectionKeyInFile(path, "", key, value)
}

// SetSectionKeyInFile is SetKeyInFile for the [section] block of a
// command; an empty section means the global block. A missing block is
// appended to the file. Keys in other blocks are never touched.
func SetSectionKeyInFile(path, section, key, value string) error {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config file: %w", err)
	}

	lines := []string{""}
	if len(data) > 0 {
		lines = strings.Split(string(data), "\n")
	}
	lines = setKey(lines, section, key, value)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return atomicWriteFile(path, []byte(strings.Join(lines, "\n")), 0o644)
}

func optionLine(key, value string) string {
	if value == "" {
		return key
	}
	return key + " " + value
}

func sectionHeader(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, "]") {
		return "", false
	}
	return strings.TrimSpace(line[1 : len(line)-1]), true
}

// setKey edits the lines of a config file. The block of a section runs
// from its header to the next one; the global block runs from the top to
// the first header (or to a bare [] header and on from there).
func setKey(lines []string, section, key, value string) []string {
	newLine := optionLine(key, value)

	current := ""
	header := -1  // index of the target section's header
	lastOpt := -1 // index of the last option line in the target block
	firstHeader := -1
	for i, line := range lines {
		if name, ok := sectionHeader(line); ok {
			if firstHeader < 0 {
				firstHeader = i
			}
			current = name
			if current == section && section != "" && header < 0 {
				header = i
			}
			continue
		}
		if current != section {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		name, _ := splitOption(trimmed)
		if name == key {
			lines[i] = newLine
			return lines
		}
		lastOpt = i
	}

	switch {
	case section == "" && firstHeader >= 0:
		return insertLine(lines, firstHeader, newLine)
	case section == "" || header >= 0:
		at := max(lastOpt, header) + 1
		if section == "" && lastOpt < 0 {
			at = len(lines)
		}
		if at == len(lines) && at > 0 && lines[at-1] == "" {
			// Keep the trailing newline last.
			at--
		}
		return insertLine(lines, at, newLine)
	}

	// Append a new block.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	if len(lines) > 0 {
		lines = append(lines, "")
	}
	return append(lines, "["+section+"]", newLine, "")
}

func insertLine(lines []string, at int, line string) []string {
	lines = append(lines, "")
	copy(lines[at+1:], lines[at:])
	lines[at] = line
	return lines
}

// atomicWriteFile writes through a temp file in the same directory and
// renames it over path.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-config-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(name, perm); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("replacing config file: %w", err)
	}
	return nil
}
