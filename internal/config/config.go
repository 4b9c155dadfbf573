// Package config reads and writes the walkthrough configuration file.
//
// The file holds one option per line: a key, whitespace, and a value that
// runs to the end of the line. A "[command]" line opens a block of options
// that apply to that command only; "[]" returns to the global block. Blank
// lines and lines starting with # are ignored.
package config

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode"
)

// Config is a parsed configuration file.
type Config struct {
	// Global holds the options outside any [command] block.
	Global map[string]string
	// Commands holds the options of each [command] block.
	Commands map[string]map[string]string
	// Warnings lists problems found while loading. They never stop a load.
	Warnings []string

	// lines records where each option was read, for warnings.
	lines map[optionRef]int
}

// optionRef names an option within a block; an empty section is the global
// block.
type optionRef struct {
	section, key string
}

func (r optionRef) String() string {
	if r.section == "" {
		return r.key
	}
	return fmt.Sprintf("[%s] %s", r.section, r.key)
}

// NewConfig returns an empty configuration.
func NewConfig() *Config {
	return &Config{
		Global:   make(map[string]string),
		Commands: make(map[string]map[string]string),
		lines:    make(map[optionRef]int),
	}
}

// Load reads the file at GetConfigPath.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadFromPath(path)
}

// LoadFromPath reads the file at path. A missing file is an empty
// configuration; a symlink is refused.
func LoadFromPath(path string) (*Config, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewConfig(), nil
		}
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fi.Mode()&os.ModeSymlink != 0 {
		return nil, fmt.Errorf("symlink not allowed in config path: %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader parses a configuration and checks it against
// DefaultSchema, recording what it finds in Warnings.
func LoadFromReader(r io.Reader) (*Config, error) {
	c := NewConfig()
	scanner := bufio.NewScanner(r)
	section := ""
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if name, ok := sectionHeader(line); ok {
			section = name
			if section != "" && c.Commands[section] == nil {
				c.Commands[section] = make(map[string]string)
			}
			continue
		}

		key, value := splitOption(line)
		ref := optionRef{section, key}
		if prev, ok := c.lines[ref]; ok {
			c.addWarning("line %d: %s repeats line %d; the later value wins", n, ref, prev)
		}
		c.lines[ref] = n
		c.set(ref, value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	for _, issue := range ValidateConfig(c, DefaultSchema()) {
		c.addWarning("%s", issue)
	}
	return c, nil
}

// splitOption splits an option line at its first run of whitespace.
func splitOption(line string) (key, value string) {
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i:])
}

func (c *Config) addWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	c.Warnings = append(c.Warnings, msg)
	slog.Debug("config warning", "warning", msg)
}

func (c *Config) set(ref optionRef, value string) {
	if ref.section == "" {
		c.Global[ref.key] = value
		return
	}
	if c.Commands[ref.section] == nil {
		c.Commands[ref.section] = make(map[string]string)
	}
	c.Commands[ref.section][ref.key] = value
}

// line returns the line an option was read from, or 0.
func (c *Config) line(ref optionRef) int {
	return c.lines[ref]
}

// GetGlobalOption returns an option of the global block.
func (c *Config) GetGlobalOption(name string) (string, bool) {
	value, ok := c.Global[name]
	return value, ok
}

// GetCommandOption returns an option of the command's block, falling back
// to the global block.
func (c *Config) GetCommandOption(command, name string) (string, bool) {
	if value, ok := c.Commands[command][name]; ok {
		return value, true
	}
	return c.GetGlobalOption(name)
}

// SetGlobalOption sets an option of the global block.
func (c *Config) SetGlobalOption(name, value string) {
	c.set(optionRef{key: name}, value)
}

// SetCommandOption sets an option of the command's block.
func (c *Config) SetCommandOption(command, name, value string) {
	c.set(optionRef{command, name}, value)
}

// HasWarnings reports whether loading found any problems.
func (c *Config) HasWarnings() bool {
	return len(c.Warnings) > 0
}
