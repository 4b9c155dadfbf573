package config

import (
	"cmp"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"
	"time"
)

// OptionType is the kind of value an option takes.
type OptionType string

const (
	TypeString OptionType = "string"
	// TypeBool accepts true/false, yes/no, on/off and 1/0.
	TypeBool OptionType = "bool"
	TypeInt  OptionType = "int"
	// TypeDuration is a non-negative time.Duration such as 800ms or 2s.
	TypeDuration OptionType = "duration"
	// TypePathList is a filepath.ListSeparator separated list.
	TypePathList OptionType = "path-list"
)

// ConfigOption declares one option.
type ConfigOption struct {
	// Section is the command block the option belongs to; "" is global.
	// Global options may also be set inside any command block.
	Section     string
	Key         string
	Type        OptionType
	Default     string
	Description string
	// EnvVar overrides the option from the environment, even when empty.
	EnvVar string
	// Min bounds an int option from below.
	Min *int
}

func (o ConfigOption) ref() optionRef {
	return optionRef{o.Section, o.Key}
}

// check reports why value is not acceptable for the option, or nil.
func (o ConfigOption) check(value string) error {
	switch o.Type {
	case TypeBool:
		_, err := parseBool(value)
		return err
	case TypeInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("expected a whole number, got %q", value)
		}
		if o.Min != nil && n < *o.Min {
			return fmt.Errorf("must be at least %d, got %d", *o.Min, n)
		}
	case TypeDuration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("expected a duration like 2s or 800ms, got %q", value)
		}
		if d < 0 {
			return fmt.Errorf("must not be negative, got %s", value)
		}
	}
	return nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("expected true or false, got %q", s)
}

// ConfigSchema is an immutable set of options.
type ConfigSchema struct {
	options []ConfigOption
	index   map[optionRef]int
}

func newSchema(opts ...ConfigOption) *ConfigSchema {
	s := &ConfigSchema{options: opts, index: make(map[optionRef]int, len(opts))}
	for i, o := range opts {
		s.index[o.ref()] = i
	}
	return s
}

// Lookup returns the option key names in the section's block: the
// section's own option, else the global one. It returns nil for an unknown
// key.
func (s *ConfigSchema) Lookup(section, key string) *ConfigOption {
	if i, ok := s.index[optionRef{section, key}]; ok {
		return &s.options[i]
	}
	if i, ok := s.index[optionRef{key: key}]; ok {
		return &s.options[i]
	}
	return nil
}

// IsKnown reports whether key may appear in the section's block.
func (s *ConfigSchema) IsKnown(section, key string) bool {
	return s.Lookup(section, key) != nil
}

// ResolveFor returns the value a command sees for key: the option's
// environment variable, then the command's block, then the global block,
// then the default. A nil Config skips the file.
func (s *ConfigSchema) ResolveFor(c *Config, section, key string) string {
	v, _ := s.resolve(c, section, key)
	return v
}

// resolve is ResolveFor that also names where the value came from.
func (s *ConfigSchema) resolve(c *Config, section, key string) (value, source string) {
	opt := s.Lookup(section, key)
	if opt != nil && opt.EnvVar != "" {
		if v, ok := os.LookupEnv(opt.EnvVar); ok {
			return v, "$" + opt.EnvVar
		}
	}
	if c != nil {
		if v, ok := c.Commands[section][key]; ok {
			return v, optionRef{section, key}.String()
		}
		if v, ok := c.Global[key]; ok {
			return v, key
		}
	}
	if opt != nil {
		return opt.Default, key + " default"
	}
	return "", key
}

// typed resolves key and checks it against its declared type. Empty values
// are returned unchecked.
func (s *ConfigSchema) typed(c *Config, section, key string, t OptionType) (string, error) {
	v, source := s.resolve(c, section, key)
	if v == "" {
		return "", nil
	}
	opt := ConfigOption{Type: t}
	if o := s.Lookup(section, key); o != nil && o.Type == t {
		opt = *o
	}
	if err := opt.check(v); err != nil {
		return "", fmt.Errorf("config %s: %w", source, err)
	}
	return v, nil
}

// ResolveInt is ResolveFor as an int. An empty value is 0.
func (s *ConfigSchema) ResolveInt(c *Config, section, key string) (int, error) {
	v, err := s.typed(c, section, key, TypeInt)
	if err != nil || v == "" {
		return 0, err
	}
	return strconv.Atoi(v)
}

// ResolveBool is ResolveFor as a bool. An empty value is false.
func (s *ConfigSchema) ResolveBool(c *Config, section, key string) (bool, error) {
	v, err := s.typed(c, section, key, TypeBool)
	if err != nil || v == "" {
		return false, err
	}
	return parseBool(v)
}

// ResolveDuration is ResolveFor as a duration. An empty value is 0.
func (s *ConfigSchema) ResolveDuration(c *Config, section, key string) (time.Duration, error) {
	v, err := s.typed(c, section, key, TypeDuration)
	if err != nil || v == "" {
		return 0, err
	}
	return time.ParseDuration(v)
}

// ResolvePaths is ResolveFor split as a path list.
func (s *ConfigSchema) ResolvePaths(c *Config, section, key string) []string {
	return SplitPathList(s.ResolveFor(c, section, key))
}

// SplitPathList splits a filepath.ListSeparator separated list, dropping
// empty elements.
func SplitPathList(v string) []string {
	var out []string
	for _, p := range filepath.SplitList(v) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidateConfig lists unknown options and values that do not fit their
// option, ordered by the line they were read from. Options set in code
// rather than read from a file sort last.
func ValidateConfig(c *Config, s *ConfigSchema) []string {
	type issue struct {
		line int
		text string
	}
	var issues []issue
	add := func(ref optionRef, format string, args ...any) {
		text := fmt.Sprintf("%s: ", ref) + fmt.Sprintf(format, args...)
		line := c.line(ref)
		if line > 0 {
			text = fmt.Sprintf("line %d: %s", line, text)
		}
		issues = append(issues, issue{line, text})
	}
	check := func(ref optionRef, value string) {
		opt := s.Lookup(ref.section, ref.key)
		if opt == nil {
			add(ref, "unknown option")
			return
		}
		if err := opt.check(value); err != nil {
			add(ref, "%v", err)
		}
	}

	for key, value := range c.Global {
		check(optionRef{key: key}, value)
	}
	for section, opts := range c.Commands {
		for key, value := range opts {
			check(optionRef{section, key}, value)
		}
	}

	sortKey := func(is issue) int {
		if is.line == 0 {
			return math.MaxInt
		}
		return is.line
	}
	slices.SortFunc(issues, func(a, b issue) int {
		if d := cmp.Compare(sortKey(a), sortKey(b)); d != 0 {
			return d
		}
		return strings.Compare(a.text, b.text)
	})
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = is.text
	}
	return out
}

// FormatHelp renders the option reference shown by "config schema".
func (s *ConfigSchema) FormatHelp() string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)

	section := "\x00"
	for _, o := range s.options {
		if o.Section != section {
			section = o.Section
			if section == "" {
				_, _ = fmt.Fprintln(tw, "Options (global, or inside any [command] block):")
			} else {
				_, _ = fmt.Fprintf(tw, "\n[%s] options:\n", section)
			}
		}
		def := o.Default
		if def == "" {
			def = "-"
		}
		_, _ = fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", o.Key, o.Type, def, o.Description)
	}

	_, _ = fmt.Fprintln(tw, "\nEnvironment overrides:")
	for _, o := range s.options {
		if o.EnvVar != "" {
			_, _ = fmt.Fprintf(tw, "  %s\t%s\n", o.EnvVar, o.Key)
		}
	}
	_, _ = fmt.Fprintf(tw, "  %s\tconfig file path\n", EnvConfigPath)

	_ = tw.Flush()
	return b.String()
}

func atLeast(n int) *int { return &n }

var defaultSchema = sync.OnceValue(func() *ConfigSchema {
	return newSchema(
		// playback
		ConfigOption{Key: "stream.chars-per-second", Type: TypeInt, Default: "55", Min: atLeast(1), Description: "Streaming reveal rate"},
		ConfigOption{Key: "autoplay.delay", Type: TypeDuration, Default: "2s", Description: "Autoplay pause after a step that streams nothing"},
		ConfigOption{Key: "autoplay.pad", Type: TypeDuration, Default: "800ms", Description: "Extra autoplay pause after a streamed step"},

		ConfigOption{Key: "scenario.default", Type: TypeString, Default: "react", EnvVar: "WALKTHROUGH_SCENARIO", Description: "Scenario played when none is named"},
		ConfigOption{Key: "scenario.paths", Type: TypePathList, EnvVar: "WALKTHROUGH_SCENARIO_PATH", Description: "Extra directories searched for *.yaml scenarios"},

		ConfigOption{Key: "ui.mouse", Type: TypeBool, Default: "true", Description: "Clickable buttons in the TUI"},
		ConfigOption{Key: "ui.alt-screen", Type: TypeBool, Default: "true", Description: "Run the TUI on the alternate screen"},

		ConfigOption{Key: "log.file", Type: TypeString, EnvVar: "WALKTHROUGH_LOG_FILE", Description: "JSON log file"},
		ConfigOption{Key: "log.level", Type: TypeString, Default: "info", EnvVar: "WALKTHROUGH_LOG_LEVEL", Description: "debug, info, warn or error"},
		ConfigOption{Key: "log.max-size-mb", Type: TypeInt, Default: "10", Min: atLeast(1), Description: "Log file size that triggers rotation"},
		ConfigOption{Key: "log.max-files", Type: TypeInt, Default: "5", Min: atLeast(0), Description: "Rotated log files kept"},
		ConfigOption{Key: "log.buffer-size", Type: TypeInt, Default: "1000", Min: atLeast(1), Description: "Records kept for the TUI log pane"},

		ConfigOption{Section: "play", Key: "start", Type: TypeInt, Default: "-1", Min: atLeast(-1), Description: "Step shown when the TUI opens, -1 for none"},
		ConfigOption{Section: "play", Key: "autoplay", Type: TypeBool, Default: "false", Description: "Start autoplay when the TUI opens"},
		ConfigOption{Section: "print", Key: "stream", Type: TypeBool, Default: "false", Description: "Type out the printed step's stream first"},
	)
})

// DefaultSchema returns the walkthrough options. The schema is shared and
// must not be modified.
func DefaultSchema() *ConfigSchema {
	return defaultSchema()
}
