// Package scenario is the catalog of playable scripts: the built-in demos
// embedded in the binary, plus any YAML files found in extra directories.
package scenario

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joeycumines/walkthrough/internal/script"
)

// DefaultName is the scenario played when none is named.
const DefaultName = "react"

// ErrUnknown is returned for a scenario name not in the catalog.
var ErrUnknown = errors.New("unknown scenario")

//go:embed scenarios/*.yaml
var embeddedFS embed.FS

// Info describes one catalog entry.
type Info struct {
	Name   string
	Title  string
	Steps  int
	Source string
}

// Catalog maps scenario names to loaded scripts.
type Catalog struct {
	scripts map[string]*script.Script
	sources map[string]string
}

var defaultCatalog = mustLoadEmbedded()

func mustLoadEmbedded() *Catalog {
	c, err := LoadEmbedded()
	if err != nil {
		panic(fmt.Sprintf("scenario: embedded catalog: %v", err))
	}
	return c
}

// Default returns the embedded catalog.
func Default() *Catalog {
	return defaultCatalog
}

// LoadEmbedded loads the built-in scenarios.
func LoadEmbedded() (*Catalog, error) {
	c := &Catalog{scripts: map[string]*script.Script{}, sources: map[string]string{}}
	if err := c.addFS(embeddedFS, "scenarios", "builtin"); err != nil {
		return nil, err
	}
	return c, nil
}

// New returns the built-in scenarios plus every *.yaml / *.yml file in dirs.
// Later directories override earlier ones, and all of them override the
// built-ins. Missing directories are skipped.
func New(dirs ...string) (*Catalog, error) {
	c, err := LoadEmbedded()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		info, err := os.Stat(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("scenario dir %s: %w", dir, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("scenario dir %s: not a directory", dir)
		}
		if err := c.addFS(os.DirFS(dir), ".", dir); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) addFS(fsys fs.FS, dir, source string) error {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := fs.Glob(fsys, path.Join(dir, pattern))
		if err != nil {
			return fmt.Errorf("glob scenarios in %s: %w", source, err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	for _, p := range paths {
		f, err := fsys.Open(p)
		if err != nil {
			return fmt.Errorf("open scenario %s: %w", p, err)
		}
		s, err := script.Decode(f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("scenario %s: %w", filepath.Join(source, path.Base(p)), err)
		}
		name := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if meta := s.Meta(); meta.Name != "" && meta.Name != name {
			return fmt.Errorf("scenario %s: name %q must match file name %q", filepath.Join(source, path.Base(p)), meta.Name, name)
		}
		c.scripts[name] = s
		c.sources[name] = source
	}
	return nil
}

// Names returns the scenario names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.scripts))
	for name := range c.scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the named scenario.
func (c *Catalog) Get(name string) (*script.Script, error) {
	s, ok := c.scripts[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (have %s)", ErrUnknown, name, strings.Join(c.Names(), ", "))
	}
	return s, nil
}

// List describes every scenario, sorted by name.
func (c *Catalog) List() []Info {
	names := c.Names()
	out := make([]Info, 0, len(names))
	for _, name := range names {
		s := c.scripts[name]
		title := s.Meta().Title
		if title == "" {
			title = name
		}
		out = append(out, Info{Name: name, Title: title, Steps: s.Len(), Source: c.sources[name]})
	}
	return out
}

// Names lists the built-in scenarios.
func Names() []string {
	return defaultCatalog.Names()
}

// Load returns a built-in scenario by name.
func Load(name string) (*script.Script, error) {
	return defaultCatalog.Get(name)
}

// LoadFile decodes a scenario from a file path.
func LoadFile(p string) (*script.Script, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()
	s, err := script.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", p, err)
	}
	return s, nil
}
