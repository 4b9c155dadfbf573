package command

import (
	"flag"
	"fmt"
	"log/slog"
	"time"

	"github.com/joeycumines/walkthrough/internal/config"
	"github.com/joeycumines/walkthrough/internal/playback"
	"github.com/joeycumines/walkthrough/internal/scenario"
	"github.com/joeycumines/walkthrough/internal/script"
)

// playbackFlags are the flags shared by every command that plays a
// scenario. Zero values defer to the config.
type playbackFlags struct {
	scenario string
	file     string
	cps      int
	delay    time.Duration
	pad      time.Duration
	logFile  string
	logLevel string
}

func (f *playbackFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.scenario, "scenario", "", "Scenario to play (default from config scenario.default)")
	fs.StringVar(&f.file, "file", "", "Play a scenario YAML file instead of a named scenario")
	fs.IntVar(&f.cps, "cps", 0, "Streaming rate in characters per second (default from config)")
	fs.DurationVar(&f.delay, "delay", 0, "Autoplay pause after a step that streams nothing (default from config)")
	fs.DurationVar(&f.pad, "pad", 0, "Extra autoplay pause after a streamed step (default from config)")
	fs.StringVar(&f.logFile, "log-file", "", "Log file path (default from config log.file)")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")
}

// loadScript resolves the scenario from flags and config.
func (f *playbackFlags) loadScript(cfg *config.Config, section string) (*script.Script, error) {
	if f.file != "" {
		return scenario.LoadFile(f.file)
	}
	catalog, err := openCatalog(cfg, section)
	if err != nil {
		return nil, err
	}
	name := f.scenario
	if name == "" {
		name = config.DefaultSchema().ResolveFor(cfg, section, "scenario.default")
	}
	if name == "" {
		name = scenario.DefaultName
	}
	return catalog.Get(name)
}

func openCatalog(cfg *config.Config, section string) (*scenario.Catalog, error) {
	dirs := config.DefaultSchema().ResolvePaths(cfg, section, "scenario.paths")
	if len(dirs) == 0 {
		return scenario.Default(), nil
	}
	catalog, err := scenario.New(dirs...)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenarios: %w", err)
	}
	return catalog, nil
}

// engineOptions resolves the timing options from flags and config.
func (f *playbackFlags) engineOptions(cfg *config.Config, section string, logger *slog.Logger) ([]playback.Option, error) {
	schema := config.DefaultSchema()

	cps := f.cps
	if cps <= 0 {
		v, err := schema.ResolveInt(cfg, section, "stream.chars-per-second")
		if err != nil {
			return nil, err
		}
		cps = v
	}
	delay := f.delay
	if delay <= 0 {
		v, err := schema.ResolveDuration(cfg, section, "autoplay.delay")
		if err != nil {
			return nil, err
		}
		delay = v
	}
	pad := f.pad
	if pad <= 0 {
		v, err := schema.ResolveDuration(cfg, section, "autoplay.pad")
		if err != nil {
			return nil, err
		}
		pad = v
	}

	return []playback.Option{
		playback.WithCharsPerSecond(cps),
		playback.WithAutoplayDelay(delay),
		playback.WithStreamPad(pad),
		playback.WithLogger(logger),
	}, nil
}
