package command

import (
	"fmt"
	"io"

	"github.com/joeycumines/walkthrough/internal/config"
	"github.com/joeycumines/walkthrough/internal/logging"
)

// resolveLogOptions resolves logging options from flags and config. Flag
// values take precedence; config values (and then schema defaults) apply
// when a flag is empty.
func resolveLogOptions(flagPath, flagLevel, section string, cfg *config.Config) (logging.Options, error) {
	schema := config.DefaultSchema()
	var opts logging.Options

	levelStr := flagLevel
	if levelStr == "" {
		levelStr = schema.ResolveFor(cfg, section, "log.level")
	}
	level, err := logging.ParseLevel(levelStr)
	if err != nil {
		return opts, err
	}
	opts.Level = level

	opts.File = flagPath
	if opts.File == "" {
		opts.File = schema.ResolveFor(cfg, section, "log.file")
	}

	if opts.BufferSize, err = schema.ResolveInt(cfg, section, "log.buffer-size"); err != nil {
		return opts, err
	}
	if opts.MaxSizeMB, err = schema.ResolveInt(cfg, section, "log.max-size-mb"); err != nil {
		return opts, err
	}
	if opts.MaxFiles, err = schema.ResolveInt(cfg, section, "log.max-files"); err != nil {
		return opts, err
	}
	return opts, nil
}

// openLogger resolves the logging options and builds the logger. The caller
// must Close it.
func openLogger(flagPath, flagLevel, section string, cfg *config.Config, extra io.Writer) (*logging.Logger, error) {
	opts, err := resolveLogOptions(flagPath, flagLevel, section, cfg)
	if err != nil {
		return nil, err
	}
	opts.Extra = extra
	l, err := logging.New(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", opts.File, err)
	}
	return l, nil
}
