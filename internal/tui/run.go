package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
)

// Options controls the terminal program.
type Options struct {
	AltScreen bool
	Mouse     bool
	Input     io.Reader
	Output    io.Writer
}

// Run drives the model until the user quits or ctx is done. The engine is
// not closed.
func Run(ctx context.Context, cfg Config, opts Options) error {
	if cfg.Zones == nil {
		cfg.Zones = zone.New()
		defer cfg.Zones.Close()
	}
	model := New(cfg)

	progOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.AltScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	if opts.Mouse {
		progOpts = append(progOpts, tea.WithMouseCellMotion())
	}
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}

	if _, err := tea.NewProgram(model, progOpts...).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to run program: %w", err)
	}
	return nil
}
