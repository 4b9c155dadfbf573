package command

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"

	"golang.org/x/term"

	"github.com/joeycumines/walkthrough/internal/config"
	"github.com/joeycumines/walkthrough/internal/playback"
	"github.com/joeycumines/walkthrough/internal/surface"
	"github.com/joeycumines/walkthrough/internal/tui"
)

// ErrNotTerminal is returned by play when stdin or stdout is not a terminal.
var ErrNotTerminal = errors.New("play needs an interactive terminal; use 'walkthrough print' instead")

// PlayCommand runs the full-screen walkthrough.
type PlayCommand struct {
	*BaseCommand
	config   *config.Config
	flags    playbackFlags
	start    optionalInt
	autoplay optionalBool
	noMouse  bool

	isTerminal func() bool
	input      io.Reader
	run        func(ctx context.Context, cfg tui.Config, opts tui.Options) error
}

// NewPlayCommand creates a new play command.
func NewPlayCommand(cfg *config.Config) *PlayCommand {
	return &PlayCommand{
		BaseCommand: NewBaseCommand(
			"play",
			"Play a scenario in the terminal UI",
			"play [options]",
		),
		config:     cfg,
		isTerminal: stdioIsTerminal,
		input:      os.Stdin,
		run:        tui.Run,
	}
}

func stdioIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// SetupFlags configures the flags for the play command.
func (c *PlayCommand) SetupFlags(fs *flag.FlagSet) {
	c.flags.register(fs)
	fs.Var(&c.start, "start", "Step to open at, 0-based; -1 is the empty initial state (default from config)")
	fs.Var(&c.autoplay, "autoplay", "Start autoplay immediately (default from config)")
	fs.BoolVar(&c.noMouse, "no-mouse", false, "Disable mouse support")
}

// Execute runs the terminal UI until the user quits.
func (c *PlayCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if err := rejectArgs(args, stderr); err != nil {
		return err
	}
	if !c.isTerminal() {
		return ErrNotTerminal
	}
	schema := config.DefaultSchema()
	section := c.Name()

	s, err := c.flags.loadScript(c.config, section)
	if err != nil {
		return err
	}

	// Nothing may write to the terminal while the UI owns it, so the log
	// only goes to the ring (and the log file, if configured).
	logger, err := openLogger(c.flags.logFile, c.flags.logLevel, section, c.config, nil)
	if err != nil {
		return err
	}
	defer logger.Close()

	notifier := surface.NewNotifier()
	logger.Ring.OnRecord(notifier.Notify)
	meta := s.Meta()
	board := surface.New(meta.Diagram, surface.WithNotify(notifier.Notify))

	opts, err := c.flags.engineOptions(c.config, section, logger.Logger)
	if err != nil {
		return err
	}
	engine := playback.New(s, board.Surfaces(), opts...)
	defer engine.Close()

	start := c.start.value
	if !c.start.set {
		if start, err = schema.ResolveInt(c.config, section, "start"); err != nil {
			return err
		}
	}
	if start >= 0 {
		engine.JumpTo(start)
	}
	autoplay, err := c.autoplay.resolve(c.config, section, "autoplay")
	if err != nil {
		return err
	}
	if autoplay {
		engine.ToggleAutoplay()
	}

	mouse, err := schema.ResolveBool(c.config, section, "ui.mouse")
	if err != nil {
		return err
	}
	altScreen, err := schema.ResolveBool(c.config, section, "ui.alt-screen")
	if err != nil {
		return err
	}

	logger.Info("playing", "scenario", meta.Name, "steps", s.Len(), "start", start)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return c.run(ctx, tui.Config{
		Engine:  engine,
		Board:   board,
		Meta:    meta,
		Logs:    logger.Ring,
		Changes: notifier.C(),
	}, tui.Options{
		AltScreen: altScreen,
		Mouse:     mouse && !c.noMouse,
		Input:     c.input,
		Output:    stdout,
	})
}
