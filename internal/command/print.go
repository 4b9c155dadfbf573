package command

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/joeycumines/walkthrough/internal/config"
	"github.com/joeycumines/walkthrough/internal/playback"
	"github.com/joeycumines/walkthrough/internal/script"
	"github.com/joeycumines/walkthrough/internal/surface"
)

// PrintCommand replays a scenario headlessly and prints what the display
// would show.
type PrintCommand struct {
	*BaseCommand
	config *config.Config
	flags  playbackFlags
	step   optionalInt
	stream optionalBool
}

// NewPrintCommand creates a new print command.
func NewPrintCommand(cfg *config.Config) *PrintCommand {
	return &PrintCommand{
		BaseCommand: NewBaseCommand(
			"print",
			"Print the display of a scenario at a step as plain text",
			"print [options]",
		),
		config: cfg,
	}
}

// SetupFlags configures the flags for the print command.
func (c *PrintCommand) SetupFlags(fs *flag.FlagSet) {
	c.flags.register(fs)
	fs.Var(&c.step, "step", "Step to print, 0-based (default: the last step)")
	fs.Var(&c.stream, "stream", "Type out the step's streamed text in real time first (default from config)")
}

// Execute prints the display at the requested step.
func (c *PrintCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if err := rejectArgs(args, stderr); err != nil {
		return err
	}
	section := c.Name()

	s, err := c.flags.loadScript(c.config, section)
	if err != nil {
		return err
	}
	logger, err := openLogger(c.flags.logFile, c.flags.logLevel, section, c.config, stderr)
	if err != nil {
		return err
	}
	defer logger.Close()

	stream, err := c.stream.resolve(c.config, section, "stream")
	if err != nil {
		return err
	}

	notifier := surface.NewNotifier()
	meta := s.Meta()
	board := surface.New(meta.Diagram, surface.WithNotify(notifier.Notify))
	opts, err := c.flags.engineOptions(c.config, section, logger.Logger)
	if err != nil {
		return err
	}
	engine := playback.New(s, board.Surfaces(), opts...)
	defer engine.Close()

	target := s.Len() - 1
	if c.step.set {
		target = c.step.value
	}
	engine.JumpTo(target)

	if stream && engine.IsStreaming() {
		step, err := s.At(engine.CurrentIndex())
		if err != nil {
			return fmt.Errorf("streamed step: %w", err)
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := typeOut(ctx, stdout, engine, board, notifier.C(), step); err != nil {
			return err
		}
	}

	// Closing cancels any stream, which shows its full text.
	engine.Close()
	return surface.WriteText(stdout, meta, board.Snapshot())
}

// typeOut writes the live step's streamed text as it is revealed, until
// the stream ends or ctx is done.
func typeOut(ctx context.Context, w io.Writer, engine *playback.Engine, board *surface.Board, changes <-chan struct{}, step script.Step) error {
	_, _ = fmt.Fprintf(w, "== Step %d (streaming)\n", engine.CurrentIndex()+1)
	printed := 0
	for {
		done := !engine.IsStreaming()
		text := streamedText(board.Snapshot(), step)
		if len(text) > printed {
			if _, err := io.WriteString(w, text[printed:]); err != nil {
				return err
			}
			printed = len(text)
		}
		if done {
			break
		}
		select {
		case <-changes:
		case <-ctx.Done():
			_, _ = fmt.Fprintln(w)
			return nil
		}
	}
	_, _ = fmt.Fprint(w, "\n\n")
	return nil
}

// streamedText finds the displayed text of the block step streams: the
// output panel, or the streamed transcript entry of the step.
func streamedText(snap surface.Snapshot, step script.Step) string {
	if step.Output != "" {
		return snap.Output
	}
	for k, e := range step.Transcript {
		if !e.Streamed {
			continue
		}
		i := len(snap.Entries) - len(step.Transcript) + k
		if i >= 0 && i < len(snap.Entries) {
			return snap.Entries[i].Text
		}
	}
	return ""
}
