package command

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/joeycumines/walkthrough/internal/config"
	"github.com/joeycumines/walkthrough/internal/mcpserver"
	"github.com/joeycumines/walkthrough/internal/playback"
	"github.com/joeycumines/walkthrough/internal/surface"
)

// MCPCommand serves a scenario over the Model Context Protocol on stdio.
type MCPCommand struct {
	*BaseCommand
	config  *config.Config
	version string
	flags   playbackFlags

	ctx       context.Context
	transport func() mcp.Transport
}

// NewMCPCommand creates a new mcp command.
func NewMCPCommand(cfg *config.Config, version string) *MCPCommand {
	return &MCPCommand{
		BaseCommand: NewBaseCommand(
			"mcp",
			"Serve a scenario to an MCP client over stdio",
			"mcp [options]",
		),
		config:    cfg,
		version:   version,
		ctx:       context.Background(),
		transport: func() mcp.Transport { return &mcp.StdioTransport{} },
	}
}

// SetupFlags configures the flags for the mcp command.
func (c *MCPCommand) SetupFlags(fs *flag.FlagSet) {
	c.flags.register(fs)
}

// Execute serves until the client disconnects or the process is
// interrupted. stdout belongs to the protocol, so logs go to stderr.
func (c *MCPCommand) Execute(args []string, stdout, stderr io.Writer) error {
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

	meta := s.Meta()
	board := surface.New(meta.Diagram)
	opts, err := c.flags.engineOptions(c.config, section, logger.Logger)
	if err != nil {
		return err
	}
	engine := playback.New(s, board.Surfaces(), opts...)
	defer engine.Close()

	server := mcpserver.New(engine, board, meta, c.version, logger.Logger)

	ctx, stop := signal.NotifyContext(c.ctx, os.Interrupt)
	defer stop()

	logger.Info("serving", "scenario", meta.Name, "steps", s.Len())
	return server.Run(ctx, c.transport())
}
