// Package mcpserver exposes a walkthrough over the Model Context Protocol,
// so an agent can drive playback and read the displayed state.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/joeycumines/walkthrough/internal/playback"
	"github.com/joeycumines/walkthrough/internal/script"
	"github.com/joeycumines/walkthrough/internal/surface"
)

const (
	serverName = "walkthrough"

	// ScenarioURI is the resource describing the loaded scenario.
	ScenarioURI = "walkthrough://scenario"
)

// EmptyInput is the input of tools that take no arguments.
type EmptyInput struct{}

// JumpInput is the input of walkthrough_jump.
type JumpInput struct {
	Step int `json:"step" jsonschema:"zero-based step index; -1 is the initial empty state, out of range values are clamped"`
}

// State is the result of every tool.
type State struct {
	Scenario string           `json:"scenario" jsonschema:"scenario name"`
	Title    string           `json:"title,omitempty" jsonschema:"scenario title"`
	Display  surface.Snapshot `json:"display" jsonschema:"everything currently displayed, plus the playback status"`
}

// ScenarioInfo is the content of the scenario resource.
type ScenarioInfo struct {
	Name        string         `json:"name"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	UserQuery   string         `json:"userQuery,omitempty"`
	Steps       int            `json:"steps"`
	Diagram     script.Diagram `json:"diagram"`
}

// Server binds one engine, and the board it drives, to an MCP server.
type Server struct {
	engine *playback.Engine
	board  *surface.Board
	meta   script.Meta
	logger *slog.Logger
	server *mcp.Server
}

// New registers the navigation tools, the state tool and the scenario
// resource. A nil logger discards.
func New(engine *playback.Engine, board *surface.Board, meta script.Meta, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		engine: engine,
		board:  board,
		meta:   meta,
		logger: logger,
		server: mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, nil),
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "walkthrough_advance",
		Description: "Moves to the next step and shows it as live. Does nothing at the last step.",
	}, navigate(s, "advance", func(EmptyInput) { s.engine.Advance() }))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "walkthrough_retreat",
		Description: "Moves back one step by replaying the walkthrough up to it.",
	}, navigate(s, "retreat", func(EmptyInput) { s.engine.Retreat() }))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "walkthrough_jump",
		Description: "Rebuilds the display for the given step, which is shown as live.",
	}, navigate(s, "jump", func(in JumpInput) { s.engine.JumpTo(in.Step) }))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "walkthrough_reset",
		Description: "Returns to the initial empty state.",
	}, navigate(s, "reset", func(EmptyInput) { s.engine.ResetToStart() }))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "walkthrough_autoplay",
		Description: "Starts autoplay, or stops it if it is running.",
	}, navigate(s, "autoplay", func(EmptyInput) { s.engine.ToggleAutoplay() }))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "walkthrough_state",
		Description: "Returns the displayed state without changing it.",
	}, navigate(s, "state", func(EmptyInput) {}))

	s.server.AddResource(&mcp.Resource{
		URI:         ScenarioURI,
		Name:        "scenario",
		Description: "The loaded scenario: metadata, step count and diagram layout.",
		MIMEType:    "application/json",
	}, s.readScenario)

	return s
}

// MCP returns the underlying server.
func (s *Server) MCP() *mcp.Server {
	return s.server
}

// Run serves on transport until ctx is done or the client disconnects.
// Cancellation is not an error.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	err := s.server.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// State returns the current tool result.
func (s *Server) State() State {
	return State{
		Scenario: s.meta.Name,
		Title:    s.meta.Title,
		Display:  s.board.Snapshot(),
	}
}

func navigate[In any](s *Server, op string, f func(In)) mcp.ToolHandlerFor[In, State] {
	return func(_ context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, State, error) {
		f(in)
		st := s.State()
		s.logger.Debug("mcp tool", "op", op, "step", st.Display.Status.Cursor)
		return nil, st, nil
	}
}

func (s *Server) readScenario(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(ScenarioInfo{
		Name:        s.meta.Name,
		Title:       s.meta.Title,
		Description: s.meta.Description,
		UserQuery:   s.meta.UserQuery,
		Steps:       s.engine.StepCount(),
		Diagram:     s.meta.Diagram,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal scenario: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
