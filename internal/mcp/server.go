// Package mcp exposes the running daemon's panel commands as MCP tools.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/flickpanel/internal/ipc"
)

const (
	ServerName    = "flickpanel"
	ServerVersion = "0.1.0"
)

// Daemon is the IPC surface the tools proxy to. *ipc.Client implements it.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	Snap() (*ipc.StatusData, error)
	Hide(edge string) (*ipc.StatusData, error)
	Restore() (*ipc.StatusData, error)
	SetPage(page string) error
	SetAccent(p ipc.SetAccentPayload) (*ipc.AccentData, error)
}

// Server is the MCP server for panel control.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
}

// NewServer creates a new MCP server that talks to the daemon.
func NewServer(daemon Daemon) *Server {
	s := &Server{daemon: daemon}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "panel_status",
		Description: "Report the floating panel's state: phase (idle, dragging, animating), frame, whether it is parked against an edge, the current page and accent color.",
	}, s.handlePanelStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "snap_to_corner",
		Description: "Spring the panel into the nearest corner of its work area. A panel parked against an edge is restored instead. Ignored while the user is dragging.",
	}, s.handleSnap)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "hide_panel",
		Description: "Park the panel against the left or right screen edge, leaving a thin sliver visible. Clicking the sliver or calling restore_panel brings it back. Hiding left is refused while a tiling layout owns that edge.",
	}, s.handleHide)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "restore_panel",
		Description: "Bring a panel parked against an edge back on screen.",
	}, s.handleRestore)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_page",
		Description: "Tell the daemon which page the panel is showing. Scroll gestures only drag the panel on configured pages.",
	}, s.handleSetPage)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_accent",
		Description: "Set the panel accent color, either directly (color) or from the dominant color of an image (image). Exactly one must be given.",
	}, s.handleSetAccent)
}
