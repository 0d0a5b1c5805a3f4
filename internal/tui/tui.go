// Package tui is an interactive console for a running flickpanel daemon. It
// shows live panel state, edits the physics and targeting settings, and
// manages the non-drag regions.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/flickpanel/internal/config"
	"github.com/1broseidon/flickpanel/internal/geom"
	"github.com/1broseidon/flickpanel/internal/ipc"
)

// Daemon is the part of the IPC client the console drives.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	GetMonitors() (*ipc.MonitorsData, error)
	Snap() (*ipc.StatusData, error)
	Hide(edge string) (*ipc.StatusData, error)
	Restore() (*ipc.StatusData, error)
	Reload() error
	SetPage(page string) error
	SetRegions(regions []geom.Rect, bottomBand *float64) error
}

// Run starts the console. Settings are saved to configPath, or to the
// default location when it is empty.
func Run(configPath string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	if configPath == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return err
		}
		configPath = p
	}

	m := newModel(configPath, ipc.NewClient())
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
