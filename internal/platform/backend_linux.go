//go:build linux

package platform

import (
	"fmt"
	"sort"

	"github.com/1broseidon/flickpanel/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay(display string) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Connection returns the underlying X11 connection.
func (b *LinuxBackend) Connection() *x11.Connection {
	if b == nil {
		return nil
	}
	return b.conn
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// Quit stops the X11 event loop.
func (b *LinuxBackend) Quit() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Displays returns all active displays.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{
			ID:     m.ID,
			Name:   m.Name,
			Bounds: Rect(m.Bounds),
			Usable: Rect(m.Usable),
		})
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})

	return displays, nil
}

// FindWindow resolves the panel window by title, then by WM_CLASS.
func (b *LinuxBackend) FindWindow(m Matcher) (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}

	var titleErr error
	if m.Title != "" {
		win, err := conn.FindWindowByTitle(m.Title)
		if err == nil {
			return WindowID(win), nil
		}
		titleErr = err
	}
	if m.Class != "" {
		win, err := conn.FindWindowByClass(m.Class)
		if err == nil {
			return WindowID(win), nil
		}
		return 0, err
	}
	if titleErr != nil {
		return 0, titleErr
	}
	return 0, fmt.Errorf("no panel matcher configured")
}

// WindowExists reports whether the window is still managed.
func (b *LinuxBackend) WindowExists(id WindowID) bool {
	conn, err := b.connection()
	if err != nil {
		return false
	}
	return conn.WindowExists(xproto.Window(id))
}

// WindowBounds returns the outer frame of the window.
func (b *LinuxBackend) WindowBounds(id WindowID) (Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return Rect{}, err
	}
	r, err := conn.WindowFrame(xproto.Window(id))
	if err != nil {
		return Rect{}, err
	}
	return Rect(r), nil
}

// Move moves the window's outer frame to (x, y).
func (b *LinuxBackend) Move(id WindowID, x, y int) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.MoveWindow(xproto.Window(id), x, y)
}

// WMName returns the EWMH window manager name.
func (b *LinuxBackend) WMName() (string, error) {
	conn, err := b.connection()
	if err != nil {
		return "", err
	}
	return conn.WMName()
}

// SetProperty stores a string property on the window.
func (b *LinuxBackend) SetProperty(id WindowID, name, value string) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.SetStringProperty(xproto.Window(id), name, value)
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}
