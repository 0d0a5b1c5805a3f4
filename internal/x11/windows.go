package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// FindWindowByTitle searches the EWMH client list for a window whose
// _NET_WM_NAME (or WM_NAME) contains the given substring. Returns the first
// match.
func (c *Connection) FindWindowByTitle(substring string) (xproto.Window, error) {
	if substring == "" {
		return 0, fmt.Errorf("title is empty")
	}
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get client list: %w", err)
	}
	for _, win := range clients {
		if strings.Contains(c.windowTitle(win), substring) {
			return win, nil
		}
	}
	return 0, fmt.Errorf("no window found with title containing %q", substring)
}

// FindWindowByClass returns the first client whose WM_CLASS instance or
// class equals name (case-insensitive).
func (c *Connection) FindWindowByClass(name string) (xproto.Window, error) {
	if name == "" {
		return 0, fmt.Errorf("class is empty")
	}
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get client list: %w", err)
	}
	for _, win := range clients {
		wmClass, err := icccm.WmClassGet(c.XUtil, win)
		if err != nil {
			continue
		}
		if strings.EqualFold(wmClass.Class, name) || strings.EqualFold(wmClass.Instance, name) {
			return win, nil
		}
	}
	return 0, fmt.Errorf("no window found with class %q", name)
}

func (c *Connection) windowTitle(win xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, win); err == nil && strings.TrimSpace(title) != "" {
		return title
	}
	if title, err := icccm.WmNameGet(c.XUtil, win); err == nil {
		return title
	}
	return ""
}

// WindowExists reports whether win is still a managed client.
func (c *Connection) WindowExists(win xproto.Window) bool {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		// Without a client list fall back to asking the server directly.
		_, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply()
		return err == nil
	}
	for _, client := range clients {
		if client == win {
			return true
		}
	}
	return false
}

// WindowFrame returns the outer frame of win in root coordinates: the client
// area grown by the window manager's decorations.
func (c *Connection) WindowFrame(win xproto.Window) (Rect, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return Rect{}, fmt.Errorf("failed to get geometry of 0x%x: %w", win, err)
	}
	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), win, c.Root, 0, 0).Reply()
	if err != nil {
		return Rect{}, fmt.Errorf("failed to translate coordinates of 0x%x: %w", win, err)
	}

	left, right, top, bottom := c.frameExtents(win)
	return Rect{
		X:      int(translate.DstX) - left,
		Y:      int(translate.DstY) - top,
		Width:  int(geom.Width) + left + right,
		Height: int(geom.Height) + top + bottom,
	}, nil
}

// frameExtents returns the window decoration sizes, zero when unknown.
func (c *Connection) frameExtents(win xproto.Window) (left, right, top, bottom int) {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, win)
	if err != nil {
		return 0, 0, 0, 0
	}
	return int(extents.Left), int(extents.Right), int(extents.Top), int(extents.Bottom)
}

// MoveWindow moves the outer frame of win to (x, y). It asks the window
// manager first and falls back to configuring the window directly.
func (c *Connection) MoveWindow(win xproto.Window, x, y int) error {
	if err := ewmh.MoveWindow(c.XUtil, win, x, y); err != nil {
		left, _, top, _ := c.frameExtents(win)
		xwindow.New(c.XUtil, win).Move(x+left, y+top)
	}
	return nil
}

// WMName returns the name the running window manager advertises through
// _NET_SUPPORTING_WM_CHECK.
func (c *Connection) WMName() (string, error) {
	name, err := ewmh.GetEwmhWM(c.XUtil)
	if err != nil {
		return "", fmt.Errorf("failed to get window manager name: %w", err)
	}
	return name, nil
}

// SetStringProperty stores value as a UTF8_STRING property on win.
func (c *Connection) SetStringProperty(win xproto.Window, name, value string) error {
	if err := xprop.ChangeProp(c.XUtil, win, 8, name, "UTF8_STRING", []byte(value)); err != nil {
		return fmt.Errorf("failed to set %s on 0x%x: %w", name, win, err)
	}
	return nil
}
