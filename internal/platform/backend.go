package platform

import "errors"

// ErrNoWindow is returned when no panel window has been resolved yet.
var ErrNoWindow = errors.New("panel window not resolved")

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Display describes a physical display and its usable work area.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
	Usable Rect
}

// Matcher selects the panel window. Title is a substring of the window
// title; Class matches WM_CLASS. Title is tried first.
type Matcher struct {
	Title string
	Class string
}

// Backend abstracts the window-system operations the panel needs.
type Backend interface {
	Displays() ([]Display, error)
	FindWindow(m Matcher) (WindowID, error)
	WindowExists(id WindowID) bool
	WindowBounds(id WindowID) (Rect, error)
	Move(id WindowID, x, y int) error
	// WMName returns the running window manager's advertised name.
	WMName() (string, error)
	SetProperty(id WindowID, name, value string) error
}
