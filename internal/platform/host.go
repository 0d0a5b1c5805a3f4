package platform

import (
	"math"
	"sync"

	"github.com/1broseidon/flickpanel/internal/geom"
)

// AccentProperty is the window property the accent color is published on.
const AccentProperty = "_FLICKPANEL_ACCENT"

// PanelHost exposes one window of a Backend as the panel's host. The window
// can be swapped at runtime when it is re-resolved.
type PanelHost struct {
	backend Backend
	tiling  func() bool

	mu     sync.Mutex
	window WindowID
}

// NewPanelHost creates a host with no window. tiling reports whether a
// tiling layout owns the left edge; nil means never.
func NewPanelHost(backend Backend, tiling func() bool) *PanelHost {
	return &PanelHost{backend: backend, tiling: tiling}
}

// SetWindow switches the host to id; zero clears it.
func (h *PanelHost) SetWindow(id WindowID) {
	h.mu.Lock()
	h.window = id
	h.mu.Unlock()
}

// Window returns the current panel window, zero when unresolved.
func (h *PanelHost) Window() WindowID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.window
}

// UsableArea returns the work area of the display the frame belongs to.
func (h *PanelHost) UsableArea(frame geom.Rect) (geom.Rect, bool) {
	displays, err := h.backend.Displays()
	if err != nil {
		return geom.Rect{}, false
	}
	d, ok := DisplayFor(displays, toRect(frame))
	if !ok {
		return geom.Rect{}, false
	}
	return toGeom(d.Usable), true
}

// Frame returns the window's outer frame.
func (h *PanelHost) Frame() (geom.Rect, bool) {
	id := h.Window()
	if id == 0 {
		return geom.Rect{}, false
	}
	r, err := h.backend.WindowBounds(id)
	if err != nil {
		return geom.Rect{}, false
	}
	return toGeom(r), true
}

// SetOrigin moves the window, rounding to whole pixels.
func (h *PanelHost) SetOrigin(p geom.Point) error {
	id := h.Window()
	if id == 0 {
		return ErrNoWindow
	}
	return h.backend.Move(id, int(math.Round(p.X)), int(math.Round(p.Y)))
}

// TilingActive reports the host tiling flag.
func (h *PanelHost) TilingActive() bool {
	return h.tiling != nil && h.tiling()
}

// SetAccent publishes the accent color on the panel window.
func (h *PanelHost) SetAccent(hex string) error {
	id := h.Window()
	if id == 0 {
		return ErrNoWindow
	}
	return h.backend.SetProperty(id, AccentProperty, hex)
}

// DisplayFor picks the display a window belongs to: the one containing its
// center, else the one it overlaps most, else the nearest one. The last
// rule keeps a panel parked mostly off-screen attached to a display.
func DisplayFor(displays []Display, r Rect) (Display, bool) {
	if len(displays) == 0 {
		return Display{}, false
	}
	cx := r.X + r.Width/2
	cy := r.Y + r.Height/2
	for _, d := range displays {
		if containsPoint(d.Bounds, cx, cy) {
			return d, true
		}
	}

	best, bestArea := -1, 0
	for i, d := range displays {
		if a := overlapArea(d.Bounds, r); a > bestArea {
			best, bestArea = i, a
		}
	}
	if best >= 0 {
		return displays[best], true
	}

	best = 0
	bestDist := math.Inf(1)
	for i, d := range displays {
		dx := float64(d.Bounds.X + d.Bounds.Width/2 - cx)
		dy := float64(d.Bounds.Y + d.Bounds.Height/2 - cy)
		if dist := math.Hypot(dx, dy); dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return displays[best], true
}

func containsPoint(r Rect, x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

func overlapArea(a, b Rect) int {
	w := min(a.X+a.Width, b.X+b.Width) - max(a.X, b.X)
	h := min(a.Y+a.Height, b.Y+b.Height) - max(a.Y, b.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

func toGeom(r Rect) geom.Rect {
	return geom.Rect{X: float64(r.X), Y: float64(r.Y), Width: float64(r.Width), Height: float64(r.Height)}
}

func toRect(r geom.Rect) Rect {
	return Rect{
		X:      int(math.Round(r.X)),
		Y:      int(math.Round(r.Y)),
		Width:  int(math.Round(r.Width)),
		Height: int(math.Round(r.Height)),
	}
}
