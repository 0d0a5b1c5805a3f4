package platform

import (
	"errors"
	"testing"

	"github.com/1broseidon/flickpanel/internal/geom"
)

type fakeBackend struct {
	displays []Display
	bounds   map[WindowID]Rect
	moves    []Rect
	props    map[string]string
	moveErr  error
}

func (f *fakeBackend) Displays() ([]Display, error) { return f.displays, nil }
func (f *fakeBackend) FindWindow(Matcher) (WindowID, error) {
	return 0, errors.New("not found")
}
func (f *fakeBackend) WindowExists(id WindowID) bool { _, ok := f.bounds[id]; return ok }
func (f *fakeBackend) WindowBounds(id WindowID) (Rect, error) {
	r, ok := f.bounds[id]
	if !ok {
		return Rect{}, errors.New("no such window")
	}
	return r, nil
}
func (f *fakeBackend) Move(id WindowID, x, y int) error {
	if f.moveErr != nil {
		return f.moveErr
	}
	r := f.bounds[id]
	r.X, r.Y = x, y
	f.bounds[id] = r
	f.moves = append(f.moves, r)
	return nil
}
func (f *fakeBackend) WMName() (string, error) { return "i3", nil }
func (f *fakeBackend) SetProperty(id WindowID, name, value string) error {
	if f.props == nil {
		f.props = map[string]string{}
	}
	f.props[name] = value
	return nil
}

var twoHeads = []Display{
	{ID: 0, Name: "left", Bounds: Rect{0, 0, 1920, 1080}, Usable: Rect{0, 30, 1920, 1050}},
	{ID: 1, Name: "right", Bounds: Rect{1920, 0, 1280, 1024}, Usable: Rect{1920, 0, 1280, 1024}},
}

func TestDisplayFor(t *testing.T) {
	tests := []struct {
		name string
		rect Rect
		want string
	}{
		{"center on left", Rect{100, 100, 300, 200}, "left"},
		{"center on right", Rect{2000, 100, 300, 200}, "right"},
		{"straddling, center decides", Rect{1800, 100, 300, 200}, "right"},
		{"parked past right edge", Rect{3180, 100, 300, 200}, "right"},
		{"parked past left edge", Rect{-280, 100, 300, 200}, "left"},
		{"fully off-screen, nearest", Rect{-2000, 5000, 300, 200}, "left"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := DisplayFor(twoHeads, tt.rect)
			if !ok {
				t.Fatalf("DisplayFor returned no display")
			}
			if d.Name != tt.want {
				t.Fatalf("DisplayFor(%+v) = %q, want %q", tt.rect, d.Name, tt.want)
			}
		})
	}

	if _, ok := DisplayFor(nil, Rect{0, 0, 10, 10}); ok {
		t.Fatalf("expected no display for empty list")
	}
}

func TestPanelHost_NoWindow(t *testing.T) {
	h := NewPanelHost(&fakeBackend{displays: twoHeads}, nil)
	if _, ok := h.Frame(); ok {
		t.Fatalf("Frame reported a window before one was set")
	}
	if err := h.SetOrigin(geom.Point{X: 1, Y: 2}); !errors.Is(err, ErrNoWindow) {
		t.Fatalf("SetOrigin error = %v, want ErrNoWindow", err)
	}
	if err := h.SetAccent("#ffffff"); !errors.Is(err, ErrNoWindow) {
		t.Fatalf("SetAccent error = %v, want ErrNoWindow", err)
	}
	if h.TilingActive() {
		t.Fatalf("nil tiling func should report false")
	}
}

func TestPanelHost_FrameAndMove(t *testing.T) {
	b := &fakeBackend{
		displays: twoHeads,
		bounds:   map[WindowID]Rect{7: {100, 100, 300, 200}},
	}
	tiling := true
	h := NewPanelHost(b, func() bool { return tiling })
	h.SetWindow(7)

	frame, ok := h.Frame()
	if !ok || frame != (geom.Rect{X: 100, Y: 100, Width: 300, Height: 200}) {
		t.Fatalf("Frame = %+v, %v", frame, ok)
	}

	area, ok := h.UsableArea(frame)
	if !ok || area != (geom.Rect{X: 0, Y: 30, Width: 1920, Height: 1050}) {
		t.Fatalf("UsableArea = %+v, %v", area, ok)
	}

	if err := h.SetOrigin(geom.Point{X: 10.4, Y: 20.6}); err != nil {
		t.Fatalf("SetOrigin: %v", err)
	}
	if got := b.moves[len(b.moves)-1]; got.X != 10 || got.Y != 21 {
		t.Fatalf("moved to (%d,%d), want (10,21)", got.X, got.Y)
	}

	if !h.TilingActive() {
		t.Fatalf("TilingActive = false, want true")
	}
	tiling = false
	if h.TilingActive() {
		t.Fatalf("TilingActive did not follow the query")
	}

	if err := h.SetAccent("#336699"); err != nil {
		t.Fatalf("SetAccent: %v", err)
	}
	if got := b.props[AccentProperty]; got != "#336699" {
		t.Fatalf("accent property = %q", got)
	}
}

func TestPanelHost_MoveErrorPropagates(t *testing.T) {
	b := &fakeBackend{
		displays: twoHeads,
		bounds:   map[WindowID]Rect{7: {100, 100, 300, 200}},
		moveErr:  errors.New("bad window"),
	}
	h := NewPanelHost(b, nil)
	h.SetWindow(7)
	if err := h.SetOrigin(geom.Point{}); err == nil {
		t.Fatalf("expected move error")
	}
}
