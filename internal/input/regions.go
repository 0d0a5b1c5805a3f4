package input

import "github.com/1broseidon/flickpanel/internal/geom"

// Regions is a HitTester built from rectangles relative to the panel's
// origin plus a reserved band along the panel's bottom edge.
type Regions struct {
	// Frame returns the panel's current frame; false when unknown.
	Frame func() (geom.Rect, bool)
	// Rects are non-draggable areas in panel-local coordinates.
	Rects []geom.Rect
	// BottomBand is the height of the reserved strip at the bottom edge.
	BottomBand float64
}

// Interactive implements HitTester.
func (r *Regions) Interactive(p geom.Point) bool {
	if r == nil || r.Frame == nil {
		return false
	}
	frame, ok := r.Frame()
	if !ok || !frame.Contains(p) {
		return false
	}
	if r.BottomBand > 0 && p.Y >= frame.MaxY()-r.BottomBand {
		return true
	}
	local := geom.Point{X: p.X - frame.X, Y: p.Y - frame.Y}
	for _, rect := range r.Rects {
		if rect.Contains(local) {
			return true
		}
	}
	return false
}
