// Package target decides where a released panel should settle.
//
// Everything here is pure: callers pass in the frame, the release velocity,
// the usable work area and the host flags, and get a destination back.
package target

import (
	"math"

	"github.com/1broseidon/flickpanel/internal/geom"
)

// Edge identifies a vertical screen edge the panel can park against.
type Edge int

const (
	EdgeNone Edge = iota
	EdgeLeft
	EdgeRight
)

// String returns the string representation of the edge.
func (e Edge) String() string {
	switch e {
	case EdgeNone:
		return "none"
	case EdgeLeft:
		return "left"
	case EdgeRight:
		return "right"
	default:
		return "unknown"
	}
}

// ParseEdge converts "left"/"right" into an Edge.
func ParseEdge(s string) (Edge, bool) {
	switch s {
	case "left":
		return EdgeLeft, true
	case "right":
		return EdgeRight, true
	default:
		return EdgeNone, false
	}
}

// Kind is the outcome of a selection.
type Kind int

const (
	// KindNone means no destination could be computed (no usable area).
	KindNone Kind = iota
	KindCorner
	KindHideLeft
	KindHideRight
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindCorner:
		return "corner"
	case KindHideLeft:
		return "hide-left"
	case KindHideRight:
		return "hide-right"
	default:
		return "unknown"
	}
}

// Edge returns the edge a hide decision parks against.
func (k Kind) Edge() Edge {
	switch k {
	case KindHideLeft:
		return EdgeLeft
	case KindHideRight:
		return EdgeRight
	default:
		return EdgeNone
	}
}

// Corner names one of the four work-area corners by axis extreme.
// MaxY is the larger-y half, which is the lower half in X11 screen space.
type Corner struct {
	MaxX bool
	MaxY bool
}

// String returns a compact corner name such as "min-x/max-y".
func (c Corner) String() string {
	x, y := "min-x", "min-y"
	if c.MaxX {
		x = "max-x"
	}
	if c.MaxY {
		y = "max-y"
	}
	return x + "/" + y
}

// Params holds the tunable thresholds.
type Params struct {
	// CornerMargin is the inset from the work-area edges for corner and
	// restore targets.
	CornerMargin float64
	// ProjectionFactor scales the release velocity into a landing offset.
	ProjectionFactor float64
	// EdgeHide enables the hide-to-edge decisions.
	EdgeHide bool
	// EdgeThreshold is how close the frame edge must be to the work-area edge.
	EdgeThreshold float64
	// EdgeMinVelocity is the horizontal speed (px/s) a hide fling must exceed.
	EdgeMinVelocity float64
	// HorizontalDominance is the minimum |vx|/|vy| ratio for a hide fling.
	HorizontalDominance float64
	// VisibleWidth is how much of a hidden panel stays on screen.
	VisibleWidth float64
}

// DefaultParams returns the stock thresholds.
func DefaultParams() Params {
	return Params{
		CornerMargin:        16,
		ProjectionFactor:    0.12,
		EdgeHide:            true,
		EdgeThreshold:       20,
		EdgeMinVelocity:     50,
		HorizontalDominance: 0.8,
		VisibleWidth:        20,
	}
}

// Input is everything a selection depends on.
type Input struct {
	Frame    geom.Rect
	Velocity geom.Vec
	// Usable is the work area of the screen the panel is on. HasUsable is
	// false when no screen could be resolved.
	Usable    geom.Rect
	HasUsable bool
	// TilingActive suppresses hide-left, mirroring a host tiling mode that
	// owns the left edge.
	TilingActive bool
}

// Decision is the chosen destination.
type Decision struct {
	Kind   Kind
	Target geom.Point
	Corner Corner
}

// Select picks the destination for a released panel. Edge-hide takes
// precedence over corner snapping.
func Select(in Input, p Params) Decision {
	if !in.HasUsable || in.Usable.Empty() {
		return Decision{Kind: KindNone, Target: in.Frame.Origin()}
	}

	if edge := hideEdge(in, p); edge != EdgeNone {
		kind := KindHideLeft
		if edge == EdgeRight {
			kind = KindHideRight
		}
		return Decision{
			Kind:   kind,
			Target: HideTarget(in.Frame, in.Usable, edge, p),
			Corner: Corner{MaxX: edge == EdgeRight, MaxY: in.Frame.MidY() > in.Usable.MidY()},
		}
	}

	projected := in.Frame.WithOrigin(in.Frame.Origin().Add(in.Velocity.Scale(p.ProjectionFactor)))
	c := NearestCorner(projected, in.Usable)
	return Decision{
		Kind:   KindCorner,
		Target: CornerTarget(in.Frame, in.Usable, c, p.CornerMargin),
		Corner: c,
	}
}

func hideEdge(in Input, p Params) Edge {
	if !p.EdgeHide {
		return EdgeNone
	}
	vx, vy := in.Velocity.X, in.Velocity.Y
	if math.Abs(vx) <= p.HorizontalDominance*math.Abs(vy) {
		return EdgeNone
	}

	nearLeft := in.Frame.MinX() <= in.Usable.MinX()+p.EdgeThreshold
	if nearLeft && vx < -p.EdgeMinVelocity && !in.TilingActive {
		return EdgeLeft
	}

	nearRight := in.Frame.MaxX() >= in.Usable.MaxX()-p.EdgeThreshold
	if nearRight && vx > p.EdgeMinVelocity {
		return EdgeRight
	}
	return EdgeNone
}

// NearestCorner classifies frame's center against the work-area midpoint.
// Both comparisons are strict, so a tie lands on the min side.
func NearestCorner(frame, usable geom.Rect) Corner {
	return Corner{
		MaxX: frame.MidX() > usable.MidX(),
		MaxY: frame.MidY() > usable.MidY(),
	}
}

// CornerTarget returns the origin that puts frame into corner c, inset by
// margin on both axes.
func CornerTarget(frame, usable geom.Rect, c Corner, margin float64) geom.Point {
	return geom.Point{
		X: cornerAxis(c.MaxX, usable.MinX(), usable.MaxX(), frame.Width, margin),
		Y: cornerAxis(c.MaxY, usable.MinY(), usable.MaxY(), frame.Height, margin),
	}
}

func cornerAxis(max bool, lo, hi, size, margin float64) float64 {
	if max {
		return hi - size - margin
	}
	return lo + margin
}

// HideTarget returns the origin that parks frame against edge with only
// VisibleWidth of it left inside the work area. Vertically the frame keeps
// to whichever half its center is already in.
func HideTarget(frame, usable geom.Rect, edge Edge, p Params) geom.Point {
	y := cornerAxis(frame.MidY() > usable.MidY(), usable.MinY(), usable.MaxY(), frame.Height, p.CornerMargin)
	switch edge {
	case EdgeRight:
		return geom.Point{X: usable.MaxX() - p.VisibleWidth, Y: y}
	default:
		return geom.Point{X: usable.MinX() - frame.Width + p.VisibleWidth, Y: y}
	}
}

// RestoreTarget pulls a hidden frame back fully inside the work area at the
// corner margin, on the side it was hidden against and in the same vertical
// half.
func RestoreTarget(frame, usable geom.Rect, edge Edge, p Params) geom.Point {
	c := Corner{
		MaxX: edge == EdgeRight,
		MaxY: frame.MidY() > usable.MidY(),
	}
	return CornerTarget(frame, usable, c, p.CornerMargin)
}
