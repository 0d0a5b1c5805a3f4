package target

import (
	"testing"

	"github.com/1broseidon/flickpanel/internal/geom"
)

var screen = geom.Rect{X: 0, Y: 0, Width: 1000, Height: 800}

func TestSelect_QuadrantTieResolvesToMinY(t *testing.T) {
	frame := geom.Rect{X: 400, Y: 300, Width: 300, Height: 200}
	d := Select(Input{Frame: frame, Usable: screen, HasUsable: true}, DefaultParams())

	if d.Kind != KindCorner {
		t.Fatalf("Kind = %v, want corner", d.Kind)
	}
	// Center (550,400) vs midpoint (500,400): right of mid, tie on y.
	if d.Corner != (Corner{MaxX: true, MaxY: false}) {
		t.Fatalf("Corner = %v, want max-x/min-y", d.Corner)
	}
	want := geom.Point{X: 1000 - 300 - 16, Y: 16}
	if d.Target != want {
		t.Fatalf("Target = %+v, want %+v", d.Target, want)
	}
}

func TestSelect_CornerTargetsAreMarginOffset(t *testing.T) {
	frame := geom.Rect{Width: 300, Height: 200}
	p := DefaultParams()

	tests := []struct {
		name   string
		origin geom.Point
		want   geom.Point
	}{
		{"min/min", geom.Point{X: 10, Y: 10}, geom.Point{X: 16, Y: 16}},
		{"max/min", geom.Point{X: 650, Y: 10}, geom.Point{X: 684, Y: 16}},
		{"min/max", geom.Point{X: 10, Y: 550}, geom.Point{X: 16, Y: 584}},
		{"max/max", geom.Point{X: 650, Y: 550}, geom.Point{X: 684, Y: 584}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Input{Frame: frame.WithOrigin(tt.origin), Usable: screen, HasUsable: true}
			d := Select(in, p)
			if d.Target != tt.want {
				t.Fatalf("Target = %+v, want %+v", d.Target, tt.want)
			}
		})
	}
}

func TestSelect_VelocityProjectsAcrossMidline(t *testing.T) {
	// Sitting left of center, flung right hard enough that the projected
	// center crosses the midline.
	frame := geom.Rect{X: 300, Y: 100, Width: 300, Height: 200}
	in := Input{
		Frame:     frame,
		Velocity:  geom.Vec{X: 1000, Y: 0},
		Usable:    screen,
		HasUsable: true,
	}
	d := Select(in, DefaultParams())
	// Projected origin x = 300 + 120 = 420, center 570 > 500.
	if !d.Corner.MaxX {
		t.Fatalf("expected max-x corner, got %v", d.Corner)
	}

	in.Velocity = geom.Vec{}
	if d := Select(in, DefaultParams()); d.Corner.MaxX {
		t.Fatalf("without velocity expected min-x corner, got %v", d.Corner)
	}
}

func TestSelect_HideLeft(t *testing.T) {
	frame := geom.Rect{X: screen.MinX() - 5, Y: 100, Width: 300, Height: 200}
	in := Input{
		Frame:     frame,
		Velocity:  geom.Vec{X: -60, Y: 0},
		Usable:    screen,
		HasUsable: true,
	}
	d := Select(in, DefaultParams())
	if d.Kind != KindHideLeft {
		t.Fatalf("Kind = %v, want hide-left", d.Kind)
	}
	want := geom.Point{X: -300 + 20, Y: 16}
	if d.Target != want {
		t.Fatalf("Target = %+v, want %+v", d.Target, want)
	}
}

func TestSelect_HideLeftSuppressedByTilingMode(t *testing.T) {
	frame := geom.Rect{X: screen.MinX() - 5, Y: 100, Width: 300, Height: 200}
	in := Input{
		Frame:        frame,
		Velocity:     geom.Vec{X: -60, Y: 0},
		Usable:       screen,
		HasUsable:    true,
		TilingActive: true,
	}
	d := Select(in, DefaultParams())
	if d.Kind != KindCorner {
		t.Fatalf("Kind = %v, want corner", d.Kind)
	}
}

func TestSelect_HideRightIgnoresTilingMode(t *testing.T) {
	frame := geom.Rect{X: 1000 - 300 + 5, Y: 500, Width: 300, Height: 200}
	in := Input{
		Frame:        frame,
		Velocity:     geom.Vec{X: 80, Y: 10},
		Usable:       screen,
		HasUsable:    true,
		TilingActive: true,
	}
	d := Select(in, DefaultParams())
	if d.Kind != KindHideRight {
		t.Fatalf("Kind = %v, want hide-right", d.Kind)
	}
	want := geom.Point{X: 1000 - 20, Y: 800 - 200 - 16}
	if d.Target != want {
		t.Fatalf("Target = %+v, want %+v", d.Target, want)
	}
}

func TestSelect_HideThresholds(t *testing.T) {
	base := geom.Rect{X: 10, Y: 100, Width: 300, Height: 200}

	tests := []struct {
		name     string
		frame    geom.Rect
		velocity geom.Vec
		params   func(*Params)
		want     Kind
	}{
		{"too slow", base, geom.Vec{X: -50}, nil, KindCorner},
		{"fast enough", base, geom.Vec{X: -51}, nil, KindHideLeft},
		{"too far from edge", base.WithOrigin(geom.Point{X: 25, Y: 100}), geom.Vec{X: -200}, nil, KindCorner},
		{"vertical dominant", base, geom.Vec{X: -100, Y: 200}, nil, KindCorner},
		{"just horizontal dominant", base, geom.Vec{X: -100, Y: 124}, nil, KindHideLeft},
		{"wrong direction", base, geom.Vec{X: 200}, nil, KindCorner},
		{"feature disabled", base, geom.Vec{X: -200}, func(p *Params) { p.EdgeHide = false }, KindCorner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			if tt.params != nil {
				tt.params(&p)
			}
			d := Select(Input{Frame: tt.frame, Velocity: tt.velocity, Usable: screen, HasUsable: true}, p)
			if d.Kind != tt.want {
				t.Fatalf("Kind = %v, want %v", d.Kind, tt.want)
			}
		})
	}
}

func TestSelect_NoUsableArea(t *testing.T) {
	frame := geom.Rect{X: 42, Y: 24, Width: 300, Height: 200}
	d := Select(Input{Frame: frame, Velocity: geom.Vec{X: -500}}, DefaultParams())
	if d.Kind != KindNone {
		t.Fatalf("Kind = %v, want none", d.Kind)
	}
	if d.Target != frame.Origin() {
		t.Fatalf("Target = %+v, want frame origin", d.Target)
	}
}

func TestRestoreTarget_RoundTrip(t *testing.T) {
	p := DefaultParams()
	frame := geom.Rect{X: -5, Y: 550, Width: 300, Height: 200}

	d := Select(Input{Frame: frame, Velocity: geom.Vec{X: -400}, Usable: screen, HasUsable: true}, p)
	if d.Kind != KindHideLeft {
		t.Fatalf("Kind = %v, want hide-left", d.Kind)
	}
	hidden := frame.WithOrigin(d.Target)

	restored := hidden.WithOrigin(RestoreTarget(hidden, screen, EdgeLeft, p))
	if !screen.ContainsRect(restored) {
		t.Fatalf("restored frame %+v not inside %+v", restored, screen)
	}
	if restored.X != p.CornerMargin {
		t.Fatalf("restored X = %v, want margin %v", restored.X, p.CornerMargin)
	}
	if (restored.MidY() > screen.MidY()) != (frame.MidY() > screen.MidY()) {
		t.Fatalf("restored frame changed vertical half: before %v after %v", frame.MidY(), restored.MidY())
	}
}

func TestNearestCorner_StrictComparisons(t *testing.T) {
	// Centered exactly on the midpoint on both axes.
	frame := geom.Rect{X: 350, Y: 300, Width: 300, Height: 200}
	if c := NearestCorner(frame, screen); c.MaxX || c.MaxY {
		t.Fatalf("NearestCorner = %v, want min-x/min-y on a tie", c)
	}
}
