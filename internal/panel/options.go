package panel

import (
	"time"

	"github.com/1broseidon/flickpanel/internal/geom"
	"github.com/1broseidon/flickpanel/internal/input"
	"github.com/1broseidon/flickpanel/internal/spring"
	"github.com/1broseidon/flickpanel/internal/target"
	"github.com/1broseidon/flickpanel/internal/velocity"
)

// AnyPage in ScrollPages allows scroll dragging on every page.
const AnyPage = "*"

// DefaultReleaseVelocityFraction scales the release velocity handed to the
// spring so hard flings do not overshoot.
const DefaultReleaseVelocityFraction = 0.3

// Options holds every tunable of a Controller.
type Options struct {
	Target target.Params
	Spring spring.Params

	ReleaseVelocityFraction float64

	ClickSlop         float64
	HistorySize       int
	VelocityWindow    int
	MinSampleInterval time.Duration
	ScrollSensitivity float64

	// ScrollPages lists the pages on which scroll gestures drag the panel.
	// Empty disables scroll dragging; AnyPage enables it everywhere.
	ScrollPages []string

	// NonDragRegions are panel-local rectangles that never start a drag.
	NonDragRegions []geom.Rect
	// BottomBand is the height of the reserved strip at the panel bottom.
	BottomBand float64
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		Target:                  target.DefaultParams(),
		Spring:                  spring.DefaultParams(),
		ReleaseVelocityFraction: DefaultReleaseVelocityFraction,
		ClickSlop:               input.DefaultClickSlop,
		HistorySize:             velocity.DefaultHistorySize,
		VelocityWindow:          velocity.DefaultWindow,
		MinSampleInterval:       velocity.DefaultMinInterval,
		ScrollSensitivity:       1,
		ScrollPages:             []string{AnyPage},
	}
}

// Callbacks are the notifications the controller sends to the UI layer.
// They run after the controller's lock is released, so they may call back
// into the controller.
type Callbacks struct {
	// OnDragStateChanged fires with false whenever a gesture begins.
	OnDragStateChanged func(isHovering bool)
	// OnEdgeHiddenChanged fires on every hide and restore transition.
	OnEdgeHiddenChanged func(isHidden bool)
	// PageProvider reports the host's current page. When nil the page set
	// with SetPage is used.
	PageProvider func() string
}

func pageAllowed(pages []string, page string) bool {
	for _, p := range pages {
		if p == AnyPage || p == page {
			return true
		}
	}
	return false
}
