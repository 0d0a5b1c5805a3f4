package panel

import "github.com/1broseidon/flickpanel/internal/geom"

// Status is a point-in-time snapshot of the controller.
type Status struct {
	Phase     string      `json:"phase"`
	Modality  string      `json:"modality,omitempty"`
	Hidden    bool        `json:"hidden"`
	Edge      string      `json:"edge"`
	Frame     geom.Rect   `json:"frame"`
	HaveFrame bool        `json:"have_frame"`
	Target    *geom.Point `json:"target,omitempty"`
	Page      string      `json:"page,omitempty"`
	Accent    string      `json:"accent,omitempty"`

	Regions    []geom.Rect `json:"regions,omitempty"`
	BottomBand float64     `json:"bottom_band"`
}

// Status returns a snapshot of the controller state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		Phase:     c.phaseLocked().String(),
		Hidden:    c.hidden,
		Edge:      c.edge.String(),
		Frame:     c.frame,
		HaveFrame: c.haveFrame,
		Page:      c.page,
		Accent:    c.accent,

		Regions:    append([]geom.Rect(nil), c.opts.NonDragRegions...),
		BottomBand: c.opts.BottomBand,
	}
	if c.dragging {
		st.Modality = c.modality.String()
	}
	if c.driver.IsAnimating() {
		t := c.driver.Target()
		st.Target = &t
	}
	return st
}
