package mcp

import "github.com/1broseidon/flickpanel/internal/geom"

// PanelStatusInput is the input for the panel_status tool.
type PanelStatusInput struct{}

// PanelState is the output shared by the panel tools.
type PanelState struct {
	Phase        string      `json:"phase" jsonschema:"Controller phase: idle, dragging or animating"`
	Hidden       bool        `json:"hidden" jsonschema:"True when the panel is parked against a screen edge"`
	Edge         string      `json:"edge" jsonschema:"Edge the panel is parked against: none, left or right"`
	Frame        geom.Rect   `json:"frame" jsonschema:"Panel frame in screen pixels"`
	Target       *geom.Point `json:"target,omitempty" jsonschema:"Destination of the running animation, if any"`
	Page         string      `json:"page,omitempty" jsonschema:"Current page reported by the host"`
	Accent       string      `json:"accent,omitempty" jsonschema:"Current accent color as #rrggbb"`
	Window       uint32      `json:"window" jsonschema:"X11 window id of the panel, 0 when not found"`
	TilingActive bool        `json:"tiling_active" jsonschema:"True when a tiling layout owns the left edge"`
}

// SnapInput is the input for the snap_to_corner tool.
type SnapInput struct{}

// HidePanelInput is the input for the hide_panel tool.
type HidePanelInput struct {
	Edge string `json:"edge" jsonschema:"required,Edge to park the panel against: left or right"`
}

// RestorePanelInput is the input for the restore_panel tool.
type RestorePanelInput struct{}

// SetPageInput is the input for the set_page tool.
type SetPageInput struct {
	Page string `json:"page" jsonschema:"required,Name of the page the panel is showing; scroll dragging is limited to configured pages"`
}

// SetPageOutput is the output for the set_page tool.
type SetPageOutput struct {
	Page string `json:"page"`
}

// SetAccentInput is the input for the set_accent tool.
type SetAccentInput struct {
	Color string `json:"color,omitempty" jsonschema:"Accent color as #rrggbb"`
	Image string `json:"image,omitempty" jsonschema:"Path of an image whose dominant color becomes the accent"`
}

// SetAccentOutput is the output for the set_accent tool.
type SetAccentOutput struct {
	Color      string `json:"color,omitempty"`
	Generation uint64 `json:"generation,omitempty"`
}
