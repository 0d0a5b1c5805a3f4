package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/flickpanel/internal/geom"
	"github.com/1broseidon/flickpanel/internal/panel"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload      CommandType = "RELOAD"
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandGetMonitors CommandType = "GET_MONITORS"
	CommandSnap        CommandType = "SNAP"
	CommandHide        CommandType = "HIDE"
	CommandRestore     CommandType = "RESTORE"
	CommandSetPage     CommandType = "SET_PAGE"
	CommandSetRegions  CommandType = "SET_REGIONS"
	CommandSetAccent   CommandType = "SET_ACCENT"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	panel.Status
	Window        uint32 `json:"window"`
	TilingActive  bool   `json:"tiling_active"`
	ConfigPath    string `json:"config_path,omitempty"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	DaemonRunning bool   `json:"daemon_running"`
}

// MonitorInfo represents information about a single monitor
type MonitorInfo struct {
	ID     int       `json:"id"`
	Name   string    `json:"name"`
	Bounds geom.Rect `json:"bounds"`
	Usable geom.Rect `json:"usable"`
}

// MonitorsData represents the data returned by GET_MONITORS
type MonitorsData struct {
	Monitors []MonitorInfo `json:"monitors"`
}

// HidePayload is the payload for HIDE. Edge is "left" or "right".
type HidePayload struct {
	Edge string `json:"edge"`
}

// SetPagePayload is the payload for SET_PAGE.
type SetPagePayload struct {
	Page string `json:"page"`
}

// SetRegionsPayload is the payload for SET_REGIONS. Regions are
// panel-local; a nil BottomBand keeps the current band.
type SetRegionsPayload struct {
	Regions    []geom.Rect `json:"regions"`
	BottomBand *float64    `json:"bottom_band,omitempty"`
}

// SetAccentPayload is the payload for SET_ACCENT. Exactly one of Color
// (a #rrggbb hex) or Image (a path to extract the dominant color from)
// must be set.
type SetAccentPayload struct {
	Color string `json:"color,omitempty"`
	Image string `json:"image,omitempty"`
}

// AccentData is returned by SET_ACCENT.
type AccentData struct {
	Color      string `json:"color,omitempty"`
	Generation uint64 `json:"generation,omitempty"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
