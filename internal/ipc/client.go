package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/flickpanel/internal/geom"
	"github.com/1broseidon/flickpanel/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) send(cmd CommandType, payload any) (*Response, error) {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}
	return c.sendRequest(req)
}

func (c *Client) status(cmd CommandType, payload any) (*StatusData, error) {
	resp, err := c.send(cmd, payload)
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}
	return &status, nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	_, err := c.send(CommandReload, nil)
	return err
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	return c.status(CommandGetStatus, nil)
}

// GetMonitors retrieves monitor information
func (c *Client) GetMonitors() (*MonitorsData, error) {
	resp, err := c.send(CommandGetMonitors, nil)
	if err != nil {
		return nil, err
	}

	var monitors MonitorsData
	if err := json.Unmarshal(resp.Data, &monitors); err != nil {
		return nil, fmt.Errorf("failed to parse monitors data: %w", err)
	}

	return &monitors, nil
}

// Snap springs the panel to its nearest corner and returns the new status.
func (c *Client) Snap() (*StatusData, error) {
	return c.status(CommandSnap, nil)
}

// Hide parks the panel against edge ("left" or "right").
func (c *Client) Hide(edge string) (*StatusData, error) {
	return c.status(CommandHide, HidePayload{Edge: edge})
}

// Restore brings a hidden panel back on screen.
func (c *Client) Restore() (*StatusData, error) {
	return c.status(CommandRestore, nil)
}

// SetPage reports the host's current page.
func (c *Client) SetPage(page string) error {
	_, err := c.send(CommandSetPage, SetPagePayload{Page: page})
	return err
}

// SetRegions replaces the panel's non-draggable regions. A nil bottomBand
// leaves the band unchanged.
func (c *Client) SetRegions(regions []geom.Rect, bottomBand *float64) error {
	_, err := c.send(CommandSetRegions, SetRegionsPayload{Regions: regions, BottomBand: bottomBand})
	return err
}

// SetAccent sets the accent color directly or from an image.
func (c *Client) SetAccent(p SetAccentPayload) (*AccentData, error) {
	resp, err := c.send(CommandSetAccent, p)
	if err != nil {
		return nil, err
	}

	var data AccentData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse accent data: %w", err)
	}
	return &data, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
