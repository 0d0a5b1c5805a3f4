package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/flickpanel/internal/config"
	"github.com/1broseidon/flickpanel/internal/geom"
	"github.com/1broseidon/flickpanel/internal/panel"
	"github.com/1broseidon/flickpanel/internal/runtimepath"
	"github.com/1broseidon/flickpanel/internal/target"
	"github.com/lucasb-eyer/go-colorful"
)

// Panel is the controller surface driven over IPC.
type Panel interface {
	Status() panel.Status
	SnapToNearestCorner()
	HideToEdge(edge target.Edge)
	Restore()
	SetPage(page string)
	SetRegions(rects []geom.Rect, bottomBand *float64)
	SetAccent(hex string) error
}

// Hooks supplies the daemon-side pieces the server cannot own itself.
// Any of them may be nil.
type Hooks struct {
	// Window reports the current panel window, zero when unresolved.
	Window func() uint32
	// TilingActive reports the current tiling flag.
	TilingActive func() bool
	// Monitors lists the displays.
	Monitors func() ([]MonitorInfo, error)
	// AccentFromImage starts a dominant-color extraction and returns its
	// request generation.
	AccentFromImage func(path string) uint64
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	cfg          *config.Config
	configPath   string
	cfgMu        sync.RWMutex
	panel        Panel
	hooks        Hooks
	startTime    time.Time
	reloadChan   chan struct{}
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server. configPath is re-read on RELOAD.
func NewServer(cfg *config.Config, configPath string, p Panel, hooks Hooks, reloadChan chan struct{}) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		cfg:        cfg,
		configPath: configPath,
		panel:      p,
		hooks:      hooks,
		startTime:  time.Now(),
		reloadChan: reloadChan,
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// One JSON request per line.
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetMonitors:
		return s.handleGetMonitors()
	case CommandSnap:
		s.panel.SnapToNearestCorner()
		return s.handleGetStatus()
	case CommandHide:
		return s.handleHide(req.Payload)
	case CommandRestore:
		s.panel.Restore()
		return s.handleGetStatus()
	case CommandSetPage:
		return s.handleSetPage(req.Payload)
	case CommandSetRegions:
		return s.handleSetRegions(req.Payload)
	case CommandSetAccent:
		return s.handleSetAccent(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// handleReload re-reads the configuration file and tells the daemon to apply it.
func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")

	res, err := config.LoadFromPath(s.configPath)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}

	s.cfgMu.Lock()
	s.cfg = res.Config
	s.cfgMu.Unlock()

	// Notify the main daemon via channel (non-blocking)
	select {
	case s.reloadChan <- struct{}{}:
	default:
	}

	log.Println("IPC: Config reloaded successfully")

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleGetStatus() *Response {
	status := StatusData{
		Status:        s.panel.Status(),
		ConfigPath:    s.configPath,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
	}
	if s.hooks.Window != nil {
		status.Window = s.hooks.Window()
	}
	if s.hooks.TilingActive != nil {
		status.TilingActive = s.hooks.TilingActive()
	}

	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleGetMonitors() *Response {
	if s.hooks.Monitors == nil {
		return NewErrorResponse("monitor listing unavailable")
	}
	monitors, err := s.hooks.Monitors()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get monitors: %v", err))
	}

	resp, _ := NewOKResponse(MonitorsData{Monitors: monitors})
	return resp
}

func (s *Server) handleHide(payload json.RawMessage) *Response {
	var req HidePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid hide payload: %v", err))
	}
	edge, ok := target.ParseEdge(req.Edge)
	if !ok || edge == target.EdgeNone {
		return NewErrorResponse(fmt.Sprintf("edge must be left or right, got %q", req.Edge))
	}

	s.panel.HideToEdge(edge)
	return s.handleGetStatus()
}

func (s *Server) handleSetPage(payload json.RawMessage) *Response {
	var req SetPagePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid page payload: %v", err))
	}

	s.panel.SetPage(req.Page)
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleSetRegions(payload json.RawMessage) *Response {
	var req SetRegionsPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid regions payload: %v", err))
	}
	for i, r := range req.Regions {
		if r.Width <= 0 || r.Height <= 0 {
			return NewErrorResponse(fmt.Sprintf("region %d must have positive width and height", i))
		}
	}

	if req.BottomBand != nil && *req.BottomBand < 0 {
		return NewErrorResponse("bottom_band must be >= 0")
	}

	s.panel.SetRegions(req.Regions, req.BottomBand)
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleSetAccent(payload json.RawMessage) *Response {
	var req SetAccentPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid accent payload: %v", err))
	}
	if (req.Color == "") == (req.Image == "") {
		return NewErrorResponse("exactly one of color or image is required")
	}

	if req.Color != "" {
		c, err := colorful.Hex(req.Color)
		if err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid color %q: %v", req.Color, err))
		}
		hex := c.Hex()
		if err := s.panel.SetAccent(hex); err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to set accent: %v", err))
		}
		resp, _ := NewOKResponse(AccentData{Color: hex})
		return resp
	}

	if s.hooks.AccentFromImage == nil {
		return NewErrorResponse("accent extraction unavailable")
	}
	if _, err := os.Stat(req.Image); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid image: %v", err))
	}
	gen := s.hooks.AccentFromImage(req.Image)
	resp, _ := NewOKResponse(AccentData{Generation: gen})
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

// GetConfig returns the current config (thread-safe)
func (s *Server) GetConfig() *config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// UpdateConfig updates the config (thread-safe)
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	s.cfg = cfg
}
