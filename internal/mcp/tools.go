package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/flickpanel/internal/ipc"
	"github.com/1broseidon/flickpanel/internal/target"
)

func (s *Server) handlePanelStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ PanelStatusInput) (*mcpsdk.CallToolResult, PanelState, error) {
	st, err := s.daemon.GetStatus()
	if err != nil {
		return nil, PanelState{}, err
	}
	return nil, panelState(st), nil
}

func (s *Server) handleSnap(_ context.Context, _ *mcpsdk.CallToolRequest, _ SnapInput) (*mcpsdk.CallToolResult, PanelState, error) {
	st, err := s.daemon.Snap()
	if err != nil {
		return nil, PanelState{}, fmt.Errorf("snap failed: %w", err)
	}
	return nil, panelState(st), nil
}

func (s *Server) handleHide(_ context.Context, _ *mcpsdk.CallToolRequest, args HidePanelInput) (*mcpsdk.CallToolResult, PanelState, error) {
	edge, ok := target.ParseEdge(args.Edge)
	if !ok {
		return nil, PanelState{}, fmt.Errorf("edge must be left or right, got %q", args.Edge)
	}
	st, err := s.daemon.Hide(edge.String())
	if err != nil {
		return nil, PanelState{}, fmt.Errorf("hide failed: %w", err)
	}
	return nil, panelState(st), nil
}

func (s *Server) handleRestore(_ context.Context, _ *mcpsdk.CallToolRequest, _ RestorePanelInput) (*mcpsdk.CallToolResult, PanelState, error) {
	st, err := s.daemon.Restore()
	if err != nil {
		return nil, PanelState{}, fmt.Errorf("restore failed: %w", err)
	}
	return nil, panelState(st), nil
}

func (s *Server) handleSetPage(_ context.Context, _ *mcpsdk.CallToolRequest, args SetPageInput) (*mcpsdk.CallToolResult, SetPageOutput, error) {
	if err := s.daemon.SetPage(args.Page); err != nil {
		return nil, SetPageOutput{}, fmt.Errorf("set_page failed: %w", err)
	}
	return nil, SetPageOutput{Page: args.Page}, nil
}

func (s *Server) handleSetAccent(_ context.Context, _ *mcpsdk.CallToolRequest, args SetAccentInput) (*mcpsdk.CallToolResult, SetAccentOutput, error) {
	if (args.Color == "") == (args.Image == "") {
		return nil, SetAccentOutput{}, fmt.Errorf("exactly one of color or image is required")
	}
	data, err := s.daemon.SetAccent(ipc.SetAccentPayload{Color: args.Color, Image: args.Image})
	if err != nil {
		return nil, SetAccentOutput{}, fmt.Errorf("set_accent failed: %w", err)
	}
	return nil, SetAccentOutput{Color: data.Color, Generation: data.Generation}, nil
}

func panelState(st *ipc.StatusData) PanelState {
	return PanelState{
		Phase:        st.Phase,
		Hidden:       st.Hidden,
		Edge:         st.Edge,
		Frame:        st.Frame,
		Target:       st.Target,
		Page:         st.Page,
		Accent:       st.Accent,
		Window:       st.Window,
		TilingActive: st.TilingActive,
	}
}
