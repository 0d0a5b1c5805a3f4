package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/1broseidon/flickpanel/internal/geom"
	"github.com/1broseidon/flickpanel/internal/ipc"
	"github.com/1broseidon/flickpanel/internal/panel"
)

type fakeDaemon struct {
	status ipc.StatusData
	err    error
	hides  []string
	pages  []string
	accent []ipc.SetAccentPayload
}

func (d *fakeDaemon) reply() (*ipc.StatusData, error) {
	if d.err != nil {
		return nil, d.err
	}
	st := d.status
	return &st, nil
}

func (d *fakeDaemon) GetStatus() (*ipc.StatusData, error) { return d.reply() }
func (d *fakeDaemon) Snap() (*ipc.StatusData, error)      { return d.reply() }
func (d *fakeDaemon) Restore() (*ipc.StatusData, error)   { return d.reply() }

func (d *fakeDaemon) Hide(edge string) (*ipc.StatusData, error) {
	d.hides = append(d.hides, edge)
	d.status.Hidden = true
	d.status.Edge = edge
	return d.reply()
}

func (d *fakeDaemon) SetPage(page string) error {
	d.pages = append(d.pages, page)
	return d.err
}

func (d *fakeDaemon) SetAccent(p ipc.SetAccentPayload) (*ipc.AccentData, error) {
	d.accent = append(d.accent, p)
	if d.err != nil {
		return nil, d.err
	}
	return &ipc.AccentData{Color: p.Color, Generation: 1}, nil
}

func TestPanelStatus(t *testing.T) {
	d := &fakeDaemon{status: ipc.StatusData{
		Status: panel.Status{
			Phase: "animating",
			Edge:  "none",
			Frame: geom.Rect{X: 10, Y: 20, Width: 300, Height: 200},
			Page:  "home",
		},
		Window:       99,
		TilingActive: true,
	}}
	s := NewServer(d)

	_, out, err := s.handlePanelStatus(context.Background(), nil, PanelStatusInput{})
	if err != nil {
		t.Fatalf("panel_status: %v", err)
	}
	if out.Phase != "animating" || out.Window != 99 || !out.TilingActive || out.Page != "home" {
		t.Fatalf("unexpected state %+v", out)
	}
	if out.Frame.Width != 300 {
		t.Fatalf("frame = %+v", out.Frame)
	}
}

func TestHidePanel_ValidatesEdge(t *testing.T) {
	d := &fakeDaemon{}
	s := NewServer(d)

	if _, _, err := s.handleHide(context.Background(), nil, HidePanelInput{Edge: "top"}); err == nil {
		t.Fatalf("hide with edge top succeeded")
	}
	if len(d.hides) != 0 {
		t.Fatalf("invalid edge reached the daemon: %v", d.hides)
	}

	_, out, err := s.handleHide(context.Background(), nil, HidePanelInput{Edge: "left"})
	if err != nil {
		t.Fatalf("hide_panel: %v", err)
	}
	if !out.Hidden || out.Edge != "left" {
		t.Fatalf("state after hide = %+v", out)
	}
}

func TestSetAccent_RequiresExactlyOneSource(t *testing.T) {
	d := &fakeDaemon{}
	s := NewServer(d)

	for _, in := range []SetAccentInput{{}, {Color: "#000000", Image: "/tmp/a.png"}} {
		if _, _, err := s.handleSetAccent(context.Background(), nil, in); err == nil {
			t.Fatalf("set_accent(%+v) succeeded", in)
		}
	}

	_, out, err := s.handleSetAccent(context.Background(), nil, SetAccentInput{Color: "#112233"})
	if err != nil {
		t.Fatalf("set_accent: %v", err)
	}
	if out.Color != "#112233" || len(d.accent) != 1 {
		t.Fatalf("out = %+v, calls = %d", out, len(d.accent))
	}
}

func TestDaemonErrorsAreWrapped(t *testing.T) {
	d := &fakeDaemon{err: errors.New("daemon error: boom")}
	s := NewServer(d)

	_, _, err := s.handleSnap(context.Background(), nil, SnapInput{})
	if err == nil || !strings.Contains(err.Error(), "snap failed") || !errors.Is(err, d.err) {
		t.Fatalf("snap error = %v", err)
	}
	if _, _, err := s.handleSetPage(context.Background(), nil, SetPageInput{Page: "x"}); err == nil {
		t.Fatalf("set_page error swallowed")
	}
}
