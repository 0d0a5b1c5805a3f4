package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/flickpanel/internal/config"
	"github.com/1broseidon/flickpanel/internal/geom"
	"github.com/1broseidon/flickpanel/internal/ipc"
	"github.com/1broseidon/flickpanel/internal/panel"
)

type fakeDaemon struct {
	mu       sync.Mutex
	calls    []string
	regions  []geom.Rect
	band     float64
	page     string
	statusFn func() (*ipc.StatusData, error)
}

func (f *fakeDaemon) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeDaemon) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	if f.statusFn != nil {
		return f.statusFn()
	}
	return &ipc.StatusData{Status: panel.Status{Phase: "idle"}, DaemonRunning: true}, nil
}

func (f *fakeDaemon) GetMonitors() (*ipc.MonitorsData, error) {
	return &ipc.MonitorsData{}, nil
}

func (f *fakeDaemon) Snap() (*ipc.StatusData, error) {
	f.record("snap")
	return f.GetStatus()
}

func (f *fakeDaemon) Hide(edge string) (*ipc.StatusData, error) {
	f.record("hide " + edge)
	return f.GetStatus()
}

func (f *fakeDaemon) Restore() (*ipc.StatusData, error) {
	f.record("restore")
	return f.GetStatus()
}

func (f *fakeDaemon) Reload() error {
	f.record("reload")
	return nil
}

func (f *fakeDaemon) SetPage(page string) error {
	f.record("page")
	f.mu.Lock()
	f.page = page
	f.mu.Unlock()
	return nil
}

func (f *fakeDaemon) SetRegions(regions []geom.Rect, bottomBand *float64) error {
	f.record("regions")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.regions = regions
	if bottomBand != nil {
		f.band = *bottomBand
	}
	return nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds msg to m and drops any returned command.
func press(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(model)
}

// send feeds msg to m, runs the returned command and feeds its result back.
func send(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(model)
	if cmd == nil {
		return m
	}
	return press(t, m, cmd())
}

func typeText(t *testing.T, m model, text string) model {
	t.Helper()
	for _, r := range text {
		next, _ := m.Update(key(string(r)))
		m = next.(model)
	}
	return m
}

func newTestModel(t *testing.T) (model, *fakeDaemon, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	d := &fakeDaemon{}
	m := newModel(path, d)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(model), d, path
}

func TestModel_StatusUpdatesConnection(t *testing.T) {
	m, d, _ := newTestModel(t)

	m = press(t, m, statusMsg{status: &ipc.StatusData{Status: panel.Status{Phase: "animating"}}})
	if !m.connected || m.panelTab.status == nil || m.panelTab.status.Phase != "animating" {
		t.Fatalf("status not applied: connected=%v status=%+v", m.connected, m.panelTab.status)
	}
	if !strings.Contains(m.View(), "daemon connected") {
		t.Fatal("view should report the daemon as connected")
	}

	d.statusFn = func() (*ipc.StatusData, error) { return nil, errors.New("dial unix: no such file") }
	m = press(t, m, fetchStatus(d)())
	if m.connected || m.panelTab.status != nil {
		t.Fatal("failed poll should mark the daemon as down")
	}
	if !strings.Contains(m.View(), "daemon not running") {
		t.Fatal("view should report the daemon as not running")
	}
}

func TestModel_PanelCommands(t *testing.T) {
	m, d, _ := newTestModel(t)

	for _, k := range []string{"s", "h", "l", "r"} {
		m = send(t, m, key(k))
	}
	want := []string{"snap", "hide left", "hide right", "restore"}
	got := d.called()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	if m.notice != "restore: ok" || m.noticeErr {
		t.Fatalf("notice = %q (err %v)", m.notice, m.noticeErr)
	}
}

func TestModel_SetPage(t *testing.T) {
	m, d, _ := newTestModel(t)

	m = press(t, m, key("p"))
	if !m.capturing() {
		t.Fatal("page input should capture keys")
	}
	// q must reach the input rather than quit.
	m = typeText(t, m, "quick")
	m = send(t, m, key("enter"))
	if m.capturing() {
		t.Fatal("enter should close the page input")
	}
	d.mu.Lock()
	page := d.page
	d.mu.Unlock()
	if page != "quick" {
		t.Fatalf("page = %q, want quick", page)
	}
}

func TestModel_RegionsAddRemoveAndSave(t *testing.T) {
	m, d, path := newTestModel(t)

	m = press(t, m, key("3"))
	if m.activeTab != TabRegions {
		t.Fatalf("active tab = %v", m.activeTab)
	}

	m = press(t, m, key("a"))
	m = typeText(t, m, "bad")
	m = send(t, m, key("enter"))
	if !m.regionsTab.adding || m.regionsTab.inputErr == "" {
		t.Fatal("invalid region should keep the input open with an error")
	}
	m = press(t, m, key("esc"))

	m = press(t, m, key("a"))
	m = typeText(t, m, "0,0,40,20")
	m = send(t, m, key("enter"))
	if len(m.cfg.Input.NonDragRegions) != 1 {
		t.Fatalf("regions = %+v", m.cfg.Input.NonDragRegions)
	}
	d.mu.Lock()
	pushed := len(d.regions)
	d.mu.Unlock()
	if pushed != 1 {
		t.Fatalf("daemon got %d regions, want 1", pushed)
	}

	m = press(t, m, key("ctrl+s"))
	if !m.saveOverlay.Active() || m.saveOverlay.phase != savePreview {
		t.Fatal("ctrl+s should open the diff preview")
	}
	m = send(t, m, key("enter"))
	if !m.saveOverlay.SaveSucceeded() {
		t.Fatalf("save failed: %v", m.saveOverlay.err)
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("load saved config: %v", err)
	}
	if len(res.Config.Input.NonDragRegions) != 1 || res.Config.Input.NonDragRegions[0].Width != 40 {
		t.Fatalf("saved regions = %+v", res.Config.Input.NonDragRegions)
	}
	found := false
	for _, c := range d.called() {
		found = found || c == "reload"
	}
	if !found {
		t.Fatal("save should ask the daemon to reload")
	}

	// Dismiss, then a second save has nothing to write.
	m = send(t, m, key("x"))
	m = press(t, m, key("ctrl+s"))
	if m.saveOverlay.phase != saveResult || m.saveOverlay.err == nil {
		t.Fatal("expected no-changes result")
	}
	m = send(t, m, key("x"))

	m = send(t, m, key("x"))
	if len(m.cfg.Input.NonDragRegions) != 0 {
		t.Fatalf("x should remove the selected region, have %+v", m.cfg.Input.NonDragRegions)
	}
}

func TestModel_SaveRefusedAfterLoadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("bogus_key: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	m := newModel(path, &fakeDaemon{})
	if m.loadErr == nil {
		t.Fatal("expected load error")
	}
	m.cfg.Physics.Stiffness = 999
	next, _ := m.Update(key("ctrl+s"))
	m = next.(model)
	if m.saveOverlay.phase != saveResult || m.saveOverlay.err == nil {
		t.Fatal("save over a broken config should be refused")
	}
}

func TestTuningField_Validate(t *testing.T) {
	fields := tuningFields()
	byKey := map[string]tuningField{}
	for _, f := range fields {
		byKey[f.key] = f
	}
	tests := []struct {
		key     string
		value   string
		wantErr bool
	}{
		{"physics.stiffness", "300", false},
		{"physics.stiffness", "0", true},
		{"physics.damping", "0.5", false},
		{"physics.damping", "0", true},
		{"physics.damping", "-1", true},
		{"physics.release_velocity_fraction", "1", false},
		{"physics.release_velocity_fraction", "1.5", true},
		{"targeting.edge_threshold", "abc", true},
	}
	for _, tt := range tests {
		err := byKey[tt.key].validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s=%q: err = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
		}
	}
}

func TestTuningTab_ApplyForm(t *testing.T) {
	cfg := config.DefaultConfig()
	tab := NewTuningTab(cfg)
	tab.startEditing()
	for i := range tab.fields {
		if tab.fields[i].key == "physics.stiffness" {
			tab.fields[i].value = "420"
		}
	}
	*tab.fEdgeHide = false
	*tab.fIntegrator = "analytic"
	tab.applyForm()
	if cfg.Physics.Integrator != "analytic" {
		t.Fatalf("integrator = %q", cfg.Physics.Integrator)
	}
	if cfg.Physics.Stiffness != 420 || cfg.Targeting.EdgeHide {
		t.Fatalf("form not applied: stiffness=%v edge_hide=%v", cfg.Physics.Stiffness, cfg.Targeting.EdgeHide)
	}
	if cfg.Physics.Damping != 24 {
		t.Fatalf("untouched field changed: damping=%v", cfg.Physics.Damping)
	}
}
