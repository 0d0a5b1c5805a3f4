package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/flickpanel/internal/geom"
	"github.com/1broseidon/flickpanel/internal/ipc"
)

// PanelTab shows the live panel state and sends snap, hide, restore and
// page commands.
type PanelTab struct {
	daemon   Daemon
	status   *ipc.StatusData
	monitors []ipc.MonitorInfo

	width  int
	height int

	editingPage bool
	pageInput   textinput.Model
}

// NewPanelTab creates a PanelTab that drives d.
func NewPanelTab(d Daemon) PanelTab {
	ti := textinput.New()
	ti.Placeholder = "page name, empty clears"
	ti.CharLimit = 64
	return PanelTab{daemon: d, pageInput: ti}
}

// SetStatus replaces the displayed status; nil means the daemon is down.
func (p *PanelTab) SetStatus(st *ipc.StatusData) {
	p.status = st
}

// SetMonitors replaces the displays used by the map.
func (p *PanelTab) SetMonitors(monitors []ipc.MonitorInfo) {
	p.monitors = monitors
}

// Update handles messages for the panel tab.
func (p PanelTab) Update(msg tea.Msg) (PanelTab, tea.Cmd) {
	if p.editingPage {
		return p.updatePage(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
	case tea.KeyMsg:
		d := p.daemon
		switch msg.String() {
		case "s":
			return p, runAction("snap", func() error {
				_, err := d.Snap()
				return err
			})
		case "h", "left":
			return p, runAction("hide left", func() error {
				_, err := d.Hide("left")
				return err
			})
		case "l", "right":
			return p, runAction("hide right", func() error {
				_, err := d.Hide("right")
				return err
			})
		case "r":
			return p, runAction("restore", func() error {
				_, err := d.Restore()
				return err
			})
		case "p":
			p.editingPage = true
			p.pageInput.Reset()
			if p.status != nil {
				p.pageInput.SetValue(p.status.Page)
			}
			return p, p.pageInput.Focus()
		}
	}
	return p, nil
}

func (p PanelTab) updatePage(msg tea.Msg) (PanelTab, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc":
			p.editingPage = false
			p.pageInput.Blur()
			return p, nil
		case "enter":
			page := strings.TrimSpace(p.pageInput.Value())
			p.editingPage = false
			p.pageInput.Blur()
			d := p.daemon
			return p, runAction("page", func() error { return d.SetPage(page) })
		}
	}
	var cmd tea.Cmd
	p.pageInput, cmd = p.pageInput.Update(msg)
	return p, cmd
}

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View renders the panel tab.
func (p PanelTab) View() string {
	st := p.status
	if st == nil {
		return lipgloss.NewStyle().
			Width(p.width).
			Height(p.height).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center).
			Render("daemon not running\nstart it with: flickpanel daemon")
	}

	rows := [][2]string{
		{"phase", st.Phase},
		{"window", fmt.Sprintf("0x%x", st.Window)},
	}
	if st.Modality != "" {
		rows = append(rows, [2]string{"gesture", st.Modality})
	}
	if st.HaveFrame {
		f := st.Frame
		rows = append(rows, [2]string{"frame", fmt.Sprintf("%.0f,%.0f %.0fx%.0f", f.X, f.Y, f.Width, f.Height)})
	}
	if st.Target != nil {
		rows = append(rows, [2]string{"target", fmt.Sprintf("%.0f,%.0f", st.Target.X, st.Target.Y)})
	}
	hidden := "no"
	if st.Hidden {
		hidden = "at " + st.Edge + " edge"
	}
	rows = append(rows,
		[2]string{"hidden", hidden},
		[2]string{"page", orDash(st.Page)},
		[2]string{"accent", renderAccent(st.Accent)},
		[2]string{"tiling", fmt.Sprintf("%t", st.TilingActive)},
		[2]string{"regions", fmt.Sprintf("%d, bottom band %.0fpx", len(st.Regions), st.BottomBand)},
		[2]string{"uptime", fmt.Sprintf("%ds", st.UptimeSeconds)},
	)

	var lines []string
	for _, r := range rows {
		lines = append(lines, labelStyle.Render(r[0])+valueStyle.Render(r[1]))
	}
	if p.editingPage {
		lines = append(lines, "", labelStyle.Render("set page")+p.pageInput.View())
	}
	info := strings.Join(lines, "\n")

	mapW := p.width - lipgloss.Width(info) - 6
	mapH := p.height - 2
	if mapW < 16 || mapH < 6 || !st.HaveFrame {
		return lipgloss.NewStyle().Padding(0, 1).Render(info)
	}
	usable, ok := displayFor(p.monitors, st.Frame)
	if !ok {
		return lipgloss.NewStyle().Padding(0, 1).Render(info)
	}
	// Keep the map roughly at the display's aspect ratio; cells are about
	// twice as tall as they are wide.
	if h := int(float64(mapW) * usable.Height / usable.Width / 2); h < mapH {
		mapH = max(h, 6)
	}
	dm := renderDisplayMap(usable, st.Frame, mapW, mapH)
	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Padding(0, 1).Render(info),
		"   ",
		dimStyle.Render(strings.Join(dm, "\n")),
	)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func renderAccent(hex string) string {
	if hex == "" {
		return "-"
	}
	swatch := lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("    ")
	return swatch + " " + hex
}

// displayFor picks the usable area the panel belongs to: the display
// containing the frame center, else the one it overlaps most.
func displayFor(monitors []ipc.MonitorInfo, frame geom.Rect) (geom.Rect, bool) {
	if len(monitors) == 0 {
		return geom.Rect{}, false
	}
	c := frame.Center()
	best, bestArea := -1, 0.0
	for i, m := range monitors {
		if m.Bounds.Contains(c) {
			return m.Usable, true
		}
		in := m.Bounds.Intersect(frame)
		if a := in.Width * in.Height; a > bestArea {
			best, bestArea = i, a
		}
	}
	if best < 0 {
		return monitors[0].Usable, true
	}
	return monitors[best].Usable, true
}
