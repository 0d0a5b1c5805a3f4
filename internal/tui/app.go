package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/flickpanel/internal/config"
	"github.com/1broseidon/flickpanel/internal/ipc"
)

const pollInterval = 500 * time.Millisecond

// statusMsg carries the result of a GET_STATUS poll.
type statusMsg struct {
	status *ipc.StatusData
	err    error
}

// monitorsMsg carries the result of a GET_MONITORS request.
type monitorsMsg struct {
	monitors []ipc.MonitorInfo
	err      error
}

// actionMsg reports the outcome of a command sent to the daemon.
type actionMsg struct {
	action string
	err    error
}

type pollMsg struct{}

func fetchStatus(d Daemon) tea.Cmd {
	return func() tea.Msg {
		st, err := d.GetStatus()
		return statusMsg{status: st, err: err}
	}
}

func fetchMonitors(d Daemon) tea.Cmd {
	return func() tea.Msg {
		data, err := d.GetMonitors()
		if err != nil {
			return monitorsMsg{err: err}
		}
		return monitorsMsg{monitors: data.Monitors}
	}
}

func poll() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg { return pollMsg{} })
}

func runAction(action string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{action: action, err: fn()}
	}
}

// model is the root bubbletea model for the console.
type model struct {
	configPath string
	cfg        *config.Config
	loadErr    error
	daemon     Daemon

	activeTab Tab

	panelTab   PanelTab
	tuningTab  TuningTab
	regionsTab RegionsTab

	originalConfig *config.Config
	saveOverlay    SaveOverlay

	connected bool
	status    *ipc.StatusData
	notice    string
	noticeErr bool

	width  int
	height int
}

func newModel(configPath string, d Daemon) model {
	m := model{
		configPath: configPath,
		daemon:     d,
		activeTab:  TabPanel,
	}

	res, err := config.LoadFromPath(configPath)
	if err != nil {
		m.loadErr = err
		m.cfg = config.DefaultConfig()
	} else {
		m.cfg = res.Config
	}
	m.originalConfig = m.cfg.Clone()

	m.panelTab = NewPanelTab(d)
	m.tuningTab = NewTuningTab(m.cfg)
	m.regionsTab = NewRegionsTab(d, m.cfg)
	return m
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	return max(m.height-4, 1)
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(fetchStatus(m.daemon), fetchMonitors(m.daemon), poll())
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Daemon results are handled regardless of which view has focus.
	switch msg := msg.(type) {
	case pollMsg:
		return m, tea.Batch(fetchStatus(m.daemon), poll())
	case statusMsg:
		m.connected = msg.err == nil
		m.status = msg.status
		if msg.err != nil {
			m.status = nil
		}
		m.panelTab.SetStatus(m.status)
		return m, nil
	case monitorsMsg:
		if msg.err == nil {
			m.panelTab.SetMonitors(msg.monitors)
		}
		return m, nil
	case actionMsg:
		if msg.err != nil {
			m.notice = msg.action + ": " + msg.err.Error()
			m.noticeErr = true
		} else {
			m.notice = msg.action + ": ok"
			m.noticeErr = false
		}
		cmds := []tea.Cmd{fetchStatus(m.daemon)}
		if msg.action == "reload" {
			cmds = append(cmds, fetchMonitors(m.daemon))
		}
		return m, tea.Batch(cmds...)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		subMsg := tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()}
		m.panelTab, _ = m.panelTab.Update(subMsg)
		m.tuningTab, _ = m.tuningTab.Update(subMsg)
		m.regionsTab, _ = m.regionsTab.Update(subMsg)
		return m, nil
	}

	// The save overlay captures all input when active.
	if m.saveOverlay.Active() {
		if km, ok := msg.(tea.KeyMsg); ok {
			if km.String() == "ctrl+c" {
				return m, tea.Quit
			}
			prev := m.saveOverlay.phase
			var cmd tea.Cmd
			m.saveOverlay, cmd = m.saveOverlay.Update(km, m.cfg, m.configPath, m.daemon, m.connected)
			if prev == savePreview && m.saveOverlay.SaveSucceeded() {
				m.originalConfig = m.cfg.Clone()
				m.loadErr = nil
			}
			return m, cmd
		}
		return m, nil
	}

	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+s" {
		m.saveOverlay.Show(m.originalConfig, m.cfg, m.loadErr)
		return m, nil
	}

	// A tab that owns a form or text input gets every key but ctrl+c.
	if m.capturing() {
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.delegate(msg)
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1":
			m.activeTab = TabPanel
			return m, nil
		case "2":
			m.activeTab = TabTuning
			return m, nil
		case "3":
			m.activeTab = TabRegions
			return m, nil
		case "R":
			return m, runAction("reload", m.daemon.Reload)
		}
	}

	return m.delegate(msg)
}

func (m model) capturing() bool {
	switch m.activeTab {
	case TabPanel:
		return m.panelTab.editingPage
	case TabTuning:
		return m.tuningTab.editing
	case TabRegions:
		return m.regionsTab.adding
	}
	return false
}

func (m model) delegate(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.activeTab {
	case TabPanel:
		m.panelTab, cmd = m.panelTab.Update(msg)
	case TabTuning:
		m.tuningTab, cmd = m.tuningTab.Update(msg)
	case TabRegions:
		m.regionsTab, cmd = m.regionsTab.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.connected, m.status, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.activeTab, m.notice, m.noticeErr, m.width)

	usedHeight := lipgloss.Height(statusBar) + lipgloss.Height(tabBar) + lipgloss.Height(helpBar)
	contentHeight := max(m.height-usedHeight, 1)

	var content string
	if m.saveOverlay.Active() {
		content = m.saveOverlay.View(m.width, contentHeight)
	} else {
		switch m.activeTab {
		case TabPanel:
			content = m.panelTab.View()
		case TabTuning:
			content = m.tuningTab.View()
		case TabRegions:
			content = m.regionsTab.View()
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}
