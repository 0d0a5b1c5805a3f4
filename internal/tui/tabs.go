package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/flickpanel/internal/ipc"
)

// Tab identifies a console tab.
type Tab int

const (
	TabPanel Tab = iota
	TabTuning
	TabRegions
	tabCount // sentinel for iteration
)

func (t Tab) String() string {
	switch t {
	case TabPanel:
		return "Panel"
	case TabTuning:
		return "Tuning"
	case TabRegions:
		return "Regions"
	default:
		return "?"
	}
}

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("250")).
				Background(lipgloss.Color("236")).
				Padding(0, 2)

	tabBarStyle = lipgloss.NewStyle().
			MarginBottom(1)

	tabGap = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		SetString(" ")
)

// renderTabBar renders the tab bar with the given active tab and width.
func renderTabBar(active Tab, width int) string {
	var tabs []string
	for i := Tab(0); i < tabCount; i++ {
		label := fmt.Sprintf("%d:%s", int(i)+1, i)
		if i == active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, intersperse(tabs, tabGap.Render())...)
	return tabBarStyle.Width(width).Render(row)
}

// intersperse inserts sep between each element of items.
func intersperse(items []string, sep string) []string {
	if len(items) <= 1 {
		return items
	}
	result := make([]string, 0, len(items)*2-1)
	for i, item := range items {
		if i > 0 {
			result = append(result, sep)
		}
		result = append(result, item)
	}
	return result
}

// renderStatusBar renders the daemon connection line.
func renderStatusBar(connected bool, status *ipc.StatusData, width int) string {
	var line string
	if connected && status != nil {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		parts := []string{dot + " daemon connected", "phase:" + status.Phase}
		if status.Hidden {
			parts = append(parts, "hidden:"+status.Edge)
		}
		if status.TilingActive {
			parts = append(parts, "tiling")
		}
		line = strings.Join(parts, "  ")
	} else {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		line = dot + " daemon not running"
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(line)
}

// renderHelpBar renders the bottom keybinding bar, prefixed by the outcome
// of the last command.
func renderHelpBar(active Tab, notice string, noticeErr bool, width int) string {
	help := "tab: switch  R: reload  ctrl-s: save  q: quit"
	switch active {
	case TabPanel:
		help = "s: snap  h/l: hide left/right  r: restore  p: page  " + help
	case TabTuning:
		help = "e: edit  " + help
	case TabRegions:
		help = "a: add  x: remove  " + help
	}

	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	if notice == "" {
		return style.Render(help)
	}
	color := lipgloss.Color("42")
	if noticeErr {
		color = lipgloss.Color("196")
	}
	return style.Render(lipgloss.NewStyle().Foreground(color).Render(notice) + "  " + help)
}
