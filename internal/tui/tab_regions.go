package tui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/flickpanel/internal/config"
	"github.com/1broseidon/flickpanel/internal/geom"
)

// regionItem is a list item for one non-drag region.
type regionItem struct {
	index int
	rect  geom.Rect
}

func (i regionItem) Title() string {
	return fmt.Sprintf("%d  %s", i.index+1, i.rect)
}

func (i regionItem) Description() string {
	return fmt.Sprintf("%.0fx%.0f at %.0f,%.0f", i.rect.Width, i.rect.Height, i.rect.X, i.rect.Y)
}

func (i regionItem) FilterValue() string { return i.rect.String() }

type regionInput int

const (
	inputNone regionInput = iota
	inputRegion
	inputBand
)

// RegionsTab edits the panel-local rectangles and bottom band where drags
// never start. Every edit is pushed to the daemon right away and kept in the
// config for saving.
type RegionsTab struct {
	daemon Daemon
	cfg    *config.Config
	list   list.Model

	width  int
	height int

	adding    bool
	mode      regionInput
	textInput textinput.Model
	inputErr  string
}

// NewRegionsTab creates a RegionsTab over cfg.
func NewRegionsTab(d Daemon, cfg *config.Config) RegionsTab {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(buildRegionItems(cfg), delegate, 0, 0)
	l.Title = "Non-drag regions"
	l.Styles.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	ti := textinput.New()
	ti.CharLimit = 64

	return RegionsTab{daemon: d, cfg: cfg, list: l, textInput: ti}
}

func buildRegionItems(cfg *config.Config) []list.Item {
	items := make([]list.Item, 0, len(cfg.Input.NonDragRegions))
	for i, r := range cfg.Input.NonDragRegions {
		items = append(items, regionItem{index: i, rect: r})
	}
	return items
}

// Update handles messages for the regions tab.
func (r RegionsTab) Update(msg tea.Msg) (RegionsTab, tea.Cmd) {
	if r.adding {
		return r.updateInput(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width = msg.Width
		r.height = msg.Height
		r.list.SetSize(r.listWidth(), r.height)
		return r, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "a":
			return r, r.startInput(inputRegion, "x,y,w,h in panel pixels", "")
		case "b":
			return r, r.startInput(inputBand, "bottom band height in pixels", formatFloat(r.cfg.Input.BottomBand))
		case "x", "delete":
			if item, ok := r.list.SelectedItem().(regionItem); ok {
				r.cfg.Input.NonDragRegions = slices.Delete(r.cfg.Input.NonDragRegions, item.index, item.index+1)
				r.list.SetItems(buildRegionItems(r.cfg))
				return r, r.push()
			}
			return r, nil
		}
	}

	var cmd tea.Cmd
	r.list, cmd = r.list.Update(msg)
	return r, cmd
}

func (r *RegionsTab) startInput(mode regionInput, placeholder, value string) tea.Cmd {
	r.adding = true
	r.mode = mode
	r.inputErr = ""
	r.textInput.Reset()
	r.textInput.Placeholder = placeholder
	r.textInput.SetValue(value)
	return r.textInput.Focus()
}

func (r RegionsTab) updateInput(msg tea.Msg) (RegionsTab, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc":
			r.adding = false
			r.textInput.Blur()
			return r, nil
		case "enter":
			if err := r.commitInput(strings.TrimSpace(r.textInput.Value())); err != nil {
				r.inputErr = err.Error()
				return r, nil
			}
			r.adding = false
			r.textInput.Blur()
			r.list.SetItems(buildRegionItems(r.cfg))
			return r, r.push()
		}
	}
	var cmd tea.Cmd
	r.textInput, cmd = r.textInput.Update(msg)
	return r, cmd
}

func (r *RegionsTab) commitInput(value string) error {
	switch r.mode {
	case inputRegion:
		rect, err := geom.ParseRect(value)
		if err != nil {
			return err
		}
		r.cfg.Input.NonDragRegions = append(r.cfg.Input.NonDragRegions, rect)
	case inputBand:
		band, err := strconv.ParseFloat(value, 64)
		if err != nil || band < 0 {
			return fmt.Errorf("bottom band must be a number >= 0")
		}
		r.cfg.Input.BottomBand = band
	}
	return nil
}

// push sends the current regions and band to the daemon.
func (r RegionsTab) push() tea.Cmd {
	d := r.daemon
	regions := append([]geom.Rect(nil), r.cfg.Input.NonDragRegions...)
	band := r.cfg.Input.BottomBand
	return runAction("regions", func() error { return d.SetRegions(regions, &band) })
}

func (r RegionsTab) listWidth() int {
	return max(r.width/3, 28)
}

// View renders the regions tab.
func (r RegionsTab) View() string {
	left := lipgloss.NewStyle().Width(r.listWidth()).Render(r.list.View())
	if len(r.cfg.Input.NonDragRegions) == 0 {
		left = lipgloss.NewStyle().Width(r.listWidth()).Render(
			r.list.Styles.Title.Render(r.list.Title) + "\n\n" + dimStyle.Render("no regions, press a to add one"))
	}

	var right []string
	right = append(right, labelStyle.Render("bottom band")+valueStyle.Render(formatFloat(r.cfg.Input.BottomBand)+"px"))
	if r.adding {
		right = append(right, "", r.textInput.View())
		if r.inputErr != "" {
			right = append(right, lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(r.inputErr))
		}
	}

	mapW := r.width - r.listWidth() - 4
	mapH := r.height - len(right) - 2
	if size, ok := r.panelSize(); ok && mapW >= 12 && mapH >= 6 {
		right = append(right, "", dimStyle.Render(strings.Join(renderPanelMap(size, r.cfg.Input.NonDragRegions, r.cfg.Input.BottomBand, mapW, mapH), "\n")))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", strings.Join(right, "\n"))
}

// panelSize returns a panel-local rect large enough to show every region.
func (r RegionsTab) panelSize() (geom.Rect, bool) {
	var size geom.Rect
	for _, rect := range r.cfg.Input.NonDragRegions {
		size.Width = max(size.Width, rect.MaxX())
		size.Height = max(size.Height, rect.MaxY())
	}
	size.Height = max(size.Height, r.cfg.Input.BottomBand*4)
	if size.Width == 0 {
		size.Width = size.Height * 2
	}
	return size, !size.Empty()
}
