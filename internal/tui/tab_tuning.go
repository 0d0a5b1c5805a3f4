package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/flickpanel/internal/config"
)

// tuningField binds one float setting to a form input.
type tuningField struct {
	key   string // YAML path
	title string
	ptr   func(cfg *config.Config) *float64
	value string
	// nonNegative allows zero; otherwise the value must be > 0.
	nonNegative bool
	max         float64 // 0 means unbounded
}

func tuningFields() []tuningField {
	return []tuningField{
		{key: "physics.stiffness", title: "Stiffness", ptr: func(c *config.Config) *float64 { return &c.Physics.Stiffness }},
		{key: "physics.damping", title: "Damping", ptr: func(c *config.Config) *float64 { return &c.Physics.Damping }},
		{key: "physics.mass", title: "Mass", ptr: func(c *config.Config) *float64 { return &c.Physics.Mass }},
		{key: "physics.release_velocity_fraction", title: "Release velocity fraction", ptr: func(c *config.Config) *float64 { return &c.Physics.ReleaseVelocityFraction }, nonNegative: true, max: 1},
		{key: "targeting.corner_margin", title: "Corner margin (px)", ptr: func(c *config.Config) *float64 { return &c.Targeting.CornerMargin }, nonNegative: true},
		{key: "targeting.projection_factor", title: "Projection factor (s)", ptr: func(c *config.Config) *float64 { return &c.Targeting.ProjectionFactor }, nonNegative: true},
		{key: "targeting.edge_threshold", title: "Edge threshold (px)", ptr: func(c *config.Config) *float64 { return &c.Targeting.EdgeThreshold }, nonNegative: true},
		{key: "targeting.edge_min_velocity", title: "Edge min velocity (px/s)", ptr: func(c *config.Config) *float64 { return &c.Targeting.EdgeMinVelocity }, nonNegative: true},
		{key: "targeting.visible_width", title: "Visible sliver (px)", ptr: func(c *config.Config) *float64 { return &c.Targeting.VisibleWidth }, nonNegative: true},
	}
}

// TuningTab edits the spring and targeting settings with a form.
type TuningTab struct {
	cfg *config.Config

	width  int
	height int

	editing bool
	form    *huh.Form

	// Form values live behind pointers so they survive the tab being copied
	// between updates.
	fields      []tuningField
	fEdgeHide   *bool
	fIntegrator *string
}

// NewTuningTab creates a TuningTab over cfg. Submitted edits are written to
// cfg in place.
func NewTuningTab(cfg *config.Config) TuningTab {
	return TuningTab{cfg: cfg, fields: tuningFields()}
}

// Update handles messages for the tuning tab.
func (t TuningTab) Update(msg tea.Msg) (TuningTab, tea.Cmd) {
	if t.editing {
		return t.updateEditing(msg)
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "e" {
			t.startEditing()
			return t, t.form.Init()
		}
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
	}
	return t, nil
}

func (t TuningTab) updateEditing(msg tea.Msg) (TuningTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			t.editing = false
			t.form = nil
			return t, nil
		}
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}

	switch t.form.State {
	case huh.StateCompleted:
		t.applyForm()
		t.editing = false
		t.form = nil
		return t, nil
	case huh.StateAborted:
		t.editing = false
		t.form = nil
		return t, nil
	}
	return t, cmd
}

func (t *TuningTab) startEditing() {
	t.fields = tuningFields()
	for i := range t.fields {
		t.fields[i].value = formatFloat(*t.fields[i].ptr(t.cfg))
	}
	edgeHide := t.cfg.Targeting.EdgeHide
	t.fEdgeHide = &edgeHide
	integrator := t.cfg.Physics.Integrator
	t.fIntegrator = &integrator

	var physics, targeting []huh.Field
	for i := range t.fields {
		f := &t.fields[i]
		input := huh.NewInput().
			Title(f.title).
			Value(&f.value).
			Validate(f.validate)
		if strings.HasPrefix(f.key, "physics.") {
			physics = append(physics, input)
		} else {
			targeting = append(targeting, input)
		}
	}
	physics = append(physics, huh.NewSelect[string]().
		Title("Integrator").
		Options(
			huh.NewOption("semi-implicit Euler", "euler"),
			huh.NewOption("analytic", "analytic"),
		).
		Value(t.fIntegrator))
	targeting = append(targeting, huh.NewConfirm().
		Title("Hide at screen edges").
		Value(t.fEdgeHide))

	t.form = huh.NewForm(
		huh.NewGroup(physics...).Title("Spring"),
		huh.NewGroup(targeting...).Title("Targeting"),
	).WithShowHelp(true)
	t.editing = true
}

func (f tuningField) validate(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if f.nonNegative && v < 0 {
		return fmt.Errorf("must be >= 0")
	}
	if !f.nonNegative && v <= 0 {
		return fmt.Errorf("must be > 0")
	}
	if f.max > 0 && v > f.max {
		return fmt.Errorf("must be <= %s", formatFloat(f.max))
	}
	return nil
}

func (t *TuningTab) applyForm() {
	for _, f := range t.fields {
		if v, err := strconv.ParseFloat(strings.TrimSpace(f.value), 64); err == nil {
			*f.ptr(t.cfg) = v
		}
	}
	if t.fEdgeHide != nil {
		t.cfg.Targeting.EdgeHide = *t.fEdgeHide
	}
	if t.fIntegrator != nil {
		t.cfg.Physics.Integrator = *t.fIntegrator
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// View renders the tuning tab.
func (t TuningTab) View() string {
	if t.editing && t.form != nil {
		return lipgloss.NewStyle().Padding(0, 2).Render(t.form.View())
	}

	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(30)
	var lines []string
	for _, f := range tuningFields() {
		lines = append(lines, keyStyle.Render(f.title)+valueStyle.Render(formatFloat(*f.ptr(t.cfg))))
	}
	lines = append(lines, keyStyle.Render("Integrator")+valueStyle.Render(t.cfg.Physics.Integrator))
	lines = append(lines, keyStyle.Render("Hide at screen edges")+valueStyle.Render(strconv.FormatBool(t.cfg.Targeting.EdgeHide)))
	lines = append(lines, "", dimStyle.Render("press e to edit, ctrl-s to save and reload the daemon"))
	return lipgloss.NewStyle().Padding(0, 2).Render(strings.Join(lines, "\n"))
}
