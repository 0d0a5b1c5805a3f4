package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/flickpanel/internal/config"
)

type savePhase int

const (
	saveHidden  savePhase = iota
	savePreview           // showing changes, awaiting confirm
	saveResult            // showing outcome message
)

// generalSection groups top-level settings such as tiling_mode.
const generalSection = "general"

// settingChange is one setting whose value differs between two configs.
// A side that does not exist, such as the old value of an added region,
// has hadFrom or hasTo unset.
type settingChange struct {
	section string
	key     string

	from, to       string
	hadFrom, hasTo bool
}

// sectionChanges holds the changes under one top-level config key.
type sectionChanges struct {
	name    string
	changes []settingChange
}

// SaveOverlay previews the pending config changes by section and writes
// them on confirmation.
type SaveOverlay struct {
	phase    savePhase
	sections []sectionChanges
	err      error
	reloaded bool
	offset   int
}

// Active reports whether the overlay is visible.
func (s SaveOverlay) Active() bool {
	return s.phase != saveHidden
}

// Show computes the pending changes and opens the preview. A config that
// failed to load is never overwritten.
func (s *SaveOverlay) Show(original, current *config.Config, loadErr error) {
	s.err = nil
	s.reloaded = false
	s.offset = 0
	s.phase = saveResult

	if loadErr != nil {
		s.err = fmt.Errorf("config failed to load, fix it first: %w", loadErr)
		return
	}
	sections, err := diffConfigs(original, current)
	switch {
	case err != nil:
		s.err = err
	case len(sections) == 0:
		s.err = fmt.Errorf("no changes to save")
	default:
		s.sections = sections
		s.phase = savePreview
	}
}

// SaveSucceeded reports whether the last save completed without error.
func (s SaveOverlay) SaveSucceeded() bool {
	return s.phase == saveResult && s.err == nil
}

// Update handles a key while the overlay is active. Confirming writes cfg to
// path and asks a connected daemon to reload.
func (s SaveOverlay) Update(km tea.KeyMsg, cfg *config.Config, path string, d Daemon, connected bool) (SaveOverlay, tea.Cmd) {
	if s.phase == saveResult {
		s.phase = saveHidden
		return s, nil
	}
	if s.phase != savePreview {
		return s, nil
	}

	switch km.String() {
	case "esc":
		s.phase = saveHidden
	case "enter", "y":
		s.phase = saveResult
		if s.err = cfg.SaveToPath(path); s.err != nil {
			return s, nil
		}
		if connected && d != nil && d.Reload() == nil {
			s.reloaded = true
			return s, fetchMonitors(d)
		}
	case "up", "k":
		s.offset = max(s.offset-1, 0)
	case "down", "j":
		s.offset++
	}
	return s, nil
}

// View renders the overlay centred in an area of the given size.
func (s SaveOverlay) View(width, height int) string {
	var content string
	boxW := min(max(width-8, 30), 80)
	switch s.phase {
	case savePreview:
		content = s.previewContent(boxW-6, height-10)
	case saveResult:
		boxW = min(boxW, 60)
		content = s.resultContent()
	default:
		return ""
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		Width(boxW).
		Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

var (
	saveTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	saveSectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	saveAddStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	saveRemoveStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// changeLines renders every section as a header followed by its old and new
// values.
func (s SaveOverlay) changeLines() []string {
	var lines []string
	for _, sec := range s.sections {
		lines = append(lines, saveSectionStyle.Render(sec.name))
		for _, ch := range sec.changes {
			if ch.hadFrom {
				lines = append(lines, saveRemoveStyle.Render("  - "+ch.key+": "+ch.from))
			}
			if ch.hasTo {
				lines = append(lines, saveAddStyle.Render("  + "+ch.key+": "+ch.to))
			}
		}
	}
	return lines
}

func (s SaveOverlay) previewContent(innerW, rows int) string {
	rows = max(rows, 3)
	lines := s.changeLines()
	off := min(s.offset, max(len(lines)-rows, 0))
	visible := lines[off:min(off+rows, len(lines))]
	for i, l := range visible {
		if lipgloss.Width(l) > innerW {
			visible[i] = lipgloss.NewStyle().MaxWidth(innerW).Render(l)
		}
	}

	n := 0
	for _, sec := range s.sections {
		n += len(sec.changes)
	}
	title := saveTitleStyle.Render(fmt.Sprintf("Save config: %d setting(s) changed", n))
	footer := dimStyle.Render("enter: save  esc: cancel  j/k: scroll")
	return title + "\n\n" + strings.Join(visible, "\n") + "\n\n" + footer
}

func (s SaveOverlay) resultContent() string {
	var msg string
	if s.err != nil {
		msg = saveRemoveStyle.Bold(true).Render("Error: " + s.err.Error())
	} else {
		msg = saveAddStyle.Bold(true).Render("Config saved")
		if s.reloaded {
			msg += "\n" + saveAddStyle.Render("Daemon reloaded")
		}
	}
	return msg + "\n\n" + dimStyle.Render("press any key to dismiss")
}

// setting is one leaf value of a config, addressed by its YAML path.
type setting struct {
	path  string
	value string
}

// diffConfigs compares the leaf settings of two configs and groups the
// differences by top-level section, in config order.
func diffConfigs(original, current *config.Config) ([]sectionChanges, error) {
	if original == nil || current == nil {
		return nil, nil
	}
	before, err := flattenConfig(original)
	if err != nil {
		return nil, fmt.Errorf("encode saved config: %w", err)
	}
	after, err := flattenConfig(current)
	if err != nil {
		return nil, fmt.Errorf("encode edited config: %w", err)
	}

	old := make(map[string]string, len(before))
	for _, st := range before {
		old[st.path] = st.value
	}
	seen := make(map[string]bool, len(after))

	var sections []sectionChanges
	index := map[string]int{}
	add := func(ch settingChange) {
		i, ok := index[ch.section]
		if !ok {
			i = len(sections)
			index[ch.section] = i
			sections = append(sections, sectionChanges{name: ch.section})
		}
		sections[i].changes = append(sections[i].changes, ch)
	}

	for _, st := range after {
		seen[st.path] = true
		prev, had := old[st.path]
		if had && prev == st.value {
			continue
		}
		section, key := splitPath(st.path)
		add(settingChange{section: section, key: key, from: prev, hadFrom: had, to: st.value, hasTo: true})
	}
	for _, st := range before {
		if seen[st.path] {
			continue
		}
		section, key := splitPath(st.path)
		add(settingChange{section: section, key: key, from: st.value, hadFrom: true})
	}
	return sections, nil
}

func flattenConfig(cfg *config.Config) ([]setting, error) {
	var n yaml.Node
	if err := n.Encode(cfg); err != nil {
		return nil, err
	}
	var out []setting
	flattenNode(&n, "", &out)
	return out, nil
}

func flattenNode(n *yaml.Node, path string, out *[]setting) {
	switch n.Kind {
	case yaml.DocumentNode:
		for _, c := range n.Content {
			flattenNode(c, path, out)
		}
	case yaml.AliasNode:
		flattenNode(n.Alias, path, out)
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			if path != "" {
				key = path + "." + key
			}
			flattenNode(n.Content[i+1], key, out)
		}
	case yaml.SequenceNode:
		if len(n.Content) == 0 {
			*out = append(*out, setting{path: path, value: "[]"})
			return
		}
		for i, c := range n.Content {
			item := fmt.Sprintf("%s[%d]", path, i)
			if inline, ok := inlineMapping(c); ok {
				*out = append(*out, setting{path: item, value: inline})
				continue
			}
			flattenNode(c, item, out)
		}
	default:
		*out = append(*out, setting{path: path, value: n.Value})
	}
}

// inlineMapping renders a mapping of scalars, such as a region, on one line.
func inlineMapping(n *yaml.Node) (string, bool) {
	if n.Kind != yaml.MappingNode {
		return "", false
	}
	parts := make([]string, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		v := n.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return "", false
		}
		parts = append(parts, n.Content[i].Value+"="+v.Value)
	}
	return strings.Join(parts, " "), true
}

// splitPath splits "physics.stiffness" into its section and the key below
// it. Top-level scalars and lists belong to the general section.
func splitPath(path string) (section, key string) {
	if i := strings.IndexByte(path, '.'); i >= 0 {
		return path[:i], path[i+1:]
	}
	return generalSection, path
}
