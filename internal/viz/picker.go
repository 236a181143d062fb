package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/ljmd/internal/config"
	"github.com/san-kum/ljmd/internal/experiment"
)

var presetInfo = map[string]string{
	"gas":    "dilute, hot, few collisions",
	"liquid": "dense fluid near the triple point",
	"solid":  "cold simple-cubic crystal",
	"bench":  "1000 particles, kernel stress",
}

// picker lists the presets and hands off to the live view once one is
// chosen.
type picker struct {
	presets []string
	cursor  int
	live    *Model
	err     error
}

func newPicker() picker {
	return picker{presets: config.ListPresets()}
}

func (m picker) Init() tea.Cmd { return nil }

func (m picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.live != nil {
		next, cmd := m.live.Update(msg)
		live := next.(Model)
		m.live = &live
		return m, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		name := m.presets[m.cursor]
		exp, err := experiment.New(config.GetPreset(name))
		if err != nil {
			m.err = err
			return m, nil
		}
		live := NewModel(exp, name)
		m.live = &live
		return m, live.Init()
	}
	return m, nil
}

func (m picker) View() string {
	if m.live != nil {
		return m.live.View()
	}

	t := CurrentTheme
	title := lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	sub := lipgloss.NewStyle().Foreground(t.Muted)
	sel := lipgloss.NewStyle().Foreground(t.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(t.Accent)

	var b strings.Builder
	b.WriteString("\n\n    " + title.Render("LJMD") + "\n    " + sub.Render("lennard-jones molecular dynamics") + "\n    " + sub.Render("────────────────────────────────") + "\n\n")
	for i, name := range m.presets {
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", title.Render("▸"), sel.Render(fmt.Sprintf("%-8s", name)), desc.Render(presetInfo[name])))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", sub.Render(fmt.Sprintf("%-8s", name)), sub.Render(presetInfo[name])))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(t.Error).Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + sub.Render("j/k navigate  enter select  q quit") + "\n")
	return b.String()
}

// RunPicker starts the preset menu full-screen.
func RunPicker() error {
	_, err := tea.NewProgram(newPicker(), tea.WithAltScreen()).Run()
	return err
}
