package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styles are rebuilt from CurrentTheme on every frame so theme changes
// apply immediately.
type styles struct {
	header  lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	running lipgloss.Style
	paused  lipgloss.Style
	failed  lipgloss.Style
	graph   lipgloss.Style
	canvas  lipgloss.Style
	panel   lipgloss.Style
	hint    lipgloss.Style
}

func themeStyles(t Theme) styles {
	return styles{
		header:  lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1),
		label:   lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		value:   lipgloss.NewStyle().Foreground(t.Text),
		running: lipgloss.NewStyle().Foreground(t.Success).Bold(true),
		paused:  lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		failed:  lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		graph:   lipgloss.NewStyle().Foreground(t.Secondary).Padding(1, 0),
		canvas:  lipgloss.NewStyle().Foreground(t.Primary).Padding(1, 2),
		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(1, 2).
			Width(46),
		hint: lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1),
	}
}

// ProgressBar renders a bar of the given width filled to percent in [0, 1].
func ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// SparklineChart renders values as one row of block characters, sampling
// down to width.
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / rng
		idx := int(norm * float64(len(chars)-1))
		idx = max(0, min(idx, len(chars)-1))
		b.WriteRune(chars[idx])
	}
	return b.String()
}
