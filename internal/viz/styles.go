package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	canvas   lipgloss.Style
	panel    lipgloss.Style
	header   lipgloss.Style
	label    lipgloss.Style
	value    lipgloss.Style
	help     lipgloss.Style
	loaded   lipgloss.Style
	freeFall lipgloss.Style
	warning  lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		canvas: lipgloss.NewStyle().Padding(1, 2).Foreground(t.Chamber),
		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(1, 2).
			Width(42),
		header:   lipgloss.NewStyle().Foreground(t.Header).Bold(true).MarginBottom(1),
		label:    lipgloss.NewStyle().Foreground(t.Label).Width(14),
		value:    lipgloss.NewStyle().Foreground(t.Value),
		help:     lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
		loaded:   lipgloss.NewStyle().Foreground(t.Loaded).Bold(true),
		freeFall: lipgloss.NewStyle().Foreground(t.FreeFall).Bold(true),
		warning:  lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
	}
}

// ProgressBar renders a bar filled to fraction of width.
func ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	filled = max(0, min(filled, width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Sparkline renders the last width values, scaled between their min and max.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - lo) / rng * float64(len(chars)-1)))
		b.WriteRune(chars[max(0, min(idx, len(chars)-1))])
	}
	return b.String()
}
