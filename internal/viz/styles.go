package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

// StatusStyle colors a solve status the way the live view and CLI show it.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case "converged":
		return fg(CurrentTheme.Success).Bold(true)
	case "capped":
		return fg(CurrentTheme.Warning).Bold(true)
	default:
		return fg(CurrentTheme.Error).Bold(true)
	}
}

// ProgressBar renders fraction in [0, 1] as a bar of the given width.
func ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return fg(CurrentTheme.Primary).Render(strings.Repeat("█", filled)) +
		fg(CurrentTheme.Muted).Render(strings.Repeat("░", width-filled))
}

// SparklineChart renders the last width values as a one-line bar chart.
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
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

	var result strings.Builder
	for _, v := range values {
		idx := int((v - lo) / rng * float64(len(chars)-1))
		idx = max(0, min(idx, len(chars)-1))
		result.WriteRune(chars[idx])
	}
	return fg(CurrentTheme.Accent).Render(result.String())
}

func Separator(width int) string {
	mid := width / 2
	left := strings.Repeat("─", max(0, mid-3))
	right := strings.Repeat("─", max(0, width-mid-3))
	return fg(CurrentTheme.Muted).Render(left + " ◆ " + right)
}
