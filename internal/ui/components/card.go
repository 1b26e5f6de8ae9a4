package components

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/luminary/internal/ui/theme"
)

// ContentWidth returns the width used for centered content, capped so long
// tutor replies stay readable on wide terminals.
func ContentWidth(width int) int {
	w := width - 8
	return min(max(w, 40), 90)
}

// Card wraps content in a rounded border tinted with accent.
func Card(content string, accent color.Color, width int) string {
	if accent == nil {
		accent = theme.Border
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 2).
		Width(width).
		Render(content)
}

// Center places content in the middle of a width x height area.
func Center(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
