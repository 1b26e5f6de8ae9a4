package home

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/luminary/internal/ui/theme"
)

const titleFull = ` ██╗     ██╗   ██╗███╗   ███╗██╗███╗   ██╗ █████╗ ██████╗ ██╗   ██╗
 ██║     ██║   ██║████╗ ████║██║████╗  ██║██╔══██╗██╔══██╗╚██╗ ██╔╝
 ██║     ██║   ██║██╔████╔██║██║██╔██╗ ██║███████║██████╔╝ ╚████╔╝
 ██║     ██║   ██║██║╚██╔╝██║██║██║╚██╗██║██╔══██║██╔══██╗  ╚██╔╝
 ███████╗╚██████╔╝██║ ╚═╝ ██║██║██║ ╚████║██║  ██║██║  ██║   ██║
 ╚══════╝ ╚═════╝ ╚═╝     ╚═╝╚═╝╚═╝  ╚═══╝╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝`

const titleCompact = "L · U · M · I · N · A · R · Y"

// titleFullWidth is the widest row of titleFull.
const titleFullWidth = 67

// renderTitle returns the block-letter title, or the compact fallback when
// it would not fit in cw.
func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Accent).
		Bold(true)

	art := titleFull
	if compact || cw < titleFullWidth {
		art = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(art))
}

func renderTagline(cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(theme.Quote.Render("Learn from the minds that shaped the world."))
}

// renderLLMBanner warns that chat needs an API key. The quiz still works.
func renderLLMBanner(cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render("⚠ Set an LLM API key to chat with your tutor (see luminary --help)")
}

// renderSubjectList renders the subject menu in a rounded box.
func renderSubjectList(menu string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw).
		Padding(1, 2).
		Render(strings.TrimRight(menu, "\n"))
}

// renderFrame wraps content in a double border, centered in the area.
func renderFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
