package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Color palette: candlelit study, warm accents on a midnight background.
var (
	Primary   = lipgloss.Color("#A78BFA") // Lavender
	Secondary = lipgloss.Color("#38BDF8") // Sky
	Accent    = lipgloss.Color("#FBBF24") // Amber
	Success   = lipgloss.Color("#34D399") // Emerald
	Error     = lipgloss.Color("#FB7185") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgDark    = lipgloss.Color("#0B1020") // Midnight
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Level badge colors.
var (
	LevelBeginner     = lipgloss.Color("#34D399")
	LevelIntermediate = lipgloss.Color("#38BDF8")
	LevelAdvanced     = lipgloss.Color("#F472B6")
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Quote = lipgloss.NewStyle().
		Foreground(Accent).
		Italic(true)
)

// Chat roles
var (
	TutorName = lipgloss.NewStyle().
			Bold(true)

	LearnerName = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	SystemLine = lipgloss.NewStyle().
			Foreground(TextDim).
			Italic(true)

	ErrorLine = lipgloss.NewStyle().
			Foreground(Error)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Chosen = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)
)

// SubjectColor parses a subject's "#RRGGBB" theme color, falling back to
// Primary when hex is empty.
func SubjectColor(hex string) color.Color {
	if hex == "" {
		return Primary
	}
	return lipgloss.Color(hex)
}

// LevelBadge renders a level tag as a colored pill. Unknown levels render
// dimmed.
func LevelBadge(level string) string {
	var c color.Color
	switch level {
	case "beginner":
		c = LevelBeginner
	case "intermediate":
		c = LevelIntermediate
	case "advanced":
		c = LevelAdvanced
	default:
		return Hint.Render("new")
	}
	return lipgloss.NewStyle().
		Foreground(BgDark).
		Background(c).
		Bold(true).
		Padding(0, 1).
		Render(level)
}
