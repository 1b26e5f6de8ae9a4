package components

import (
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/luminary/internal/ui/theme"
)

// Steps is a segmented indicator for short fixed-length sequences: the
// quiz questions, or the turns of a diagnostic conversation.
type Steps struct {
	Label string
	Done  int
	Total int
	// Accent colors the completed segments. Defaults to theme.Secondary.
	Accent color.Color
	Width  int
}

// QuizProgress is the indicator shown above a quiz question.
func QuizProgress(answered, total, width int) Steps {
	return Steps{Done: answered, Total: total, Width: width}
}

// Fraction reports Done/Total clamped to [0, 1].
func (s Steps) Fraction() float64 {
	if s.Total <= 0 {
		return 0
	}
	return min(max(float64(s.Done)/float64(s.Total), 0), 1)
}

// View renders one segment per step, completed ones filled and the
// current one outlined.
func (s Steps) View() string {
	if s.Total <= 0 {
		return ""
	}
	accent := s.Accent
	if accent == nil {
		accent = theme.Secondary
	}

	label := ""
	if s.Label != "" {
		label = theme.Hint.Render(s.Label) + "  "
	}

	// Each segment is followed by a one-column gap.
	seg := max((s.Width-lipgloss.Width(label))/s.Total-1, 1)
	done := min(max(s.Done, 0), s.Total)

	filled := lipgloss.NewStyle().Foreground(accent)
	current := lipgloss.NewStyle().Foreground(theme.Accent)
	empty := lipgloss.NewStyle().Foreground(theme.Border)

	parts := make([]string, s.Total)
	for i := range s.Total {
		switch {
		case i < done:
			parts[i] = filled.Render(strings.Repeat("━", seg))
		case i == done:
			parts[i] = current.Render(strings.Repeat("─", seg))
		default:
			parts[i] = empty.Render(strings.Repeat("─", seg))
		}
	}
	return label + strings.Join(parts, " ")
}
