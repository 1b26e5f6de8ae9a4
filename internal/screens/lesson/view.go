package lesson

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/luminary/internal/journey"
	"github.com/abhisek/luminary/internal/subjects"
	"github.com/abhisek/luminary/internal/ui/components"
	"github.com/abhisek/luminary/internal/ui/layout"
	"github.com/abhisek/luminary/internal/ui/theme"
)

func subjectColor(s subjects.Subject) color.Color {
	return theme.SubjectColor(s.ThemeColor)
}

func (s *Screen) View(width, height int) string {
	switch s.phase {
	case phaseIntro:
		return s.renderIntro(width, height)
	case phaseQuiz:
		return s.renderQuiz(width, height)
	}
	return s.renderChat(width, height)
}

func (s *Screen) renderIntro(width, height int) string {
	cw := components.ContentWidth(width)
	accent := subjectColor(s.subject)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(accent).Bold(true).
		Render(s.subject.Icon + "  " + s.subject.Character))
	b.WriteString("\n")
	b.WriteString(theme.Quote.Render("“" + s.subject.Quote + "”"))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Width(cw - 6).Render(s.subject.Greeting))
	if !layout.IsCompactHeight(height) && s.subject.PassionateIntro != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Body.Width(cw - 6).Render(s.subject.PassionateIntro))
	}
	b.WriteString("\n\n")
	b.WriteString(theme.Hint.Render("Press Enter to begin."))

	return components.Center(components.Card(b.String(), accent, cw), width, height)
}

func (s *Screen) renderQuiz(width, height int) string {
	cw := components.ContentWidth(width)
	st := s.tracker.State()
	total := len(s.subject.Questions)
	current := min(st.CurrentQuestionIndex+1, total)

	var b strings.Builder
	b.WriteString(theme.Hint.Render(questionCounter(current, total)))
	b.WriteString("\n")
	steps := components.QuizProgress(st.CurrentQuestionIndex, total, cw-6)
	steps.Accent = subjectColor(s.subject)
	b.WriteString(steps.View())
	b.WriteString("\n\n")
	b.WriteString(s.quiz.View())
	if s.cheer != "" {
		b.WriteString("\n")
		b.WriteString(theme.Quote.Render(s.cheer))
	}

	return components.Center(components.Card(b.String(), subjectColor(s.subject), cw), width, height)
}

func (s *Screen) renderChat(width, height int) string {
	cw := components.ContentWidth(width)
	s.input.SetWidth(cw - 4)

	inputBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw).
		Render(s.input.View())

	status := ""
	if s.loading {
		status = theme.Hint.Render(s.subject.Character + " is thinking...")
	}

	rows := []string{}
	if st := s.tracker.State(); st.Stage == journey.StageDiagnosing {
		rows = append(rows, components.Steps{
			Label:  "getting to know you",
			Done:   st.DiagnosticTurn - 1,
			Total:  journey.MaxDiagnosticTurns,
			Accent: subjectColor(s.subject),
			Width:  cw,
		}.View())
	}

	logHeight := height - lipgloss.Height(inputBox) - len(rows) - 2
	rows = append(rows, s.chat.View(cw, max(logHeight, 1)), status, inputBox)

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, content)
}

func questionCounter(current, total int) string {
	return fmt.Sprintf("Question %d of %d", current, total)
}
