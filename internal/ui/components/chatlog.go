package components

import (
	"image/color"
	"strings"

	"github.com/abhisek/luminary/internal/ui/theme"
)

// ChatRole tags a line in the chat log.
type ChatRole int

const (
	RoleTutor ChatRole = iota
	RoleLearner
	RoleSystem
	RoleError
)

// ChatLine is one rendered entry of a conversation.
type ChatLine struct {
	Role ChatRole
	Text string
}

// ChatLog renders a conversation transcript, keeping the newest lines
// visible when it overflows.
type ChatLog struct {
	Lines      []ChatLine
	TutorName  string
	TutorColor color.Color
}

// Append adds a line.
func (c *ChatLog) Append(role ChatRole, text string) {
	c.Lines = append(c.Lines, ChatLine{Role: role, Text: text})
}

// View renders the log into width x height, dropping the oldest rows.
func (c ChatLog) View(width, height int) string {
	if width < 10 {
		width = 10
	}
	body := theme.Body.Width(width)

	var rows []string
	for _, l := range c.Lines {
		var block string
		switch l.Role {
		case RoleTutor:
			name := c.TutorName
			if name == "" {
				name = "Tutor"
			}
			fg := c.TutorColor
			if fg == nil {
				fg = theme.Primary
			}
			block = theme.TutorName.Foreground(fg).Render(name) + "\n" + body.Render(l.Text)
		case RoleLearner:
			block = theme.LearnerName.Render("You") + "\n" + body.Render(l.Text)
		case RoleSystem:
			block = theme.SystemLine.Width(width).Render(l.Text)
		case RoleError:
			block = theme.ErrorLine.Width(width).Render(l.Text)
		}
		rows = append(rows, strings.Split(block, "\n")...)
		rows = append(rows, "")
	}

	if height > 0 && len(rows) > height {
		rows = rows[len(rows)-height:]
	}
	return strings.Join(rows, "\n")
}
