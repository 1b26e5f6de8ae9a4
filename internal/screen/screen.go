package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/luminary/internal/ui/layout"
)

// Screen is one page of the terminal app.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is implemented by screens that show a short status, such
// as the learner's level, on the right of the header.
type StatusProvider interface {
	Status() string
}

// Guard is implemented by screens that must not be left right now, such
// as a lesson waiting on the tutor's reply.
type Guard interface {
	CanLeave() bool
}
