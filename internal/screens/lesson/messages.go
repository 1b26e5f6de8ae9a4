package lesson

import (
	"time"

	"github.com/abhisek/luminary/internal/tutor"
)

// replyMsg carries the outcome of an asynchronous tutor turn.
type replyMsg struct {
	reply *tutor.Reply
	err   error
}

// quizAdvanceMsg fires after the pause that follows a quiz answer.
type quizAdvanceMsg struct {
	option int
}

// quizAdvanceDelay is how long a chosen answer stays on screen.
const quizAdvanceDelay = time.Second

// encouragements are shown after a quiz answer. They never reveal whether
// the answer was right; the quiz only places the learner.
var encouragements = []string{
	"Interesting choice!",
	"I see where you're coming from.",
	"Ah, let me consider that...",
	"That tells me something!",
	"Good thinking!",
}
