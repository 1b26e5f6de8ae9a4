// Package lesson is the screen where a learner meets a tutor, gets placed
// at a level and then chats.
package lesson

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/luminary/internal/journey"
	"github.com/abhisek/luminary/internal/llm"
	"github.com/abhisek/luminary/internal/screen"
	"github.com/abhisek/luminary/internal/screens/history"
	"github.com/abhisek/luminary/internal/subjects"
	"github.com/abhisek/luminary/internal/tutor"
	"github.com/abhisek/luminary/internal/ui/components"
	"github.com/abhisek/luminary/internal/ui/layout"
)

// errNoTutor is shown when a chat message is sent without a model configured.
var errNoTutor = errors.New("no language model is configured; set an API key and restart")

// Deps are the services a lesson needs.
type Deps struct {
	Store     journey.Store
	Tutor     *tutor.Service // nil when no model is configured
	LearnerID string
	Method    journey.Method
	Logger    *zap.Logger
	// History is nil when the journey backend keeps no transition log.
	History history.Source
}

// phase is what the screen is showing. It follows the journey stage except
// that a quiz answer lingers in phaseQuiz until the advance tick.
type phase int

const (
	phaseIntro phase = iota
	phaseQuiz
	phaseChat
)

// Screen is the lesson screen for one subject.
type Screen struct {
	deps    Deps
	subject subjects.Subject
	tracker *journey.Tracker
	log     *zap.Logger

	phase   phase
	quiz    components.MultiChoice
	cheer   string
	chat    components.ChatLog
	history []llm.Message
	input   components.TextInput
	loading bool

	// pick returns a random index below n. Tests replace it.
	pick func(n int) int
}

var (
	_ screen.Screen          = (*Screen)(nil)
	_ screen.KeyHintProvider = (*Screen)(nil)
	_ screen.StatusProvider  = (*Screen)(nil)
)

// New opens the learner's journey for subject. A learner with a saved
// level goes straight to the chat.
func New(deps Deps, subject subjects.Subject) *Screen {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if deps.Method == "" {
		deps.Method = journey.MethodConversation
	}

	key := journey.Key{LearnerID: deps.LearnerID, SubjectID: subject.ID}
	s := &Screen{
		deps:    deps,
		subject: subject,
		tracker: journey.NewTracker(context.Background(), deps.Store, key, journey.WithLogger(log)),
		log:     log.Named("lesson").With(zap.String("subject", subject.ID)),
		pick:    rand.IntN,
	}
	s.resetView()
	return s
}

// resetView rebuilds the view for the tracker's current stage.
func (s *Screen) resetView() {
	s.history = nil
	s.loading = false
	s.cheer = ""
	s.chat = components.ChatLog{
		TutorName:  s.subject.Character,
		TutorColor: subjectColor(s.subject),
	}
	s.input = components.NewTextInput(fmt.Sprintf("Ask anything about %s...", s.subject.Name), 2000)

	st := s.tracker.State()
	switch st.Stage {
	case journey.StageLearning:
		s.phase = phaseChat
		if s.tracker.IsReturningUser() {
			s.chat.Append(components.RoleSystem, fmt.Sprintf(
				"Welcome back! Continuing your %s journey at the %s level. Press ctrl+r to start fresh.",
				s.subject.Name, st.Level))
		}
		s.chat.Append(components.RoleSystem, fmt.Sprintf("Welcome! I'm your %s tutor. Ask me anything!", s.subject.Name))
	default:
		s.phase = phaseIntro
	}
}

func (s *Screen) Init() tea.Cmd {
	if s.phase == phaseChat {
		return s.input.Init()
	}
	return nil
}

func (s *Screen) Title() string {
	return s.subject.Name
}

// Status shows the assessed level, or the assessment progress.
func (s *Screen) Status() string {
	st := s.tracker.State()
	switch st.Stage {
	case journey.StageLearning:
		return string(st.Level)
	case journey.StageDiagnosing:
		return fmt.Sprintf("getting to know you %d/%d", st.DiagnosticTurn, journey.MaxDiagnosticTurns)
	case journey.StageQuiz:
		return fmt.Sprintf("question %d/%d", min(st.CurrentQuestionIndex+1, len(s.subject.Questions)), len(s.subject.Questions))
	}
	return ""
}

func (s *Screen) KeyHints() []layout.KeyHint {
	switch s.phase {
	case phaseIntro:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Begin"},
			{Key: "Esc", Description: "Back"},
		}
	case phaseQuiz:
		return []layout.KeyHint{
			{Key: "A-D", Description: "Answer"},
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Esc", Description: "Back"},
		}
	}
	if s.loading {
		return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Ctrl+R", Description: "Start fresh"},
		{Key: "Esc", Description: "Back"},
	}
}

// CanLeave keeps the learner on the screen while a tutor reply or a
// chosen quiz answer is still pending, so neither lands on another screen.
func (s *Screen) CanLeave() bool {
	if s.loading {
		return false
	}
	return !(s.phase == phaseQuiz && s.quiz.Submitted)
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case replyMsg:
		return s, s.handleReply(msg)
	case quizAdvanceMsg:
		return s, s.handleQuizAdvance(msg)
	case tea.KeyMsg:
		if msg.String() == "ctrl+r" {
			if s.loading {
				return s, nil
			}
			return s, s.startFresh()
		}
		switch s.phase {
		case phaseIntro:
			if msg.String() == "enter" {
				return s, s.begin()
			}
			return s, nil
		case phaseQuiz:
			return s, s.handleQuizKey(msg)
		case phaseChat:
			if msg.String() == "enter" {
				return s, s.send()
			}
		}
	}

	if s.phase == phaseChat {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// begin leaves the intro with the configured assessment.
func (s *Screen) begin() tea.Cmd {
	ctx := context.Background()
	assessment, err := journey.NewAssessment(s.deps.Method, s.subject.Questions)
	if err != nil {
		s.log.Warn("falling back to conversation assessment", zap.Error(err))
		assessment = journey.ConversationAssessment{}
	}
	if err := assessment.Begin(ctx, s.tracker); err != nil {
		s.log.Warn("begin assessment", zap.Error(err))
		return nil
	}

	if assessment.Method() == journey.MethodQuiz {
		s.phase = phaseQuiz
		s.loadQuestion()
		return nil
	}

	s.phase = phaseChat
	// The opener is display only; it never enters the model history.
	if s.subject.DiagnosticOpener != "" {
		s.chat.Append(components.RoleTutor, s.subject.DiagnosticOpener)
	}
	return s.input.Init()
}

func (s *Screen) loadQuestion() {
	idx := s.tracker.State().CurrentQuestionIndex
	if idx >= len(s.subject.Questions) {
		return
	}
	q := s.subject.Questions[idx]
	opts := make([]string, len(q.Options))
	for i, o := range q.Options {
		opts[i] = o.Text
	}
	s.quiz = components.NewMultiChoice(q.Question, opts)
	s.cheer = ""
}

func (s *Screen) handleQuizKey(msg tea.KeyMsg) tea.Cmd {
	if s.quiz.Submitted {
		return nil
	}
	s.quiz, _ = s.quiz.Update(msg)
	if !s.quiz.Submitted {
		return nil
	}
	s.cheer = encouragements[s.pick(len(encouragements))]
	option := s.quiz.ChosenIndex
	return tea.Tick(quizAdvanceDelay, func(time.Time) tea.Msg {
		return quizAdvanceMsg{option: option}
	})
}

func (s *Screen) handleQuizAdvance(msg quizAdvanceMsg) tea.Cmd {
	if s.phase != phaseQuiz {
		return nil
	}
	quiz := journey.QuizAssessment{Questions: s.subject.Questions}
	done, err := quiz.Answer(context.Background(), s.tracker, msg.option)
	if err != nil {
		s.log.Warn("record quiz answer", zap.Error(err))
		return nil
	}
	if !done {
		s.loadQuestion()
		return nil
	}

	s.phase = phaseChat
	s.announceLevel(s.tracker.State().Level)
	return s.input.Init()
}

// announceLevel tells the learner where the assessment placed them.
func (s *Screen) announceLevel(level journey.Level) {
	s.chat.Append(components.RoleSystem, fmt.Sprintf("Assessment complete! You're starting at the %s level.", level))
	if desc := s.subject.LevelDescription(level); desc != "" {
		s.chat.Append(components.RoleTutor, desc)
	}
}

// send submits the input as the learner's next message.
func (s *Screen) send() tea.Cmd {
	text := s.input.Value()
	if text == "" || s.loading {
		return nil
	}
	s.input.Reset()
	s.chat.Append(components.RoleLearner, text)
	s.history = append(s.history, llm.Message{Role: llm.RoleUser, Content: text})

	if s.deps.Tutor == nil {
		s.failTurn(errNoTutor)
		return nil
	}

	s.loading = true
	s.input.SetDisabled(true)

	svc, subject, tracker := s.deps.Tutor, s.subject, s.tracker
	history := append([]llm.Message(nil), s.history...)
	return func() tea.Msg {
		reply, err := svc.Reply(context.Background(), subject, tracker, history)
		return replyMsg{reply: reply, err: err}
	}
}

func (s *Screen) handleReply(msg replyMsg) tea.Cmd {
	if !s.loading {
		return nil
	}
	s.loading = false
	s.input.SetDisabled(false)

	if msg.err != nil {
		s.log.Warn("tutor reply failed", zap.Error(msg.err))
		s.failTurn(msg.err)
		return nil
	}

	s.chat.Append(components.RoleTutor, msg.reply.Content)
	s.history = append(s.history, llm.Message{Role: llm.RoleAssistant, Content: msg.reply.Content})
	if msg.reply.Completed {
		s.announceLevel(msg.reply.State.Level)
	}
	return nil
}

// failTurn drops the unanswered learner message from the history so a retry
// does not send it twice, and tells the learner.
func (s *Screen) failTurn(err error) {
	if n := len(s.history); n > 0 && s.history[n-1].Role == llm.RoleUser {
		s.history = s.history[:n-1]
	}
	s.chat.Append(components.RoleError, fmt.Sprintf("Error: %v. Please try again.", err))
}

// startFresh forgets the saved level and returns to the intro.
func (s *Screen) startFresh() tea.Cmd {
	s.tracker.Reset(context.Background())
	s.log.Info("journey reset by learner")
	s.resetView()
	return nil
}
