package lesson

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/luminary/internal/journey"
	"github.com/abhisek/luminary/internal/llm"
	"github.com/abhisek/luminary/internal/subjects"
	"github.com/abhisek/luminary/internal/tutor"
	"github.com/abhisek/luminary/internal/ui/components"
)

const learner = "learner-1"

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

var (
	enterKey = tea.KeyPressMsg{Code: tea.KeyEnter}
	ctrlR    = tea.KeyPressMsg{Code: 'r', Mod: tea.ModCtrl}
)

func physics(t *testing.T) subjects.Subject {
	t.Helper()
	s, ok := subjects.Lookup("physics")
	require.True(t, ok)
	return s
}

func newScreen(t *testing.T, method journey.Method, store journey.Store, provider llm.Provider) *Screen {
	t.Helper()
	deps := Deps{Store: store, LearnerID: learner, Method: method}
	if provider != nil {
		deps.Tutor = tutor.NewService(provider, tutor.DefaultConfig(), nil)
	}
	s := New(deps, physics(t))
	s.pick = func(int) int { return 0 }
	return s
}

func typeText(s *Screen, text string) {
	for _, r := range text {
		s.Update(keyPress(r))
	}
}

// sendAndWait submits text and runs the tutor request synchronously.
func sendAndWait(t *testing.T, s *Screen, text string) {
	t.Helper()
	typeText(s, text)
	_, cmd := s.Update(enterKey)
	require.NotNil(t, cmd)
	s.Update(cmd())
}

func lastLine(s *Screen) components.ChatLine {
	return s.chat.Lines[len(s.chat.Lines)-1]
}

func hasLine(s *Screen, role components.ChatRole, substr string) bool {
	for _, l := range s.chat.Lines {
		if l.Role == role && strings.Contains(l.Text, substr) {
			return true
		}
	}
	return false
}

func TestIntro_EnterStartsConversation(t *testing.T) {
	s := newScreen(t, journey.MethodConversation, journey.NewMemoryStore(), llm.NewMockProvider())
	assert.Equal(t, phaseIntro, s.phase)
	assert.Contains(t, s.View(100, 30), "Albert Einstein")

	s.Update(enterKey)

	assert.Equal(t, phaseChat, s.phase)
	assert.Equal(t, journey.StageDiagnosing, s.tracker.State().Stage)
	assert.Equal(t, components.RoleTutor, lastLine(s).Role, "opener is shown")
	assert.Empty(t, s.history, "opener stays out of the model history")
}

func TestChat_DiagnosisCompletes(t *testing.T) {
	store := journey.NewMemoryStore()
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: "Splendid answer!\n" + journey.FormatTrailer(journey.Metadata{Confidence: 0.9, SuggestedLevel: journey.LevelAdvanced}),
	})
	s := newScreen(t, journey.MethodConversation, store, mock)
	s.Update(enterKey)

	sendAndWait(t, s, "spacetime curvature")

	require.Len(t, s.history, 2)
	assert.Equal(t, "spacetime curvature", s.history[0].Content)
	assert.Equal(t, "Splendid answer!", s.history[1].Content)
	assert.False(t, s.loading)

	st := s.tracker.State()
	assert.Equal(t, journey.StageLearning, st.Stage)
	assert.Equal(t, journey.LevelAdvanced, st.Level)
	assert.True(t, hasLine(s, components.RoleSystem, "advanced level"))
	assert.Equal(t, "advanced", s.Status())

	rec, err := store.LoadJourney(context.Background(), s.tracker.Key())
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, journey.LevelAdvanced, rec.Level)
}

func TestChat_InputDisabledWhileLoading(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: "Hmm."})
	s := newScreen(t, journey.MethodConversation, journey.NewMemoryStore(), mock)
	s.Update(enterKey)

	typeText(s, "hello")
	_, cmd := s.Update(enterKey)
	require.NotNil(t, cmd)
	assert.True(t, s.loading)
	assert.True(t, s.input.Disabled())
	assert.False(t, s.CanLeave(), "leaving would drop the pending reply")
	assert.Equal(t, "Quit", s.KeyHints()[0].Description)

	typeText(s, "again")
	_, second := s.Update(enterKey)
	assert.Nil(t, second, "no second request while one is in flight")

	s.Update(cmd())
	assert.False(t, s.input.Disabled())
	assert.True(t, s.CanLeave())
	assert.Equal(t, 1, mock.CallCount())
}

func TestChat_ErrorIsShownAndRolledBack(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: errors.New("upstream down")})
	s := newScreen(t, journey.MethodConversation, journey.NewMemoryStore(), mock)
	s.Update(enterKey)

	sendAndWait(t, s, "hello")

	assert.Empty(t, s.history)
	assert.False(t, s.loading)
	line := lastLine(s)
	assert.Equal(t, components.RoleError, line.Role)
	assert.Contains(t, line.Text, "upstream down")
	assert.Contains(t, line.Text, "Please try again.")
	assert.Equal(t, 1, s.tracker.State().DiagnosticTurn, "failed turn does not advance")
}

func TestChat_WithoutTutor(t *testing.T) {
	s := newScreen(t, journey.MethodConversation, journey.NewMemoryStore(), nil)
	s.Update(enterKey)

	typeText(s, "hello")
	_, cmd := s.Update(enterKey)

	assert.Nil(t, cmd)
	assert.Empty(t, s.history)
	assert.Contains(t, lastLine(s).Text, "API key")
}

func TestQuiz_PlacesLearner(t *testing.T) {
	store := journey.NewMemoryStore()
	s := newScreen(t, journey.MethodQuiz, store, nil)
	s.Update(enterKey)
	require.Equal(t, phaseQuiz, s.phase)
	assert.Contains(t, s.View(100, 40), "Question 1 of 5")

	for i := range s.subject.Questions {
		_, cmd := s.Update(keyPress('d'))
		require.NotNil(t, cmd, "question %d", i)
		assert.Equal(t, encouragements[0], s.cheer)

		// A second key during the pause is ignored, and so is leaving.
		_, again := s.Update(keyPress('a'))
		assert.Nil(t, again)
		assert.False(t, s.CanLeave())

		s.Update(quizAdvanceMsg{option: s.quiz.ChosenIndex})
	}

	assert.Equal(t, phaseChat, s.phase)
	st := s.tracker.State()
	assert.Equal(t, journey.StageLearning, st.Stage)
	assert.Equal(t, journey.LevelAdvanced, st.Level)
	assert.True(t, hasLine(s, components.RoleSystem, "Assessment complete"))

	rec, err := store.LoadJourney(context.Background(), s.tracker.Key())
	require.NoError(t, err)
	assert.Equal(t, journey.LevelAdvanced, rec.Level)
}

func TestReturningLearner(t *testing.T) {
	store := journey.NewMemoryStore()
	key := journey.Key{LearnerID: learner, SubjectID: "physics"}
	require.NoError(t, store.SaveJourney(context.Background(), key, journey.Record{Level: journey.LevelIntermediate, Version: journey.RecordVersion}))

	s := newScreen(t, journey.MethodConversation, store, llm.NewMockProvider())

	assert.Equal(t, phaseChat, s.phase)
	assert.Equal(t, "intermediate", s.Status())
	assert.True(t, hasLine(s, components.RoleSystem, "Welcome back"))
}

func TestStartFresh(t *testing.T) {
	store := journey.NewMemoryStore()
	key := journey.Key{LearnerID: learner, SubjectID: "physics"}
	require.NoError(t, store.SaveJourney(context.Background(), key, journey.Record{Level: journey.LevelBeginner, Version: journey.RecordVersion}))

	s := newScreen(t, journey.MethodConversation, store, llm.NewMockProvider())
	s.Update(ctrlR)

	assert.Equal(t, phaseIntro, s.phase)
	assert.Empty(t, s.chat.Lines)
	assert.Empty(t, s.Status())

	rec, err := store.LoadJourney(context.Background(), key)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestKeyHintsFollowPhase(t *testing.T) {
	s := newScreen(t, journey.MethodConversation, journey.NewMemoryStore(), nil)
	assert.Equal(t, "Begin", s.KeyHints()[0].Description)
	s.Update(enterKey)
	assert.Equal(t, "Send", s.KeyHints()[0].Description)
}
