package journey

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuestions() []QuizQuestion {
	q := QuizQuestion{
		Question: "What keeps the Moon in orbit?",
		Options: []QuizOption{
			{Text: "Magic", Level: LevelBeginner},
			{Text: "Gravity", Level: LevelIntermediate},
			{Text: "Curvature of spacetime", Level: LevelAdvanced},
		},
		CorrectIndex: 1,
	}
	return []QuizQuestion{q, q, q}
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("quiz")
	require.NoError(t, err)
	assert.Equal(t, MethodQuiz, m)

	m, err = ParseMethod("conversation")
	require.NoError(t, err)
	assert.Equal(t, MethodConversation, m)

	_, err = ParseMethod("telepathy")
	assert.Error(t, err)
}

func TestNewAssessment(t *testing.T) {
	a, err := NewAssessment(MethodConversation, nil)
	require.NoError(t, err)
	assert.Equal(t, MethodConversation, a.Method())

	a, err = NewAssessment(MethodQuiz, sampleQuestions())
	require.NoError(t, err)
	assert.Equal(t, MethodQuiz, a.Method())

	_, err = NewAssessment(MethodQuiz, nil)
	assert.Error(t, err)

	_, err = NewAssessment(Method("nope"), nil)
	assert.Error(t, err)
}

func TestConversationAssessmentBegin(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(ctx, NewMemoryStore(), testKey)

	require.NoError(t, ConversationAssessment{}.Begin(ctx, tr))
	assert.Equal(t, StageDiagnosing, tr.State().Stage)
	assert.Equal(t, 1, tr.State().DiagnosticTurn)
}

func TestQuizAssessment_ScoresAfterLastQuestion(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tr := NewTracker(ctx, store, testKey)
	quiz := QuizAssessment{Questions: sampleQuestions()}

	require.NoError(t, quiz.Begin(ctx, tr))

	done, err := quiz.Answer(ctx, tr, 2)
	require.NoError(t, err)
	assert.False(t, done)
	done, err = quiz.Answer(ctx, tr, 2)
	require.NoError(t, err)
	assert.False(t, done)
	done, err = quiz.Answer(ctx, tr, 1)
	require.NoError(t, err)
	assert.True(t, done)

	st := tr.State()
	assert.Equal(t, StageLearning, st.Stage)
	assert.Equal(t, LevelAdvanced, st.Level) // mean 2.67
	assert.Equal(t, 1.0, st.LevelConfidence)

	rec, err := store.LoadJourney(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, LevelAdvanced, rec.Level)
}

func TestQuizAssessment_Rejects(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(ctx, NewMemoryStore(), testKey)
	quiz := QuizAssessment{Questions: sampleQuestions()}

	_, err := quiz.Answer(ctx, tr, 0)
	require.ErrorIs(t, err, ErrInvalidTransition, "not in quiz yet")

	require.NoError(t, quiz.Begin(ctx, tr))
	_, err = quiz.Answer(ctx, tr, 7)
	require.Error(t, err)
	assert.Zero(t, tr.State().CurrentQuestionIndex)
}
