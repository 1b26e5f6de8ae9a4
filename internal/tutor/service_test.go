package tutor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/luminary/internal/journey"
	"github.com/abhisek/luminary/internal/llm"
)

var learnerKey = journey.Key{LearnerID: "learner-1", SubjectID: "physics"}

func userSays(text string) []llm.Message {
	return []llm.Message{{Role: llm.RoleUser, Content: text}}
}

func trailer(confidence float64, level journey.Level) string {
	return journey.FormatTrailer(journey.Metadata{Confidence: confidence, SuggestedLevel: level})
}

func TestReply_FirstMessageStartsDiagnosis(t *testing.T) {
	ctx := context.Background()
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: "Marvellous! What do you know about light?\n" + trailer(0.3, journey.LevelBeginner),
	})
	svc := NewService(mock, DefaultConfig(), nil)
	tr := journey.NewTracker(ctx, journey.NewMemoryStore(), learnerKey)

	reply, err := svc.Reply(ctx, physics(t), tr, userSays("Hi Albert!"))
	require.NoError(t, err)

	assert.Equal(t, "Marvellous! What do you know about light?", reply.Content)
	require.NotNil(t, reply.Metadata)
	assert.False(t, reply.Completed)
	assert.Equal(t, journey.StageDiagnosing, reply.State.Stage)
	assert.Equal(t, 2, reply.State.DiagnosticTurn)
	assert.Equal(t, 0.3, reply.State.LevelConfidence)

	call, ok := mock.LastCall()
	require.True(t, ok)
	assert.Contains(t, call.System, "diagnostic turn 1 of at most 5")
	assert.Equal(t, 1000, call.MaxTokens)
	assert.Equal(t, 0.7, call.Temperature)
}

func TestReply_ConfidentTurnCompletes(t *testing.T) {
	ctx := context.Background()
	store := journey.NewMemoryStore()
	tr := journey.NewTracker(ctx, store, learnerKey)
	require.NoError(t, tr.StartDiagnosis(ctx))

	mock := llm.NewMockProvider(llm.MockResponse{
		Content: "You clearly know your relativity. " + trailer(0.9, journey.LevelAdvanced),
	})
	svc := NewService(mock, DefaultConfig(), nil)

	reply, err := svc.Reply(ctx, physics(t), tr, userSays("E equals m c squared"))
	require.NoError(t, err)

	assert.True(t, reply.Completed)
	assert.Equal(t, journey.StageLearning, reply.State.Stage)
	assert.Equal(t, journey.LevelAdvanced, reply.State.Level)

	rec, err := store.LoadJourney(ctx, learnerKey)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, journey.LevelAdvanced, rec.Level)
}

func TestReply_MissingTrailerDoesNotCountTurn(t *testing.T) {
	ctx := context.Background()
	tr := journey.NewTracker(ctx, journey.NewMemoryStore(), learnerKey)
	require.NoError(t, tr.StartDiagnosis(ctx))

	mock := llm.NewMockProvider(llm.MockResponse{Content: "Tell me more about yourself."})
	svc := NewService(mock, DefaultConfig(), nil)

	reply, err := svc.Reply(ctx, physics(t), tr, userSays("I like stars"))
	require.NoError(t, err)

	assert.Nil(t, reply.Metadata)
	assert.Equal(t, "Tell me more about yourself.", reply.Content)
	assert.Equal(t, 1, reply.State.DiagnosticTurn)
}

func TestReply_TransportFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	tr := journey.NewTracker(ctx, journey.NewMemoryStore(), learnerKey)

	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("boom")}})
	svc := NewService(mock, DefaultConfig(), nil)

	_, err := svc.Reply(ctx, physics(t), tr, userSays("hello"))
	var unavail *llm.ErrProviderUnavailable
	require.ErrorAs(t, err, &unavail)

	assert.Equal(t, journey.StageIntro, tr.State().Stage)
	assert.Zero(t, tr.State().DiagnosticTurn)
}

func TestReply_QuizMethodKeepsIntro(t *testing.T) {
	ctx := context.Background()
	tr := journey.NewTracker(ctx, journey.NewMemoryStore(), learnerKey)

	cfg := DefaultConfig()
	cfg.Method = journey.MethodQuiz
	mock := llm.NewMockProvider(llm.MockResponse{Content: "Shall we take a little quiz?"})
	svc := NewService(mock, cfg, nil)

	reply, err := svc.Reply(ctx, physics(t), tr, userSays("hello"))
	require.NoError(t, err)
	assert.Equal(t, journey.StageIntro, reply.State.Stage)

	call, _ := mock.LastCall()
	assert.NotContains(t, call.System, journey.TrailerStart)
}

func TestReply_LearningUsesLevelPrompt(t *testing.T) {
	ctx := context.Background()
	store := journey.NewMemoryStore()
	require.NoError(t, store.SaveJourney(ctx, learnerKey, journey.Record{Level: journey.LevelBeginner, Version: journey.RecordVersion}))
	tr := journey.NewTracker(ctx, store, learnerKey)

	mock := llm.NewMockProvider(llm.MockResponse{Content: "Imagine riding on a beam of light..."})
	svc := NewService(mock, DefaultConfig(), nil)

	reply, err := svc.Reply(ctx, physics(t), tr, userSays("What is light?"))
	require.NoError(t, err)
	assert.Equal(t, journey.StageLearning, reply.State.Stage)

	call, _ := mock.LastCall()
	assert.Contains(t, call.System, "Teaching strategy (beginner)")
	assert.Len(t, call.Messages, 1)
}

func TestReply_EmptyConversation(t *testing.T) {
	ctx := context.Background()
	tr := journey.NewTracker(ctx, journey.NewMemoryStore(), learnerKey)
	svc := NewService(llm.NewMockProvider(), DefaultConfig(), nil)

	_, err := svc.Reply(ctx, physics(t), tr, nil)
	require.ErrorIs(t, err, ErrEmptyConversation)
}

func TestProxy_IsStateless(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: "Good thinking.\n" + trailer(0.5, journey.LevelIntermediate),
	})
	svc := NewService(mock, DefaultConfig(), nil)
	state := journey.State{Stage: journey.StageDiagnosing, DiagnosticTurn: 2}

	reply, err := svc.Proxy(context.Background(), physics(t), state, userSays("Forces cause acceleration"))
	require.NoError(t, err)

	assert.Equal(t, "Good thinking.", reply.Content)
	require.NotNil(t, reply.Metadata)
	assert.Equal(t, journey.LevelIntermediate, reply.Metadata.SuggestedLevel)
	assert.Equal(t, state, reply.State)

	call, _ := mock.LastCall()
	assert.True(t, strings.Contains(call.System, "diagnostic turn 2 of at most 5"))
}

func TestReply_ResetWhileAnsweringDropsTurn(t *testing.T) {
	ctx := context.Background()
	store := journey.NewMemoryStore()
	tr := journey.NewTracker(ctx, store, learnerKey)

	mock := llm.NewScriptedProvider(func(llm.Request) llm.MockResponse {
		tr.Reset(ctx)
		return llm.MockResponse{Content: "Splendid! " + trailer(0.95, journey.LevelAdvanced)}
	})
	svc := NewService(mock, DefaultConfig(), nil)

	_, err := svc.Reply(ctx, physics(t), tr, userSays("I derived E=mc² myself"))
	require.ErrorIs(t, err, journey.ErrJourneyReset)

	assert.Equal(t, journey.StageIntro, tr.State().Stage)
	rec, err := store.LoadJourney(ctx, learnerKey)
	require.NoError(t, err)
	assert.Nil(t, rec)
}
