package journey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateValidate(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		wantErr error
	}{
		{"intro", State{Stage: StageIntro}, nil},
		{"learning with level", State{Stage: StageLearning, Level: LevelAdvanced, LevelConfidence: 1}, nil},
		{"quiz with answers", State{Stage: StageQuiz, CurrentQuestionIndex: 2, QuizAnswers: []Level{LevelBeginner, LevelAdvanced}}, nil},
		{"unknown stage", State{Stage: "graduated"}, ErrInvalidState},
		{"empty stage", State{}, ErrInvalidState},
		{"unknown level", State{Stage: StageLearning, Level: "expert"}, ErrInvalidLevel},
		{"unknown quiz answer", State{Stage: StageQuiz, QuizAnswers: []Level{"guru"}}, ErrInvalidLevel},
		{"negative turn", State{Stage: StageDiagnosing, DiagnosticTurn: -1}, ErrInvalidState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.state.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
