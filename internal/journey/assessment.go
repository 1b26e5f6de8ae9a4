package journey

import (
	"context"
	"fmt"
)

// Method selects how a learner's level is assessed.
type Method string

const (
	// MethodConversation assesses through a short tutor-led conversation.
	MethodConversation Method = "conversation"
	// MethodQuiz assesses through a fixed multiple-choice quiz.
	MethodQuiz Method = "quiz"
)

// ParseMethod converts a configuration value into a Method.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case MethodConversation, MethodQuiz:
		return m, nil
	}
	return "", fmt.Errorf("unknown assessment method %q (want %q or %q)", s, MethodConversation, MethodQuiz)
}

// Assessment drives a journey from the intro to the learning stage. Both
// implementations end in the same place, a level and the learning stage;
// they differ only in how turns are scored.
type Assessment interface {
	Method() Method
	// Begin leaves the intro stage.
	Begin(ctx context.Context, t *Tracker) error
}

// ConversationAssessment infers the level from metadata the tutor model
// attaches to its replies. Turns are fed with Tracker.RecordDiagnosticTurn.
type ConversationAssessment struct{}

func (ConversationAssessment) Method() Method { return MethodConversation }

func (ConversationAssessment) Begin(ctx context.Context, t *Tracker) error {
	return t.StartDiagnosis(ctx)
}

// QuizOption is one answer choice, tagged with the level it signals.
type QuizOption struct {
	Text  string `json:"text" yaml:"text"`
	Level Level  `json:"level" yaml:"level"`
}

// QuizQuestion is one multiple-choice diagnostic question.
type QuizQuestion struct {
	Question     string       `json:"question" yaml:"question"`
	Options      []QuizOption `json:"options" yaml:"options"`
	CorrectIndex int          `json:"correctIndex" yaml:"correctIndex"`
}

// QuizAssessment scores a fixed list of questions with ScoreQuiz.
type QuizAssessment struct {
	Questions []QuizQuestion
}

func (q QuizAssessment) Method() Method { return MethodQuiz }

func (q QuizAssessment) Begin(ctx context.Context, t *Tracker) error {
	return t.StartQuiz(ctx)
}

// Answer records the chosen option of the current question. After the last
// question the quiz is scored and the journey completes; done reports that.
func (q QuizAssessment) Answer(ctx context.Context, t *Tracker, optionIndex int) (done bool, err error) {
	st := t.State()
	if st.Stage != StageQuiz {
		return false, fmt.Errorf("%w: quiz answer from %s", ErrInvalidTransition, st.Stage)
	}
	if st.CurrentQuestionIndex >= len(q.Questions) {
		return false, fmt.Errorf("%w: no question %d", ErrInvalidTransition, st.CurrentQuestionIndex)
	}
	question := q.Questions[st.CurrentQuestionIndex]
	if optionIndex < 0 || optionIndex >= len(question.Options) {
		return false, fmt.Errorf("option %d out of range for question %d", optionIndex, st.CurrentQuestionIndex)
	}

	if err := t.RecordQuizAnswer(ctx, question.Options[optionIndex].Level); err != nil {
		return false, err
	}

	st = t.State()
	if st.CurrentQuestionIndex < len(q.Questions) {
		return false, nil
	}
	if err := t.CompleteQuiz(ctx, ScoreQuiz(st.QuizAnswers)); err != nil {
		return false, err
	}
	return true, nil
}

// NewAssessment returns the assessment for method. Quiz assessments use
// the given questions.
func NewAssessment(method Method, questions []QuizQuestion) (Assessment, error) {
	switch method {
	case MethodConversation:
		return ConversationAssessment{}, nil
	case MethodQuiz:
		if len(questions) == 0 {
			return nil, fmt.Errorf("quiz assessment needs at least one question")
		}
		return QuizAssessment{Questions: questions}, nil
	}
	return nil, fmt.Errorf("unknown assessment method %q", method)
}
