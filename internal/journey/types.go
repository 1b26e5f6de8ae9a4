package journey

import (
	"errors"
	"fmt"
	"time"
)

// Stage is the current phase of a learner's journey for one subject.
type Stage string

const (
	StageIntro      Stage = "intro"
	StageDiagnosing Stage = "diagnosing"
	StageQuiz       Stage = "quiz"
	StageLearning   Stage = "learning"
)

// Valid reports whether s is one of the four known stages.
func (s Stage) Valid() bool {
	switch s {
	case StageIntro, StageDiagnosing, StageQuiz, StageLearning:
		return true
	}
	return false
}

// Level is an assessed proficiency tier.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Levels lists every level in ascending order.
var Levels = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}

// Valid reports whether l is one of the three known levels.
func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// Weight maps a level to its numeric score (1-3), or 0 if unknown.
func (l Level) Weight() int {
	switch l {
	case LevelBeginner:
		return 1
	case LevelIntermediate:
		return 2
	case LevelAdvanced:
		return 3
	}
	return 0
}

// ParseLevel converts a level tag into a Level.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !l.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	return l, nil
}

const (
	// CompletionConfidence is the reported confidence at which a
	// conversational diagnosis ends early.
	CompletionConfidence = 0.7

	// MaxDiagnosticTurns forces the diagnosis to end on this turn.
	MaxDiagnosticTurns = 5

	// RecordVersion is the schema version written with every persisted record.
	RecordVersion = 1
)

var (
	// ErrInvalidTransition is returned when an operation is invoked from a
	// stage it does not apply to. The state is left untouched.
	ErrInvalidTransition = errors.New("invalid journey transition")

	// ErrInvalidLevel is returned for level tags outside the known set.
	ErrInvalidLevel = errors.New("invalid level")

	// ErrInvalidState is returned for a caller-supplied State that names an
	// unknown stage or negative counters.
	ErrInvalidState = errors.New("invalid journey state")

	// ErrJourneyReset is returned when a turn started before a reset tries
	// to commit after it. The turn is dropped.
	ErrJourneyReset = errors.New("journey was reset during the turn")
)

// Key identifies one journey: a learner studying a subject.
type Key struct {
	LearnerID string
	SubjectID string
}

func (k Key) String() string {
	return k.LearnerID + "/" + k.SubjectID
}

// State is a snapshot of a journey.
type State struct {
	Stage                Stage   `json:"stage"`
	DiagnosticTurn       int     `json:"diagnosticTurn"`
	CurrentQuestionIndex int     `json:"currentQuestionIndex"`
	Level                Level   `json:"level,omitempty"`
	LevelConfidence      float64 `json:"levelConfidence"`
	QuizAnswers          []Level `json:"quizAnswers,omitempty"`
}

// HasLevel reports whether an assessed level is recorded.
func (s State) HasLevel() bool {
	return s.Level != ""
}

// Validate checks a State that did not come from a Tracker, such as one
// sent by a client that tracks its own journey.
func (s State) Validate() error {
	if !s.Stage.Valid() {
		return fmt.Errorf("%w: unknown stage %q", ErrInvalidState, s.Stage)
	}
	if s.Level != "" && !s.Level.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, s.Level)
	}
	for _, a := range s.QuizAnswers {
		if !a.Valid() {
			return fmt.Errorf("%w: quiz answer %q", ErrInvalidLevel, a)
		}
	}
	if s.DiagnosticTurn < 0 || s.CurrentQuestionIndex < 0 {
		return fmt.Errorf("%w: negative turn or question index", ErrInvalidState)
	}
	return nil
}

func (s State) clone() State {
	c := s
	if s.QuizAnswers != nil {
		c.QuizAnswers = append([]Level(nil), s.QuizAnswers...)
	}
	return c
}

func initialState() State {
	return State{Stage: StageIntro}
}

// Metadata is the assessment signal a model attaches to a diagnostic reply.
type Metadata struct {
	Confidence     float64  `json:"confidence"`
	SuggestedLevel Level    `json:"suggestedLevel"`
	TopicsAssessed []string `json:"topicsAssessed"`
}

// Record is the durable form of an assessed journey.
type Record struct {
	Level   Level     `json:"level"`
	SavedAt time.Time `json:"savedAt"`
	Version int       `json:"version"`
}

// EventAction names a journey transition in the audit log.
type EventAction string

const (
	ActionRestore        EventAction = "restore"
	ActionStartDiagnosis EventAction = "start-diagnosis"
	ActionStartQuiz      EventAction = "start-quiz"
	ActionDiagnosticTurn EventAction = "diagnostic-turn"
	ActionQuizAnswer     EventAction = "quiz-answer"
	ActionComplete       EventAction = "complete"
	ActionReset          EventAction = "reset"
)

// Event is one entry of the transition audit log.
type Event struct {
	Key        Key
	Action     EventAction
	Stage      Stage
	Level      Level
	Confidence float64
	Turn       int
	Timestamp  time.Time
}
