package journey

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Tracker owns the journey state for one learner and subject. State is
// mutated only through its transition methods. A Tracker is safe for
// concurrent use.
type Tracker struct {
	key    Key
	store  Store
	events EventRecorder
	log    *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	state     State
	epoch     uint64
	returning bool
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger used for persistence failures and rejected
// transitions.
func WithLogger(l *zap.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.log = l
		}
	}
}

// WithClock overrides the time source used for savedAt timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTracker initializes the journey for key. A persisted level puts the
// learner straight into the learning stage with full confidence; otherwise
// the journey starts at the intro. Storage errors are logged and treated as
// "nothing persisted".
func NewTracker(ctx context.Context, store Store, key Key, opts ...Option) *Tracker {
	t := &Tracker{
		key:   key,
		store: store,
		log:   zap.NewNop(),
		now:   time.Now,
		state: initialState(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if rec, ok := store.(EventRecorder); ok {
		t.events = rec
	}
	t.log = t.log.With(zap.String("learner", key.LearnerID), zap.String("subject", key.SubjectID))

	rec, err := store.LoadJourney(ctx, key)
	if err != nil {
		t.log.Warn("load journey record failed", zap.Error(err))
		return t
	}
	if rec == nil {
		return t
	}
	if !rec.Level.Valid() {
		t.log.Warn("ignoring persisted journey with unknown level", zap.String("level", string(rec.Level)))
		return t
	}

	t.returning = true
	t.state = State{
		Stage:           StageLearning,
		Level:           rec.Level,
		LevelConfidence: 1,
	}
	t.persistLevel(ctx)
	t.record(ctx, ActionRestore)
	return t
}

// Key returns the journey key.
func (t *Tracker) Key() Key {
	return t.key
}

// State returns a snapshot of the current state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.clone()
}

// Snapshot returns the current state together with the reset epoch. Pass
// the epoch to ApplyTurn so a turn begun before a reset cannot commit after it.
func (t *Tracker) Snapshot() (State, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.clone(), t.epoch
}

// IsReturningUser reports whether a persisted level existed when the
// tracker was created. It does not change after a reset.
func (t *Tracker) IsReturningUser() bool {
	return t.returning
}

// StartDiagnosis moves an intro journey into the conversational diagnosis
// at turn 1.
func (t *Tracker) StartDiagnosis(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.startDiagnosis(ctx)
}

func (t *Tracker) startDiagnosis(ctx context.Context) error {
	if err := t.require("start diagnosis", StageIntro); err != nil {
		return err
	}
	t.state = State{Stage: StageDiagnosing, DiagnosticTurn: 1}
	t.record(ctx, ActionStartDiagnosis)
	return nil
}

// StartQuiz moves an intro journey into the fixed multiple-choice quiz.
func (t *Tracker) StartQuiz(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.require("start quiz", StageIntro); err != nil {
		return err
	}
	t.state = State{Stage: StageQuiz, QuizAnswers: []Level{}}
	t.record(ctx, ActionStartQuiz)
	return nil
}

// RecordDiagnosticTurn consumes the metadata of one diagnostic reply. The
// diagnosis completes when the reported confidence reaches
// CompletionConfidence or the incremented turn reaches MaxDiagnosticTurns.
// It reports whether the journey moved to the learning stage.
func (t *Tracker) RecordDiagnosticTurn(ctx context.Context, md Metadata) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.recordDiagnosticTurn(ctx, md)
}

// ApplyTurn commits one conversational turn atomically, provided the
// journey has not been reset since epoch was read from Snapshot. With
// start set, an intro journey first enters the diagnosis; a journey that
// already left the intro is taken as is. md, when present, is recorded if
// the journey is diagnosing. done reports that the diagnosis completed.
func (t *Tracker) ApplyTurn(ctx context.Context, epoch uint64, start bool, md *Metadata) (done bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.epoch != epoch {
		t.log.Info("dropping turn begun before a reset", zap.Uint64("epoch", epoch), zap.Uint64("current", t.epoch))
		return false, ErrJourneyReset
	}
	if start && t.state.Stage == StageIntro {
		if err := t.startDiagnosis(ctx); err != nil {
			return false, err
		}
	}
	if md == nil || t.state.Stage != StageDiagnosing {
		return false, nil
	}
	return t.recordDiagnosticTurn(ctx, *md)
}

func (t *Tracker) recordDiagnosticTurn(ctx context.Context, md Metadata) (bool, error) {
	if err := t.require("record diagnostic turn", StageDiagnosing); err != nil {
		return false, err
	}

	turn := t.state.DiagnosticTurn + 1
	complete := md.Confidence >= CompletionConfidence || turn >= MaxDiagnosticTurns

	t.state.DiagnosticTurn = turn
	t.state.LevelConfidence = md.Confidence
	if !complete {
		t.record(ctx, ActionDiagnosticTurn)
		return false, nil
	}

	level := md.SuggestedLevel
	if !level.Valid() {
		t.log.Warn("diagnosis completed without a usable level, defaulting to beginner",
			zap.String("suggested", string(level)))
		level = LevelBeginner
	}
	t.state.Stage = StageLearning
	t.state.Level = level
	t.persistLevel(ctx)
	t.record(ctx, ActionComplete)
	return true, nil
}

// RecordQuizAnswer appends the level tag of the chosen option and advances
// to the next question. The caller decides when the quiz is exhausted.
func (t *Tracker) RecordQuizAnswer(ctx context.Context, tag Level) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !tag.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, tag)
	}
	if err := t.require("record quiz answer", StageQuiz); err != nil {
		return err
	}
	t.state.QuizAnswers = append(t.state.QuizAnswers, tag)
	t.state.CurrentQuestionIndex++
	t.record(ctx, ActionQuizAnswer)
	return nil
}

// CompleteQuiz ends the quiz with a level computed by the caller.
func (t *Tracker) CompleteQuiz(ctx context.Context, level Level) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !level.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, level)
	}
	if err := t.require("complete quiz", StageQuiz); err != nil {
		return err
	}
	t.state.Stage = StageLearning
	t.state.Level = level
	t.state.LevelConfidence = 1
	t.persistLevel(ctx)
	t.record(ctx, ActionComplete)
	return nil
}

// Reset clears the persisted record and returns the journey to the intro.
// It always succeeds; storage failures are logged. Turns begun before the
// reset are refused by ApplyTurn.
func (t *Tracker) Reset(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.store.DeleteJourney(ctx, t.key); err != nil {
		t.log.Warn("delete journey record failed", zap.Error(err))
	}
	t.state = initialState()
	t.epoch++
	t.record(ctx, ActionReset)
}

// require rejects an operation unless the journey is in want. Callers hold mu.
func (t *Tracker) require(op string, want Stage) error {
	if t.state.Stage == want {
		return nil
	}
	t.log.Warn("ignoring journey transition from unexpected stage",
		zap.String("op", op),
		zap.String("stage", string(t.state.Stage)),
		zap.String("want", string(want)))
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, op, t.state.Stage)
}

// persistLevel stores the current level. Callers hold mu.
func (t *Tracker) persistLevel(ctx context.Context) {
	rec := Record{
		Level:   t.state.Level,
		SavedAt: t.now().UTC(),
		Version: RecordVersion,
	}
	if err := t.store.SaveJourney(ctx, t.key, rec); err != nil {
		t.log.Warn("save journey record failed", zap.Error(err))
	}
}

// record appends a transition to the audit log when the store keeps one.
// Callers hold mu.
func (t *Tracker) record(ctx context.Context, action EventAction) {
	if t.events == nil {
		return
	}
	ev := Event{
		Key:        t.key,
		Action:     action,
		Stage:      t.state.Stage,
		Level:      t.state.Level,
		Confidence: t.state.LevelConfidence,
		Turn:       t.state.DiagnosticTurn,
		Timestamp:  t.now().UTC(),
	}
	if t.state.Stage == StageQuiz {
		ev.Turn = t.state.CurrentQuestionIndex
	}
	if err := t.events.AppendJourneyEvent(ctx, ev); err != nil {
		t.log.Warn("append journey event failed", zap.String("action", string(action)), zap.Error(err))
	}
}
