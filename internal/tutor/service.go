// Package tutor turns learner messages into tutor replies: it builds the
// system prompt from the journey state, calls the language model and feeds
// the diagnostic trailer back into the journey.
package tutor

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/luminary/internal/journey"
	"github.com/abhisek/luminary/internal/llm"
	"github.com/abhisek/luminary/internal/subjects"
)

// ErrEmptyConversation is returned when a turn carries no messages.
var ErrEmptyConversation = errors.New("conversation has no messages")

// Reply is the outcome of one chat turn.
type Reply struct {
	// Content is the text shown to the learner, trailer removed.
	Content string
	// Metadata is the parsed trailer, or nil if the reply had none.
	Metadata *journey.Metadata
	// State is the journey after the turn was applied.
	State journey.State
	// Completed reports that this turn ended the diagnosis.
	Completed bool
}

// Service generates tutor replies.
type Service struct {
	provider llm.Provider
	cfg      Config
	log      *zap.Logger
}

// NewService creates a tutor service. log may be nil.
func NewService(provider llm.Provider, cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{provider: provider, cfg: cfg, log: log.Named("tutor")}
}

// Config returns the service settings.
func (s *Service) Config() Config {
	return s.cfg
}

// Reply runs one chat turn of a tracked journey. history is the whole
// conversation so far, ending with the learner's latest message.
//
// The tracker is only advanced after the model answered; a failed turn
// leaves the journey exactly as it was. A reset that lands while the model
// is answering wins, and Reply returns journey.ErrJourneyReset.
func (s *Service) Reply(ctx context.Context, subject subjects.Subject, t *journey.Tracker, history []llm.Message) (*Reply, error) {
	if len(history) == 0 {
		return nil, ErrEmptyConversation
	}

	state, epoch := t.Snapshot()
	startPending := false
	if state.Stage == journey.StageIntro && s.cfg.Method == journey.MethodConversation {
		// The first message of a fresh journey opens the diagnosis.
		state = journey.State{Stage: journey.StageDiagnosing, DiagnosticTurn: 1}
		startPending = true
	}

	content, err := s.generate(ctx, purposeFor(state), subject, state, history)
	if err != nil {
		return nil, err
	}

	visible, md := journey.ParseMetadata(content)
	reply := &Reply{Content: visible, Metadata: md}

	done, err := t.ApplyTurn(ctx, epoch, startPending, md)
	if err != nil {
		return nil, err
	}
	if done {
		reply.Completed = true
		s.log.Info("diagnosis complete",
			zap.Stringer("journey", t.Key()),
			zap.String("level", string(md.SuggestedLevel)),
			zap.Float64("confidence", md.Confidence))
	}

	reply.State = t.State()
	return reply, nil
}

// Proxy answers a chat turn for a caller that tracks the journey itself.
// No tracker is involved; the returned State is the one supplied.
func (s *Service) Proxy(ctx context.Context, subject subjects.Subject, state journey.State, history []llm.Message) (*Reply, error) {
	if len(history) == 0 {
		return nil, ErrEmptyConversation
	}
	if state.Stage == "" {
		state.Stage = journey.StageIntro
	}

	content, err := s.generate(ctx, llm.PurposeProxyChat, subject, state, history)
	if err != nil {
		return nil, err
	}

	visible, md := journey.ParseMetadata(content)
	return &Reply{Content: visible, Metadata: md, State: state}, nil
}

func (s *Service) generate(ctx context.Context, purpose string, subject subjects.Subject, state journey.State, history []llm.Message) (string, error) {
	ctx = llm.WithPurpose(ctx, purpose)

	req := llm.Request{
		System:      BuildSystemPrompt(subject, state),
		Messages:    history,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("tutor reply: %w", err)
	}
	return resp.Content, nil
}

func purposeFor(state journey.State) string {
	if state.Stage == journey.StageDiagnosing {
		return llm.PurposeDiagnosisChat
	}
	return llm.PurposeTutorChat
}
