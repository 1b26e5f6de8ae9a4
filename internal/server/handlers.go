package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/luminary/internal/journey"
	"github.com/abhisek/luminary/internal/llm"
	"github.com/abhisek/luminary/internal/subjects"
	"github.com/abhisek/luminary/internal/tutor"
)

const maxBodyBytes = 1 << 20

const errNoProvider = "API key not configured"

// journeyView is the JSON form of a journey.
type journeyView struct {
	Subject string `json:"subject"`
	journey.State
	IsReturningUser bool `json:"isReturningUser"`
	Completed       bool `json:"completed,omitempty"`
}

func viewOf(t *journey.Tracker) journeyView {
	return journeyView{
		Subject:         t.Key().SubjectID,
		State:           t.State(),
		IsReturningUser: t.IsReturningUser(),
	}
}

type chatReply struct {
	Message  string            `json:"message"`
	Metadata *journey.Metadata `json:"metadata"`
	Journey  *journeyView      `json:"journey,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

// statusFor maps a domain or transport error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, journey.ErrInvalidTransition), errors.Is(err, journey.ErrJourneyReset):
		return http.StatusConflict
	case errors.Is(err, journey.ErrInvalidLevel), errors.Is(err, journey.ErrInvalidState),
		errors.Is(err, tutor.ErrEmptyConversation):
		return http.StatusBadRequest
	case errors.Is(err, llm.ErrNotConfigured):
		return http.StatusInternalServerError
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func normalizeRoles(msgs []llm.Message) {
	for i := range msgs {
		msgs[i].Role = llm.ParseRole(string(msgs[i].Role))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, subjects.All())
}

func (s *Server) handleGetSubject(w http.ResponseWriter, r *http.Request) {
	subject, ok := subjects.Lookup(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown subject")
		return
	}
	writeJSON(w, http.StatusOK, subject)
}

func (s *Server) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	subject, ok := subjects.Lookup(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown subject")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"subject":   subject.ID,
		"questions": subject.Questions,
	})
}

type proxyRequest struct {
	Messages []llm.Message `json:"messages"`
	Subject  struct {
		ID string `json:"id"`
	} `json:"subject"`
	JourneyState *journey.State `json:"journeyState"`
}

// handleChatProxy is the stateless chat endpoint: the caller keeps the
// journey state and sends it with every turn.
func (s *Server) handleChatProxy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if s.tutor == nil {
		writeError(w, http.StatusInternalServerError, errNoProvider)
		return
	}

	var req proxyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	subject, ok := subjects.Lookup(req.Subject.ID)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown subject")
		return
	}
	state := journey.State{Stage: journey.StageIntro}
	if req.JourneyState != nil {
		state = *req.JourneyState
		if err := state.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	normalizeRoles(req.Messages)

	reply, err := s.tutor.Proxy(r.Context(), subject, state, req.Messages)
	if err != nil {
		s.log.Warn("chat proxy failed", zap.String("subject", subject.ID), zap.Error(err))
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, chatReply{Message: reply.Content, Metadata: reply.Metadata})
}

// journeyFor resolves the subject path value and the learner's tracker.
func (s *Server) journeyFor(w http.ResponseWriter, r *http.Request) (subjects.Subject, *journey.Tracker, bool) {
	subject, ok := subjects.Lookup(r.PathValue("subject"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown subject")
		return subjects.Subject{}, nil, false
	}
	key := journey.Key{LearnerID: learnerFrom(r.Context()), SubjectID: subject.ID}
	return subject, s.journeys.get(r.Context(), key), true
}

type savedJourneyView struct {
	Subject string        `json:"subject"`
	Level   journey.Level `json:"level"`
	SavedAt time.Time     `json:"savedAt"`
}

func (s *Server) handleListJourneys(w http.ResponseWriter, r *http.Request) {
	lister, ok := s.store.(journey.Lister)
	if !ok {
		writeError(w, http.StatusNotImplemented, "journey listing not supported by this store")
		return
	}
	saved, err := lister.ListJourneys(r.Context(), learnerFrom(r.Context()))
	if err != nil {
		s.log.Error("list journeys failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list journeys")
		return
	}
	out := make([]savedJourneyView, 0, len(saved))
	for _, sj := range saved {
		out = append(out, savedJourneyView{Subject: sj.Key.SubjectID, Level: sj.Record.Level, SavedAt: sj.Record.SavedAt})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetJourney(w http.ResponseWriter, r *http.Request) {
	_, t, ok := s.journeyFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewOf(t))
}

func (s *Server) handleBegin(w http.ResponseWriter, r *http.Request) {
	subject, t, ok := s.journeyFor(w, r)
	if !ok {
		return
	}

	method := s.method
	if m := r.URL.Query().Get("method"); m != "" {
		parsed, err := journey.ParseMethod(m)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		method = parsed
	}

	assessment, err := journey.NewAssessment(method, subject.Questions)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := assessment.Begin(r.Context(), t); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, viewOf(t))
}

type journeyChatRequest struct {
	Messages []llm.Message `json:"messages"`
}

func (s *Server) handleJourneyChat(w http.ResponseWriter, r *http.Request) {
	if s.tutor == nil {
		writeError(w, http.StatusInternalServerError, errNoProvider)
		return
	}
	subject, t, ok := s.journeyFor(w, r)
	if !ok {
		return
	}

	var req journeyChatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	normalizeRoles(req.Messages)

	reply, err := s.tutor.Reply(r.Context(), subject, t, req.Messages)
	if err != nil {
		s.log.Warn("journey chat failed", zap.Stringer("journey", t.Key()), zap.Error(err))
		writeError(w, statusFor(err), err.Error())
		return
	}

	view := viewOf(t)
	view.State = reply.State
	view.Completed = reply.Completed
	writeJSON(w, http.StatusOK, chatReply{Message: reply.Content, Metadata: reply.Metadata, Journey: &view})
}

type quizAnswerRequest struct {
	QuestionIndex *int `json:"questionIndex"`
	OptionIndex   int  `json:"optionIndex"`
}

func (s *Server) handleQuizAnswer(w http.ResponseWriter, r *http.Request) {
	subject, t, ok := s.journeyFor(w, r)
	if !ok {
		return
	}

	var req quizAnswerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	st := t.State()
	if st.Stage != journey.StageQuiz {
		writeError(w, http.StatusConflict, fmt.Sprintf("journey is in the %s stage, not the quiz", st.Stage))
		return
	}
	if req.QuestionIndex != nil && *req.QuestionIndex != st.CurrentQuestionIndex {
		writeError(w, http.StatusConflict, fmt.Sprintf("question %d is not the current question (%d)", *req.QuestionIndex, st.CurrentQuestionIndex))
		return
	}
	if st.CurrentQuestionIndex < len(subject.Questions) {
		if n := len(subject.Questions[st.CurrentQuestionIndex].Options); req.OptionIndex < 0 || req.OptionIndex >= n {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("optionIndex must be between 0 and %d", n-1))
			return
		}
	}

	quiz := journey.QuizAssessment{Questions: subject.Questions}
	done, err := quiz.Answer(r.Context(), t, req.OptionIndex)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	view := viewOf(t)
	view.Completed = done
	writeJSON(w, http.StatusOK, view)
}

type quizCompleteRequest struct {
	Level string `json:"level"`
}

func (s *Server) handleQuizComplete(w http.ResponseWriter, r *http.Request) {
	_, t, ok := s.journeyFor(w, r)
	if !ok {
		return
	}

	var req quizCompleteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	level, err := journey.ParseLevel(req.Level)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := t.CompleteQuiz(r.Context(), level); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	view := viewOf(t)
	view.Completed = true
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	_, t, ok := s.journeyFor(w, r)
	if !ok {
		return
	}
	t.Reset(r.Context())
	s.journeys.forget(t.Key())

	// A fresh tracker no longer counts the learner as returning.
	writeJSON(w, http.StatusOK, viewOf(s.journeys.get(r.Context(), t.Key())))
}
