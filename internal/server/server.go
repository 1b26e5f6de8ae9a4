// Package server exposes tutoring journeys over a JSON HTTP API for the web
// front end.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/luminary/internal/journey"
	"github.com/abhisek/luminary/internal/tutor"
)

// ShutdownTimeout bounds how long in-flight requests may run after the
// server is asked to stop.
const ShutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	// Tutor answers chat turns. Nil means no language model is configured;
	// chat routes then fail with 500.
	Tutor *tutor.Service
	// Store persists journey records.
	Store journey.Store
	// Method is the assessment /begin runs unless the request names one.
	Method journey.Method
	// Limiter bounds chat requests per client. Nil disables rate limiting.
	Limiter *RateLimiter
	// TrackerIdle is how long an unused journey stays in memory. Zero
	// means DefaultTrackerIdle.
	TrackerIdle time.Duration
	Logger      *zap.Logger
}

// Server is the luminary HTTP API.
type Server struct {
	tutor    *tutor.Service
	store    journey.Store
	method   journey.Method
	limiter  *RateLimiter
	log      *zap.Logger
	journeys *registry
	handler  http.Handler
}

// New creates a Server and its routes.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("server")
	method := opts.Method
	if method == "" {
		method = journey.MethodConversation
	}

	s := &Server{
		tutor:    opts.Tutor,
		store:    opts.Store,
		method:   method,
		limiter:  opts.Limiter,
		log:      log,
		journeys: newRegistry(opts.Store, opts.TrackerIdle, log),
	}
	s.handler = s.routes()
	return s
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /api/subjects", s.handleListSubjects)
	mux.HandleFunc("GET /api/subjects/{id}", s.handleGetSubject)
	mux.HandleFunc("GET /api/subjects/{id}/quiz", s.handleGetQuiz)

	// Method checking stays in the handler so non-POST gets a JSON 405.
	mux.HandleFunc("/api/chat", s.rateLimit(s.handleChatProxy))

	mux.HandleFunc("GET /api/journeys", s.handleListJourneys)
	mux.HandleFunc("GET /api/journeys/{subject}", s.handleGetJourney)
	mux.HandleFunc("POST /api/journeys/{subject}/begin", s.handleBegin)
	mux.HandleFunc("POST /api/journeys/{subject}/chat", s.rateLimit(s.handleJourneyChat))
	mux.HandleFunc("POST /api/journeys/{subject}/quiz/answers", s.handleQuizAnswer)
	mux.HandleFunc("POST /api/journeys/{subject}/quiz/complete", s.handleQuizComplete)
	mux.HandleFunc("POST /api/journeys/{subject}/reset", s.handleReset)

	return s.logRequests(cors(s.withLearner(mux)))
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully. It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		s.log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.journeys.Run(gctx)
		return nil
	})

	if s.limiter != nil {
		g.Go(func() error {
			s.limiter.Run(gctx)
			return nil
		})
	}

	return g.Wait()
}
