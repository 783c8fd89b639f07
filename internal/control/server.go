// Package control is the HTTP control surface of the daemon. Front-ends
// and tooling submit commands here; the server's only job is to validate,
// authenticate, and push into the dispatch pipeline's inbound channel.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mattjoyce/glazier/internal/auth"
	"github.com/mattjoyce/glazier/internal/command"
	"github.com/mattjoyce/glazier/internal/events"
	"github.com/mattjoyce/glazier/internal/log"
	"github.com/mattjoyce/glazier/internal/settings"
)

// SessionInfo exposes the live editor session to the health endpoint.
type SessionInfo interface {
	RunID() string
	Pid() int
}

// Config holds control server configuration.
type Config struct {
	Listen string
	// APIKey is a single bearer token with full access.
	APIKey string
	// Tokens is an optional list of scoped bearer tokens.
	Tokens []auth.TokenConfig
}

// errServerStopped is returned by submit once shutdown has begun; handlers
// surface it as 503.
var errServerStopped = errors.New("control server stopped")

// Server represents the HTTP control server.
type Server struct {
	config     Config
	commands   chan<- command.Command
	hub        *events.Hub
	sess       SessionInfo
	depths     func() (droppable, guaranteed int)
	registry   *settings.Registry
	instanceID string
	logger     *slog.Logger
	server     *http.Server
	startedAt  time.Time

	// stopped is closed when shutdown begins, before the pipeline's
	// inbound channel may be closed; submit never touches the channel
	// after that.
	stopped  chan struct{}
	stopOnce sync.Once
}

// New creates a control server. commands is the pipeline's inbound channel;
// depths reports queue depths for the health payload and may be nil.
func New(config Config, commands chan<- command.Command, hub *events.Hub,
	sess SessionInfo, depths func() (int, int), registry *settings.Registry,
	instanceID string) *Server {
	return &Server{
		config:     config,
		commands:   commands,
		hub:        hub,
		sess:       sess,
		depths:     depths,
		registry:   registry,
		instanceID: instanceID,
		logger:     log.WithComponent("control"),
		startedAt:  time.Now(),
		stopped:    make(chan struct{}),
	}
}

// markStopped flips the server into its draining state. Idempotent.
func (s *Server) markStopped() {
	s.stopOnce.Do(func() { close(s.stopped) })
}

// Start starts the HTTP server (blocking until ctx is cancelled).
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      s.setupRoutes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Minute, // SSE streams stay open
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("control server starting", "listen", s.config.Listen)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("control server shutting down")
		// Refuse further submissions before draining in-flight handlers.
		s.markStopped()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		s.markStopped()
		return fmt.Errorf("server error: %w", err)
	}
}

// setupRoutes configures the HTTP router.
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	// Unauthenticated ops endpoint.
	r.Get("/healthz", s.handleHealthz)

	// Protected API.
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.With(s.requireScopes("input:rw")).Post("/input", s.handleInput)
		r.With(s.requireScopes("input:rw")).Post("/open", s.handleOpen)
		r.With(s.requireScopes("input:rw")).Post("/resize", s.handleResize)
		r.With(s.requireScopes("input:rw")).Post("/scroll", s.handleScroll)
		r.With(s.requireScopes("input:rw")).Post("/focus", s.handleFocus)
		r.With(s.requireScopes("input:rw")).Post("/quit", s.handleQuit)
		r.With(s.requireScopes("events:ro", "events:rw")).Get("/events", s.handleEvents)
		r.With(s.requireScopes("settings:rw")).Get("/settings", s.handleListSettings)
		r.With(s.requireScopes("settings:rw")).Put("/settings/{name}", s.handleSetSetting)
	})

	return r
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// authMiddleware resolves the bearer token to a principal.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.ExtractBearerToken(r)
		if err != nil {
			s.writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		principal, ok := auth.Authenticate(token, s.config.APIKey, s.config.Tokens)
		if !ok {
			s.writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
	})
}

// requireScopes gates a route on any of the listed scopes. Scope "*"
// always passes.
func (s *Server) requireScopes(scopes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, _ := auth.PrincipalFromContext(r.Context())
			if !auth.HasAnyScope(principal, scopes...) {
				s.writeError(w, http.StatusForbidden, "insufficient scope")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// submit pushes a command into the pipeline's inbound channel. After
// shutdown has begun the channel may close under us, so the stopped state
// is checked before any send is attempted.
func (s *Server) submit(ctx context.Context, c command.Command) error {
	select {
	case <-s.stopped:
		return errServerStopped
	default:
	}

	select {
	case s.commands <- c:
		return nil
	case <-s.stopped:
		return errServerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}
