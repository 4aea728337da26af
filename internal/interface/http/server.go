// Package http implements the REST API of the learning hub.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pathwise/pathwise-hub/config"
	"github.com/pathwise/pathwise-hub/internal/application/command"
	"github.com/pathwise/pathwise-hub/internal/application/query"
	"github.com/pathwise/pathwise-hub/internal/application/saga"
	"github.com/pathwise/pathwise-hub/internal/infrastructure/extract"
	"github.com/pathwise/pathwise-hub/internal/interface/http/handlers"
	"github.com/pathwise/pathwise-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains HTTP server configuration.
type Config struct {
	// Host - address to bind (default: "0.0.0.0").
	Host string

	// Port - port to listen on (default: 8080).
	Port int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// MaxHeaderBytes - maximum size of request headers.
	MaxHeaderBytes int

	// MaxBodyBytes limits JSON request bodies.
	MaxBodyBytes int64

	// MaxUploadBytes limits multipart uploads.
	MaxUploadBytes int64

	// AllowedOrigins for CORS. Empty disables CORS headers.
	AllowedOrigins []string

	// Version is reported by /health.
	Version string

	// Location interprets calendar dates sent by clients (default UTC).
	Location *time.Location
}

// DefaultConfig returns default server configuration.
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   90 * time.Second, // generation waits on the provider
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
		MaxBodyBytes:   1 << 20,
		MaxUploadBytes: 10 << 20,
		AllowedOrigins: []string{"*"},
		Version:        "v1",
	}
}

// Address returns the server address string.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// Dependencies contains all dependencies required by HTTP handlers.
type Dependencies struct {
	// Command Handlers (write side)
	Register   *command.RegisterHandler
	Auth       *command.AuthHandler
	Profile    *command.UpdateProfileHandler
	Activities *command.LogActivityHandler
	Skills     *command.UpdateSkillHandler
	Awards     *command.AwardHandler
	Goals      *command.GoalHandler

	// Query Handlers (read side)
	Accounts  *query.AccountHandler
	Dashboard *query.DashboardHandler

	// Sagas (provider calls)
	Paths     *saga.GeneratePathSaga
	Resumes   *saga.GenerateResumeSaga
	Assistant *saga.AssistantSaga

	Extractor *extract.Extractor

	// Features gates optional endpoints. nil enables everything.
	Features *config.FeatureFlags

	HealthChecker handlers.HealthChecker

	Logger *logger.Logger
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Server represents the HTTP server.
type Server struct {
	config     Config
	deps       Dependencies
	router     chi.Router
	httpServer *http.Server
	logger     *logger.Logger
	auth       *handlers.BearerAuth

	mu        sync.RWMutex
	running   bool
	startedAt time.Time
}

// NewServer creates a new HTTP server with the given configuration and dependencies.
func NewServer(config Config, deps Dependencies) *Server {
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = 1 << 20
	}
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = 10 << 20
	}
	if deps.HealthChecker == nil {
		deps.HealthChecker = handlers.NewCompositeHealthChecker(config.Version)
	}

	s := &Server{
		config: config,
		deps:   deps,
		logger: deps.Logger,
	}
	if s.logger == nil {
		s.logger = logger.Nop()
	}
	s.logger = s.logger.With(logger.Component("http"))
	s.auth = handlers.NewBearerAuth(deps.Auth, s.writeError)

	s.router = s.routes()
	s.httpServer = &http.Server{
		Addr:           config.Address(),
		Handler:        s.router,
		ReadTimeout:    config.ReadTimeout,
		WriteTimeout:   config.WriteTimeout,
		IdleTimeout:    config.IdleTimeout,
		MaxHeaderBytes: config.MaxHeaderBytes,
	}

	return s
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ══════════════════════════════════════════════════════════════════════════════
// ROUTING
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(handlers.RequestLogger(s.logger))
	r.Use(s.recoveryMiddleware)
	r.Use(handlers.SecurityHeadersMiddleware)
	if len(s.config.AllowedOrigins) > 0 {
		r.Use(s.corsMiddleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, r, http.StatusNotFound, "not_found", "Route not found", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", "")
	})

	// ─────────────────────────────────────────────────────────────────────────
	// Health & Status Endpoints
	// ─────────────────────────────────────────────────────────────────────────
	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Get("/live", s.handleLive)

	// ─────────────────────────────────────────────────────────────────────────
	// API v1
	// ─────────────────────────────────────────────────────────────────────────
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(handlers.NoCacheMiddleware)
		jsonLimit := handlers.RequestSizeLimitMiddleware(s.config.MaxBodyBytes)

		// Public
		r.With(jsonLimit).Post("/auth/register", s.handleRegister)
		r.With(jsonLimit).Post("/auth/login", s.handleLogin)

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(s.auth.Middleware)

			r.Post("/auth/logout", s.handleLogout)
			r.With(handlers.RequestSizeLimitMiddleware(s.config.MaxUploadBytes)).
				Post("/uploads/extract", s.handleExtract)

			r.Route("/me", func(r chi.Router) {
				r.Use(jsonLimit)

				r.Get("/", s.handleGetMe)
				r.Put("/profile", s.handleUpdateProfile)
				r.Post("/onboarding", s.handleOnboarding)

				r.Post("/activities", s.handleLogActivity)
				r.Get("/activities", s.handleListActivities)

				r.Put("/skills/{skill}", s.handleUpdateSkill)
				r.Post("/skills/{skill}/practice", s.handlePracticeSkill)

				r.Post("/achievements", s.handleAward)

				r.Post("/goals", s.handleSetGoal)
				r.Post("/goals/{id}/achieve", s.handleAchieveGoal)

				r.Get("/dashboard", s.handleDashboard)
				r.Get("/insights", s.handleInsights)

				r.Post("/paths", s.handleGeneratePath)
				r.Get("/paths", s.handleListPaths)
				r.Get("/paths/{id}/html", s.handlePathHTML)

				r.Post("/resume", s.handleGenerateResume)
				r.Post("/assistant", s.handleAsk)
			})
		})
	})

	return r
}

// ══════════════════════════════════════════════════════════════════════════════
// MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

// recoveryMiddleware recovers from panics and returns 500 in the envelope.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.FromContext(r.Context()).Error("panic recovered",
					logger.Any("panic", rec),
					logger.String("stack", string(debug.Stack())),
					logger.String("path", r.URL.Path),
				)
				writeJSONError(w, r, http.StatusInternalServerError, "internal_server_error", "An unexpected error occurred", "")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware adds CORS headers.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		allowed := false
		for _, o := range s.config.AllowedOrigins {
			if o == "*" || o == origin {
				allowed = true
				break
			}
		}

		if allowed && origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			w.Header().Set("Access-Control-Max-Age", "86400")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// enabled reports whether a feature is on for the caller.
func (s *Server) enabled(r *http.Request, feature string) bool {
	if s.deps.Features == nil {
		return true
	}
	username, _ := handlers.UsernameFrom(r.Context())
	return s.deps.Features.IsEnabled(feature, config.ForUser(username.String()))
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.running = true
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("starting HTTP server", logger.String("address", s.config.Address()))

	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Run serves until ctx is cancelled and then shuts down within shutdownTimeout.
// It is meant to be run inside an errgroup.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return <-errCh
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Uptime returns the server uptime.
func (s *Server) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return 0
	}
	return time.Since(s.startedAt)
}
