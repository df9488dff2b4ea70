package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"

	"taskmanager/backend/internal/config"
	authusecase "taskmanager/backend/internal/usecase/auth"
	projectusecase "taskmanager/backend/internal/usecase/project"
	taskusecase "taskmanager/backend/internal/usecase/task"
	userusecase "taskmanager/backend/internal/usecase/user"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Metrics receives request-level counters.
type Metrics interface {
	DenialRecorder
	RecordHTTPStatus(statusCode int)
}

type nopMetrics struct{}

func (nopMetrics) RecordAccessDenied(string) {}
func (nopMetrics) RecordHTTPStatus(int)      {}

// Services bundles the use cases served over HTTP.
type Services struct {
	Auth     *authusecase.Service
	Users    *userusecase.Service
	Projects *projectusecase.Service
	Tasks    *taskusecase.Service
}

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records request counters into m and serves handler on /metrics.
// A nil handler leaves /metrics unrouted.
func WithMetrics(m Metrics, handler http.Handler) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
		s.metricsHandler = handler
	}
}

// WithLoginLimiter throttles the login endpoint.
func WithLoginLimiter(limiter *LoginRateLimiter) Option {
	return func(s *Server) {
		s.loginLimiter = limiter
	}
}

// WithTrustedProxies lets the listed proxies supply the client address via
// X-Forwarded-For or X-Real-IP. Without it those headers are ignored.
func WithTrustedProxies(prefixes []netip.Prefix) Option {
	return func(s *Server) {
		s.trustedProxies = prefixes
	}
}

// WithHealthCheck makes /health report unavailable while check fails.
func WithHealthCheck(check func(ctx context.Context) error) Option {
	return func(s *Server) {
		s.healthCheck = check
	}
}

// Server wraps the HTTP server lifecycle.
type Server struct {
	httpServer     *http.Server
	router         chi.Router
	services       Services
	logger         *slog.Logger
	metrics        Metrics
	metricsHandler http.Handler
	loginLimiter   *LoginRateLimiter
	trustedProxies []netip.Prefix
	healthCheck    func(ctx context.Context) error
	addr           string
}

// NewServer constructs a Server with its middleware chain and routes.
func NewServer(cfg config.Config, services Services, opts ...Option) *Server {
	addr := cfg.HTTPPort
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	s := &Server{
		router:   chi.NewRouter(),
		services: services,
		logger:   slog.Default(),
		metrics:  nopMetrics{},
		addr:     addr,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.Use(
		middleware.RequestID,
		withTrustedProxies(s.trustedProxies),
		withRecovery(s.logger),
		withCORS(cfg.AllowedOrigins),
		ResolveIdentity(services.Auth),
		withLogging(s.logger, s.metrics),
	)
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "resource not found")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	s.registerRoutes()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  cfg.IdleTimeout(),
	}
	return s
}

func (s *Server) registerRoutes() {
	r := s.router
	authenticated := RequireAuthenticated(s.metrics)
	requireRole := func(roles ...string) func(http.Handler) http.Handler {
		return RequireRole(s.metrics, roles...)
	}

	r.Get("/health", s.handleHealth)
	if s.metricsHandler != nil {
		r.Handle("/metrics", s.metricsHandler)
	}

	r.Route("/api/auth", func(r chi.Router) {
		if s.loginLimiter != nil {
			r.With(s.loginLimiter.Middleware).Post("/login", s.handleLogin)
		} else {
			r.Post("/login", s.handleLogin)
		}
		r.Post("/register", s.handleRegister)
		r.With(authenticated).Get("/me", s.handleMe)
	})

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(requireRole(adminRole))
		r.Get("/", s.handleListUsers)
		r.Get("/{id}", s.handleGetUser)
		r.Patch("/{id}/roles", s.handleAssignRoles)
		r.Delete("/{id}", s.handleDeleteUser)
	})

	r.Route("/api/v1/projects", func(r chi.Router) {
		r.With(authenticated).Get("/", s.handleListProjects)
		r.With(requireRole(adminRole)).Post("/", s.handleCreateProject)
		r.With(authenticated).Get("/{id}", s.handleGetProject)
		r.With(requireRole(userRole)).Put("/{id}", s.handleUpdateProject)
		r.With(requireRole(adminRole)).Delete("/{id}", s.handleDeleteProject)
		r.With(authenticated).Get("/{id}/tasks", s.handleListProjectTasks)
		r.With(requireRole(adminRole)).Post("/{id}/tasks", s.handleCreateProjectTask)
	})

	r.Route("/api/v1/tasks", func(r chi.Router) {
		r.With(authenticated).Get("/", s.handleListTasks)
		r.With(requireRole(userRole)).Post("/", s.handleCreateTask)
		r.With(authenticated).Get("/{id}", s.handleGetTask)
		r.With(requireRole(userRole)).Put("/{id}", s.handleUpdateTask)
		r.With(requireRole(adminRole)).Delete("/{id}", s.handleDeleteTask)
	})
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves HTTP on the configured address.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server and the login limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.loginLimiter != nil {
		s.loginLimiter.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the configured network address for the HTTP server.
func (s *Server) Addr() string {
	return s.addr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.healthCheck != nil {
		if err := s.healthCheck(r.Context()); err != nil {
			s.logger.Error("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
