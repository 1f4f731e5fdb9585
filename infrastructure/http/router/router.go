package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/fixora/tasklist/infrastructure/http/handler"
	"github.com/fixora/tasklist/infrastructure/http/middleware"
	"github.com/fixora/tasklist/infrastructure/http/response"
	"github.com/fixora/tasklist/infrastructure/service/logger"
	"github.com/fixora/tasklist/infrastructure/service/metrics"
)

// Dependencies are the already constructed pieces the router mounts.
type Dependencies struct {
	AuthHandler *handler.AuthHandler
	UserHandler *handler.UserHandler
	TaskHandler *handler.TaskHandler

	AuthMiddleware      *middleware.AuthMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware
	RefreshLimit        middleware.RateLimitRule
	LookupLimit         middleware.RateLimitRule

	CORSEnabled          bool
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// Metrics is optional; when set every route is instrumented and
	// GET /metrics serves the registry.
	Metrics *metrics.Metrics

	Logger logger.Logger
}

// NewRouter wires every route. Task routes sit behind RequireAuth; the two
// credential issuing routes sit behind the rate limiter.
func NewRouter(deps Dependencies) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{"status": "healthy"})
	}).Methods(http.MethodGet)

	if deps.Metrics != nil {
		router.Use(deps.Metrics.Instrument)
		router.Handle("/metrics", deps.Metrics.Handler()).Methods(http.MethodGet)
	}

	limited := func(rule middleware.RateLimitRule, h http.HandlerFunc) http.Handler {
		if deps.RateLimitMiddleware == nil {
			return h
		}
		return deps.RateLimitMiddleware.Limit(rule)(h)
	}

	router.Handle("/token/refresh", limited(deps.RefreshLimit, deps.AuthHandler.Refresh)).Methods(http.MethodPost)

	router.HandleFunc("/users", deps.UserHandler.CreateUser).Methods(http.MethodPost)
	router.Handle("/users/{email}", limited(deps.LookupLimit, deps.UserHandler.LookupUser)).Methods(http.MethodGet)

	tasks := router.PathPrefix("/tasks").Subrouter()
	tasks.Use(deps.AuthMiddleware.RequireAuth)
	tasks.HandleFunc("", deps.TaskHandler.CreateTask).Methods(http.MethodPost)
	tasks.HandleFunc("/{userId}", deps.TaskHandler.ListTasks).Methods(http.MethodGet)
	tasks.HandleFunc("/{taskId}", deps.TaskHandler.UpdateTask).Methods(http.MethodPut)
	tasks.HandleFunc("/{taskId}", deps.TaskHandler.DeleteTask).Methods(http.MethodDelete)
	tasks.HandleFunc("/{taskId}/complete", deps.TaskHandler.CompleteTask).Methods(http.MethodPost)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Outermost first: correlation id, CORS, recovery, request log.
	var h http.Handler = router
	h = middleware.RequestLogger(deps.Logger)(h)
	h = middleware.Recovery(deps.Logger)(h)
	if deps.CORSEnabled && len(deps.CORSAllowedOrigins) > 0 {
		h = middleware.CORS(deps.CORSAllowedOrigins, deps.CORSAllowCredentials)(h)
	}
	h = middleware.CorrelationIDMiddleware(h)

	return h
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Server owns the listening http.Server.
type Server struct {
	server *http.Server
	logger logger.Logger
}

func NewServer(config ServerConfig, handler http.Handler, log logger.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:         config.Addr,
			Handler:      handler,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		logger: log,
	}
}

// Start blocks until the server stops. It returns nil after Shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info(ctx, "Starting HTTP server", map[string]interface{}{
		"addr": s.server.Addr,
	})
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "Shutting down HTTP server", nil)
	return s.server.Shutdown(ctx)
}
