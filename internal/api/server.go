// Package api exposes the workflow engine over HTTP: workflow CRUD in
// canonical and visual form, compilation and export, run driving, agent
// catalog queries and SSE progress streams.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/baton-ai/baton/internal/agents"
	"github.com/baton-ai/baton/internal/compile"
	"github.com/baton-ai/baton/internal/core"
	"github.com/baton-ai/baton/internal/events"
	"github.com/baton-ai/baton/internal/export"
	"github.com/baton-ai/baton/internal/logging"
	"github.com/baton-ai/baton/internal/runner"
	"github.com/baton-ai/baton/internal/store"
)

// Deps bundles the engine components the API serves. History may be nil
// when the archive is disabled; Bus may be nil to disable streaming.
type Deps struct {
	Store    *store.Store
	Runner   *runner.Runner
	Compiler *compile.Compiler
	Exports  *export.Manager
	Registry *agents.Registry
	Handoffs *core.HandoffLog
	Bus      *events.EventBus
	History  *runner.HistoryStore
}

// Server provides the HTTP REST API.
type Server struct {
	router      chi.Router
	deps        Deps
	logger      *logging.Logger
	version     string
	corsOrigins []string
}

// ServerOption configures the server.
type ServerOption func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *logging.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithVersion sets the version string reported by the health endpoint.
func WithVersion(version string) ServerOption {
	return func(s *Server) {
		s.version = version
	}
}

// WithCORSOrigins sets the allowed CORS origins.
func WithCORSOrigins(origins []string) ServerOption {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

// NewServer creates a new API server.
func NewServer(deps Deps, opts ...ServerOption) *Server {
	s := &Server{
		deps:        deps,
		logger:      logging.NewNop(),
		version:     "dev",
		corsOrigins: []string{"*"},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.router = s.setupRouter()
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRouter configures the chi router with all routes and middleware.
func (s *Server) setupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(s.loggingMiddleware)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
		MaxAge:           300,
	})
	r.Use(corsHandler.Handler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/workflows", func(r chi.Router) {
			r.Get("/", s.handleListWorkflows)
			r.Post("/", s.handleCreateWorkflow)

			r.Route("/{workflowID}", func(r chi.Router) {
				r.Get("/", s.handleGetWorkflow)
				r.Put("/", s.handleUpdateWorkflow)
				r.Delete("/", s.handleDeleteWorkflow)

				r.Get("/visual", s.handleGetVisual)
				r.Get("/analysis", s.handleGetAnalysis)
				r.Get("/instructions", s.handleGetInstructions)
				r.Get("/diagram", s.handleGetDiagram)

				r.Get("/exports", s.handleGetExports)
				r.Post("/exports", s.handleExport)
				r.Delete("/exports", s.handleDeleteExports)

				r.Post("/steps", s.handleAddStep)
				r.Post("/edges", s.handleConnectSteps)
				r.Post("/steps/{stepID}/next", s.handleNextSteps)

				r.Post("/execute", s.handleExecute)
			})
		})

		r.Route("/runs", func(r chi.Router) {
			r.Get("/", s.handleListRuns)
			r.Get("/history", s.handleRunHistory)
			r.Route("/{runID}", func(r chi.Router) {
				r.Get("/", s.handleGetRun)
				r.Post("/advance", s.handleAdvanceRun)
				r.Post("/complete", s.handleCompleteRun)
				r.Get("/events", s.handleRunEvents)
			})
		})

		r.Get("/events/stream", s.handleEventStream)

		r.Get("/agents", s.handleListAgents)
		r.Get("/agents/suggestions", s.handleAgentSuggestions)
		r.Post("/commands/parse", s.handleParseCommand)

		r.Post("/handoffs", s.handleRecordHandoff)
		r.Get("/handoffs", s.handleListHandoffs)
	})

	return r
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"bytes", ww.BytesWritten(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// respondError sends a JSON error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads a request body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	return dec.Decode(dst)
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// ListenAndServe starts the HTTP server and shuts it down when ctx ends.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("starting API server", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
