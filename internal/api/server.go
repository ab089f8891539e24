package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/jobdesc/internal/config"
	"github.com/dgallion1/jobdesc/internal/llm"
	"github.com/dgallion1/jobdesc/internal/metrics"
	"github.com/dgallion1/jobdesc/internal/pipeline"
	"github.com/dgallion1/jobdesc/internal/store"
	"github.com/dgallion1/jobdesc/internal/suggest"
)

// Deps are the components the API serves. Store and Orchestrator may be nil;
// their endpoints then answer 503.
type Deps struct {
	Orchestrator *pipeline.Orchestrator
	Store        store.Store
	Suggest      *suggest.Provider
	LLMStats     *llm.Stats
	Metrics      *metrics.Metrics
}

// Server is the HTTP API server for jobdesc.
type Server struct {
	router   chi.Router
	deps     Deps
	sessions *sessionRegistry
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(deps Deps, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		deps:     deps,
		sessions: newSessionRegistry(cfg.SessionTTL, deps.Metrics, log),
		log:      log,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start expires idle editor sessions until ctx is done.
func (s *Server) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sessions.cleanup()
			}
		}
	}()
}

// Close ends every open editor session.
func (s *Server) Close() {
	s.sessions.closeAll()
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log, s.deps.Metrics))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", s.deps.Metrics.Handler())

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		r.Use(BodyLimit(s.cfg.MaxBodyBytes))

		r.Post("/api/render", s.handleRender)
		r.Post("/api/sanitize", s.handleSanitize)
		r.Post("/api/import", s.handleImport)
		r.Post("/api/suggest", s.handleSuggest)

		r.Put("/api/jobs/{jobID}/description", s.handlePutDescription)
		r.Get("/api/jobs/{jobID}/description", s.handleGetDescription)
		r.Get("/api/jobs/{jobID}/description.html", s.handleGetDescriptionHTML)
		r.Delete("/api/jobs/{jobID}/description", s.handleDeleteDescription)

		r.Post("/api/sessions", s.handleCreateSession)
		r.Route("/api/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleCloseSession)
			r.Post("/commands", s.handleSessionCommands)
			r.Post("/flush", s.handleSessionFlush)
			r.Post("/suggestions", s.handlePopupUpdate)
			r.Post("/suggestions/select", s.handlePopupSelect)
			r.Post("/suggestions/confirm", s.handlePopupConfirm)
			r.Delete("/suggestions", s.handlePopupClose)
		})

		r.Post("/api/generate", s.handleGenerate)
		r.Get("/api/generate/{jobID}/status", s.handleGenerateStatus)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
