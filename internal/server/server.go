package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/ironlog/internal/coach"
	"github.com/claude/ironlog/internal/draft"
	"github.com/claude/ironlog/internal/storage"
	"github.com/go-chi/chi/v5"
)

// Single-user deployment: history and draft are scoped to this user until
// a real identity layer lands.
const defaultUserID = 1

// Server holds dependencies for HTTP handlers.
type Server struct {
	db     *storage.DB
	drafts *draft.Manager
	coach  *coach.Client // nil when no API key is configured
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, drafts *draft.Manager, coachClient *coach.Client, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:     db,
		drafts: drafts,
		coach:  coachClient,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))

		// Finalized history
		r.Get("/sessions", s.handleQuerySessions)
		r.Get("/sessions/watch", s.handleWatchSessions)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Delete("/sessions/{id}", s.handleDeleteSession)
		r.Post("/sessions/{id}/repeat", s.handleRepeatSession)

		// Draft editing
		r.Get("/draft", s.handleGetDraft)
		r.Delete("/draft", s.handleDiscardDraft)
		r.Put("/draft/name", s.handleRenameDraft)
		r.Post("/draft/finish", s.handleFinishDraft)
		r.Post("/draft/exercises", s.handleAddExercise)
		r.Delete("/draft/exercises/{id}", s.handleRemoveExercise)
		r.Patch("/draft/exercises/{id}", s.handleUpdateExercise)
		r.Patch("/draft/exercises/{id}/settings", s.handleUpdateSettings)
		r.Post("/draft/exercises/{id}/superset", s.handleAddSupersetExercise)
		r.Post("/draft/exercises/{id}/sets", s.handleAddSet)
		r.Patch("/draft/exercises/{id}/sets/{setID}", s.handleUpdateSet)
		r.Delete("/draft/exercises/{id}/sets/{setID}", s.handleRemoveSet)

		// Analytics
		r.Get("/records", s.handleRecords)
		r.Get("/chart", s.handleChart)
		r.Get("/stats/weekly", s.handleWeekly)
		r.Get("/quickstarts", s.handleQuickStarts)

		// Coach
		r.Post("/coach/insight", s.handleCoachInsight)
		r.Post("/coach/generate", s.handleCoachGenerate)
	})
}
