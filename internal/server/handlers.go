package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/ironlog/internal/analytics"
	"github.com/claude/ironlog/internal/draft"
	"github.com/claude/ironlog/internal/workout"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// --- History ---

func (s *Server) handleQuerySessions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	sessions, err := s.db.QuerySessions(r.Context(), defaultUserID, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if sessions == nil {
		sessions = []workout.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return
	}

	session, err := s.db.GetSession(r.Context(), id, defaultUserID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return
	}

	deleted, err := s.db.DeleteSession(r.Context(), id, defaultUserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRepeatSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return
	}

	session, err := s.db.GetSession(r.Context(), id, defaultUserID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}

	d := s.drafts.Repeat(r.Context(), defaultUserID, *session)
	writeDraft(w, d)
}

// handleWatchSessions streams full history snapshots as server-sent events
// until the client disconnects. Each event replaces the previous view.
func (s *Server) handleWatchSessions(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for snapshot := range s.db.Subscribe(r.Context(), defaultUserID, 3*time.Second) {
		data, err := json.Marshal(snapshot)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
}

// --- Draft ---

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	writeDraft(w, s.drafts.Open(r.Context(), defaultUserID))
}

func (s *Server) handleDiscardDraft(w http.ResponseWriter, r *http.Request) {
	s.drafts.Discard(r.Context(), defaultUserID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRenameDraft(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	d := s.drafts.Update(r.Context(), defaultUserID, func(d workout.Draft) workout.Draft {
		return d.WithName(body.Name)
	})
	writeDraft(w, d)
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	d := s.drafts.Update(r.Context(), defaultUserID, workout.Draft.AddExercise)
	writeDraft(w, d)
}

func (s *Server) handleRemoveExercise(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d := s.drafts.Update(r.Context(), defaultUserID, func(d workout.Draft) workout.Draft {
		return d.RemoveExercise(id)
	})
	writeDraft(w, d)
}

func (s *Server) handleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	d := s.drafts.Update(r.Context(), defaultUserID, func(d workout.Draft) workout.Draft {
		return d.UpdateExercise(id, body.Field, body.Value)
	})
	writeDraft(w, d)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	d := s.drafts.Update(r.Context(), defaultUserID, func(d workout.Draft) workout.Draft {
		return d.UpdateSettings(id, body.Key, body.Value)
	})
	writeDraft(w, d)
}

func (s *Server) handleAddSupersetExercise(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body struct {
		GroupID string `json:"group_id"`
	}
	// An empty body means "start a new superset with this anchor".
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
			return
		}
	}
	d := s.drafts.Update(r.Context(), defaultUserID, func(d workout.Draft) workout.Draft {
		return d.AddSupersetExercise(id, body.GroupID)
	})
	writeDraft(w, d)
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d := s.drafts.Update(r.Context(), defaultUserID, func(d workout.Draft) workout.Draft {
		return d.AddSet(id)
	})
	writeDraft(w, d)
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	exerciseID := chi.URLParam(r, "id")
	setID := chi.URLParam(r, "setID")
	var body struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	d := s.drafts.Update(r.Context(), defaultUserID, func(d workout.Draft) workout.Draft {
		return d.UpdateSet(exerciseID, setID, body.Field, body.Value)
	})
	writeDraft(w, d)
}

func (s *Server) handleRemoveSet(w http.ResponseWriter, r *http.Request) {
	exerciseID := chi.URLParam(r, "id")
	setID := chi.URLParam(r, "setID")
	d := s.drafts.Update(r.Context(), defaultUserID, func(d workout.Draft) workout.Draft {
		return d.RemoveSet(exerciseID, setID)
	})
	writeDraft(w, d)
}

func (s *Server) handleFinishDraft(w http.ResponseWriter, r *http.Request) {
	session, err := s.drafts.Finish(r.Context(), defaultUserID)
	switch {
	case errors.Is(err, workout.ErrEmptyWorkout):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, draft.ErrNoDraft):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, draft.ErrCommitFailed):
		// The draft is preserved; the user may retry the save.
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusCreated, session)
	}
}

// --- Analytics ---

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	history, err := s.db.QuerySessions(r.Context(), defaultUserID, 0)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	records := analytics.PersonalRecords(history)
	if records == nil {
		records = []analytics.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	metric := analytics.Metric(r.URL.Query().Get("metric"))
	switch metric {
	case "", analytics.MetricVolume:
		metric = analytics.MetricVolume
	case analytics.MetricSets:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "metric must be \"volume\" or \"sets\""})
		return
	}

	history, err := s.db.QuerySessions(r.Context(), defaultUserID, 0)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	points := analytics.Series(history, metric)
	writeJSON(w, http.StatusOK, map[string]any{
		"points": points,
		// Fewer than two points cannot chart a trend; the UI shows a hint
		// instead of an empty graph.
		"insufficient_data": len(points) < 2,
	})
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	history, err := s.db.QuerySessions(r.Context(), defaultUserID, 0)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	now := time.Now()
	writeJSON(w, http.StatusOK, map[string]any{
		"week_start": analytics.WeekStart(now),
		"count":      analytics.WeeklyCount(history, now),
	})
}

func (s *Server) handleQuickStarts(w http.ResponseWriter, r *http.Request) {
	history, err := s.db.QuerySessions(r.Context(), defaultUserID, 0)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	starts := analytics.QuickStarts(history)
	if starts == nil {
		starts = []workout.Session{}
	}
	writeJSON(w, http.StatusOK, starts)
}

// --- Helpers ---

// writeDraft responds with the draft plus its superset grouping, recomputed
// on every response the way the UI regroups on every render.
func writeDraft(w http.ResponseWriter, d workout.Draft) {
	writeJSON(w, http.StatusOK, map[string]any{
		"draft":  d,
		"groups": workout.Group(d.Exercises),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
