package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/claude/ironlog/internal/coach"
)

func (s *Server) handleCoachInsight(w http.ResponseWriter, r *http.Request) {
	if s.coach == nil {
		writeJSON(w, http.StatusOK, map[string]any{"tip": coach.FallbackTip, "fallback": true})
		return
	}

	history, err := s.db.QuerySessions(r.Context(), defaultUserID, 3)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	tip, err := s.coach.Insight(r.Context(), history)
	if err != nil {
		// Advisory only: a failed insight degrades to the static tip,
		// never to an error the editing flow has to care about.
		s.log.Warn("coach insight failed", "error", err)
		writeJSON(w, http.StatusOK, map[string]any{"tip": coach.FallbackTip, "fallback": true})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tip": tip})
}

func (s *Server) handleCoachGenerate(w http.ResponseWriter, r *http.Request) {
	if s.coach == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "coach is not configured"})
		return
	}

	var body struct {
		Goal string `json:"goal"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if strings.TrimSpace(body.Goal) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "goal is required"})
		return
	}

	history, err := s.db.QuerySessions(r.Context(), defaultUserID, 5)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	plan, err := s.coach.GeneratePlan(r.Context(), body.Goal, history)
	if err != nil {
		s.log.Warn("coach generation failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to generate workout"})
		return
	}

	d := s.drafts.Replace(r.Context(), defaultUserID, plan.Draft())
	writeDraft(w, d)
}
