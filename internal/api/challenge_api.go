package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ─── Challenge Engine API (/api/v1/*) ────────────────────────────────────────

// --- GET /api/v1/templates ---

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.challenges.Templates()
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"templates": templates,
	})
}

// --- GET /api/v1/challenges ---
// Viewing is a side-effecting read: active rows are refreshed and expired
// over-limit rows fail right here.

func (s *Server) handleListChallenges(w http.ResponseWriter, r *http.Request) {
	lists, err := s.challenges.List(userID(r))
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

// --- POST /api/v1/challenges/accept ---

type acceptRequest struct {
	TemplateID string `json:"template_id"`
}

func (s *Server) handleAcceptChallenge(w http.ResponseWriter, r *http.Request) {
	var req acceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.TemplateID == "" {
		writeError(w, http.StatusBadRequest, "template_id is required")
		return
	}

	c, err := s.challenges.Accept(userID(r), req.TemplateID)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"challenge": c,
	})
}

// --- POST /api/v1/challenges/{id}/complete ---

func (s *Server) handleCompleteChallenge(w http.ResponseWriter, r *http.Request) {
	earned, err := s.challenges.Complete(userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeFault(w, err)
		return
	}
	if earned == nil {
		earned = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"badges_earned": earned,
	})
}

// --- POST /api/v1/challenges/{id}/cancel ---

func (s *Server) handleCancelChallenge(w http.ResponseWriter, r *http.Request) {
	if err := s.challenges.Cancel(userID(r), chi.URLParam(r, "id")); err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "cancelled",
	})
}

// --- GET /api/v1/badges ---

func (s *Server) handleListBadges(w http.ResponseWriter, r *http.Request) {
	badges, err := s.badges.Badges(userID(r))
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"badges": badges,
	})
}

// --- GET /api/v1/level ---

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	info, err := s.levels.UserLevel(userID(r))
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
