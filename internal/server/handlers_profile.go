package server

import (
	"net/http"
	"strconv"

	"github.com/jonathan/worker-profile-wizard/internal/server/middleware"
)

const maxRevisions = 100

// handleGetProfile returns the caller's last saved profile
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	owner, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	profile, err := s.wizard.Profile(r.Context(), owner)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, profile)
}

// handleListRevisions lists the caller's save history, newest first
func (s *Server) handleListRevisions(w http.ResponseWriter, r *http.Request) {
	owner, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxRevisions {
			s.serviceError(w, r, &ErrValidation{Field: "limit", Message: "must be between 1 and 100"})
			return
		}
	}

	revisions, err := s.wizard.Revisions(r.Context(), owner, limit)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"revisions": revisions,
		"count":     len(revisions),
	})
}

// handleDeleteProfile removes the caller's saved profile
func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	owner, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := s.wizard.DeleteProfile(r.Context(), owner); err != nil {
		s.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
