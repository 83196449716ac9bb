package server

import (
	"net/http"

	"github.com/jonathan/lesson-factory/internal/server/middleware"
)

// handleGetCurrentUser returns the authenticated reviewer's profile.
func (s *Server) handleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := s.userService.GetProfile(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, user)
}
