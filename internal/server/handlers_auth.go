package server

import (
	"errors"
	"net/http"

	"mosaic/internal/auth"
	"mosaic/internal/logging"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := s.auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.Warn("login rejected", logging.String(logging.FieldUser, req.Username))
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.writeFailure(w, r, err)
		return
	}

	s.auth.SetCookie(w, session.Token)
	s.logger.Info("login",
		logging.String(logging.FieldUser, session.Username),
		logging.String(logging.FieldRole, session.Role))
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleGuest(w http.ResponseWriter, r *http.Request) {
	session, err := s.auth.GuestSession()
	if err != nil {
		if errors.Is(err, auth.ErrGuestDisabled) {
			writeError(w, http.StatusForbidden, "guest access disabled")
			return
		}
		s.writeFailure(w, r, err)
		return
	}

	s.auth.SetCookie(w, session.Token)
	s.logger.Info("guest session issued")
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	auth.ClearCookie(w)
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"username": identity.Username,
		"role":     identity.Role,
		"filter":   identity.Filter,
	})
}
