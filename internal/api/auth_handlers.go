package api

import (
	"net/http"

	"hamrosewa/internal/models"
	"hamrosewa/internal/service"
)

type sessionResponse struct {
	SignedIn bool         `json:"signedIn"`
	User     *models.User `json:"user,omitempty"`
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var form service.LoginForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	session, err := s.deps.Auth.Login(r.Context(), visitorID(r.Context()), form)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{SignedIn: true, User: &session.User})
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var form service.RegisterForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	session, err := s.deps.Auth.Register(r.Context(), visitorID(r.Context()), form)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{SignedIn: true, User: &session.User})
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Auth.Logout(r.Context(), visitorID(r.Context())); err != nil {
		s.logger.Error().Err(err).Msg("logout")
		writeError(w, http.StatusInternalServerError, "failed to sign out")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{})
}

func (s *HTTPServer) handleMe(w http.ResponseWriter, r *http.Request) {
	session, err := s.deps.Auth.Session(r.Context(), visitorID(r.Context()))
	if err != nil {
		s.logger.Warn().Err(err).Msg("read session")
	}
	if session == nil {
		writeJSON(w, http.StatusOK, sessionResponse{})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{SignedIn: true, User: &session.User})
}

func (s *HTTPServer) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Preferences.Get(r.Context(), visitorID(r.Context())))
}

func (s *HTTPServer) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	var update models.Preferences
	if err := decodeJSON(w, r, &update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	prefs, err := s.deps.Preferences.Update(r.Context(), visitorID(r.Context()), update)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save preferences")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}
