package httpserver

import (
	"errors"
	"net/http"

	authdomain "taskmanager/backend/internal/domain/auth"
)

const (
	adminRole = authdomain.RoleAdmin
	userRole  = authdomain.RoleUser
)

type credentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload credentialsPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeDecodeError(w, err)
		return
	}

	token, err := s.services.Auth.Login(r.Context(), authdomain.Credentials{
		Username: payload.Username,
		Password: payload.Password,
	})
	if err != nil {
		if !errors.Is(err, authdomain.ErrInvalidCredentials) {
			s.logger.Error("login failed", "error", err)
		}
		writeError(w, http.StatusUnauthorized, authdomain.ErrInvalidCredentials.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"token":     token,
		"tokenType": "Bearer",
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var payload credentialsPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeDecodeError(w, err)
		return
	}

	user, err := s.services.Auth.Register(r.Context(), payload.Username, payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, authdomain.ErrUsernameExists):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, authdomain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.logger.Error("registration failed", "error", err)
			writeInternalError(w)
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"user": user})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, authdomain.ErrUnauthenticated.Error())
		return
	}
	writeJSON(w, http.StatusOK, principal)
}
