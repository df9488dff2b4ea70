package httpserver

import (
	"errors"
	"net/http"

	authdomain "taskmanager/backend/internal/domain/auth"
	projectdomain "taskmanager/backend/internal/domain/project"
	taskdomain "taskmanager/backend/internal/domain/task"
	taskusecase "taskmanager/backend/internal/usecase/task"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	items, err := s.services.Tasks.List(r.Context())
	if err != nil {
		s.writeTaskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleListProjectTasks(w http.ResponseWriter, r *http.Request) {
	items, err := s.services.Tasks.ListByProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeTaskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	item, err := s.services.Tasks.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeTaskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusForbidden, authdomain.ErrForbidden.Error())
		return
	}

	var payload taskusecase.Input
	if err := decodeJSON(w, r, &payload); err != nil {
		writeDecodeError(w, err)
		return
	}

	item, err := s.services.Tasks.Create(r.Context(), principal.UserID, payload)
	if err != nil {
		s.writeTaskError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleCreateProjectTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusForbidden, authdomain.ErrForbidden.Error())
		return
	}

	var payload taskusecase.Input
	if err := decodeJSON(w, r, &payload); err != nil {
		writeDecodeError(w, err)
		return
	}

	item, err := s.services.Tasks.CreateInProject(r.Context(), principal.UserID, chi.URLParam(r, "id"), payload)
	if err != nil {
		s.writeTaskError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var payload taskusecase.Input
	if err := decodeJSON(w, r, &payload); err != nil {
		writeDecodeError(w, err)
		return
	}

	item, err := s.services.Tasks.Update(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		s.writeTaskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.services.Tasks.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeTaskError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeTaskError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, taskdomain.ErrNotFound), errors.Is(err, projectdomain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, taskdomain.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("task operation failed", "error", err)
		writeInternalError(w)
	}
}
