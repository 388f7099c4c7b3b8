package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/ternarybob/devtodo/internal/catalog"
	"github.com/ternarybob/devtodo/internal/models"
	"github.com/ternarybob/devtodo/internal/store"
	"github.com/ternarybob/devtodo/internal/todo"
)

// version is set via -ldflags at build time
var version = "dev"

// SetVersion sets the version string (called from main).
func SetVersion(v string) {
	version = v
}

// HealthResponse is the response for /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// VersionResponse is the response for /version.
type VersionResponse struct {
	Version string `json:"version"`
	Service string `json:"service"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// PhaseResponse is one phase with its ordered skill recommendations.
type PhaseResponse struct {
	Name   string          `json:"name"`
	Skills []catalog.Skill `json:"skills"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{
		Version: version,
		Service: "devtodo-service",
	})
}

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	var in models.TodoCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := s.svc.Create(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, todo.WithSkills(*created))
}

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	todos, err := s.svc.List(r.Context(), filter)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	views := make([]todo.View, 0, len(todos))
	for _, t := range todos {
		views = append(views, todo.WithSkills(t))
	}

	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}

	view, err := s.svc.GetWithSkills(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleUpdateTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}

	var patch models.TodoUpdate
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := s.svc.Update(r.Context(), id, patch)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, todo.WithSkills(*updated))
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}

	deleted, err := s.svc.Delete(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Todo not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleComplete(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}

	toggled, err := s.svc.ToggleComplete(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, todo.WithSkills(*toggled))
}

func (s *Server) handleListPhases(w http.ResponseWriter, r *http.Request) {
	phases := make([]PhaseResponse, 0, len(models.Phases()))
	for _, p := range models.Phases() {
		phases = append(phases, PhaseResponse{
			Name:   string(p),
			Skills: catalog.SkillsForPhase(p),
		})
	}

	writeJSON(w, http.StatusOK, phases)
}

func (s *Server) handleGetPhase(w http.ResponseWriter, r *http.Request) {
	phase, err := models.ParsePhase(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Phase not found")
		return
	}

	writeJSON(w, http.StatusOK, PhaseResponse{
		Name:   string(phase),
		Skills: catalog.SkillsForPhase(phase),
	})
}

// Helper functions

// todoID extracts the {id} route parameter, writing a 400 if it is not a
// positive integer.
func todoID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid todo id")
		return 0, false
	}
	return id, true
}

// filterFromQuery builds a store filter from the optional phase, priority,
// and completed query parameters.
func filterFromQuery(r *http.Request) (store.Filter, error) {
	var f store.Filter

	if v := r.URL.Query().Get("phase"); v != "" {
		phase, err := models.ParsePhase(v)
		if err != nil {
			return f, err
		}
		f.Phase = &phase
	}
	if v := r.URL.Query().Get("priority"); v != "" {
		priority, err := models.ParsePriority(v)
		if err != nil {
			return f, err
		}
		f.Priority = &priority
	}
	if v := r.URL.Query().Get("completed"); v != "" {
		completed, err := strconv.ParseBool(v)
		if err != nil {
			return f, &models.ValidationError{Field: "completed", Message: "must be true or false"}
		}
		f.Completed = &completed
	}

	return f, nil
}

// writeServiceError maps service errors onto HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Todo not found")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
