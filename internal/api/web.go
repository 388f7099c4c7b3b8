package api

import (
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/ternarybob/devtodo/internal/catalog"
	"github.com/ternarybob/devtodo/internal/logger"
	"github.com/ternarybob/devtodo/internal/models"
	"github.com/ternarybob/devtodo/internal/store"
	"github.com/ternarybob/devtodo/web"
)

// Template data types

// DashboardData is the data for the dashboard page.
type DashboardData struct {
	Columns []PhaseColumn
}

// PhaseColumn is one phase lane on the dashboard.
type PhaseColumn struct {
	Name   string
	Todos  []models.Todo
	Skills []string
}

// TodoListData is the data for the filtered todo list page.
type TodoListData struct {
	Todos      []models.Todo
	Phases     []models.Phase
	Priorities []models.Priority
	Phase      string
	Priority   string
	Completed  string
}

// TodoFormData is the data for the new/edit form page.
type TodoFormData struct {
	Todo       *models.Todo
	Phases     []models.Phase
	Priorities []models.Priority
	Action     string
	Error      string
}

// TodoDetailData is the data for the todo detail page.
type TodoDetailData struct {
	Todo              *models.Todo
	RecommendedSkills []catalog.Skill
}

// PhasesPageData is the data for the phases reference page.
type PhasesPageData struct {
	Phases []PhaseResponse
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	todos, err := s.svc.List(r.Context(), store.Filter{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	byPhase := make(map[models.Phase][]models.Todo)
	for _, t := range todos {
		byPhase[t.Phase] = append(byPhase[t.Phase], t)
	}

	data := DashboardData{}
	for _, p := range models.Phases() {
		data.Columns = append(data.Columns, PhaseColumn{
			Name:   string(p),
			Todos:  byPhase[p],
			Skills: catalog.SkillNamesForPhase(p),
		})
	}

	s.renderTemplate(w, "index.html", data)
}

func (s *Server) handleTodosPage(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	todos, err := s.svc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := TodoListData{
		Todos:      todos,
		Phases:     models.Phases(),
		Priorities: models.Priorities(),
		Phase:      r.URL.Query().Get("phase"),
		Priority:   r.URL.Query().Get("priority"),
		Completed:  r.URL.Query().Get("completed"),
	}

	s.renderTemplate(w, "todos.html", data)
}

func (s *Server) handleNewTodoPage(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, "todo-form.html", TodoFormData{
		Phases:     models.Phases(),
		Priorities: models.Priorities(),
		Action:     "/todos/new",
	})
}

func (s *Server) handleCreateTodoForm(w http.ResponseWriter, r *http.Request) {
	in, err := createFromForm(r)
	if err != nil {
		s.renderTemplate(w, "todo-form.html", TodoFormData{
			Phases:     models.Phases(),
			Priorities: models.Priorities(),
			Action:     "/todos/new",
			Error:      err.Error(),
		})
		return
	}

	created, err := s.svc.Create(r.Context(), in)
	if err != nil {
		s.renderTemplate(w, "todo-form.html", TodoFormData{
			Phases:     models.Phases(),
			Priorities: models.Priorities(),
			Action:     "/todos/new",
			Error:      err.Error(),
		})
		return
	}

	http.Redirect(w, r, "/todos/"+strconv.FormatInt(created.ID, 10), http.StatusSeeOther)
}

func (s *Server) handleTodoDetailPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/todos", http.StatusSeeOther)
		return
	}

	view, err := s.svc.GetWithSkills(r.Context(), id)
	if err != nil {
		http.Redirect(w, r, "/todos", http.StatusSeeOther)
		return
	}

	s.renderTemplate(w, "todo-detail.html", TodoDetailData{
		Todo:              &view.Todo,
		RecommendedSkills: view.RecommendedSkills,
	})
}

func (s *Server) handleEditTodoPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/todos", http.StatusSeeOther)
		return
	}

	t, err := s.svc.Get(r.Context(), id)
	if err != nil {
		http.Redirect(w, r, "/todos", http.StatusSeeOther)
		return
	}

	s.renderTemplate(w, "todo-form.html", TodoFormData{
		Todo:       t,
		Phases:     models.Phases(),
		Priorities: models.Priorities(),
		Action:     "/todos/" + strconv.FormatInt(id, 10) + "/edit",
	})
}

func (s *Server) handleUpdateTodoForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/todos", http.StatusSeeOther)
		return
	}

	in, err := createFromForm(r)
	if err == nil {
		// The form always submits the full record, so a cleared input
		// clears the stored value.
		patch := models.TodoUpdate{
			Title:       &in.Title,
			Description: models.Optional[string]{Set: true, Value: in.Description},
			Phase:       &in.Phase,
			Priority:    &in.Priority,
			DueDate:     models.Optional[models.Date]{Set: true, Value: in.DueDate},
		}
		_, err = s.svc.Update(r.Context(), id, patch)
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		t, getErr := s.svc.Get(r.Context(), id)
		if getErr != nil {
			http.Redirect(w, r, "/todos", http.StatusSeeOther)
			return
		}
		s.renderTemplate(w, "todo-form.html", TodoFormData{
			Todo:       t,
			Phases:     models.Phases(),
			Priorities: models.Priorities(),
			Action:     "/todos/" + strconv.FormatInt(id, 10) + "/edit",
			Error:      err.Error(),
		})
		return
	}

	http.Redirect(w, r, "/todos/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
}

func (s *Server) handleToggleForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/todos", http.StatusSeeOther)
		return
	}

	if _, err := s.svc.ToggleComplete(r.Context(), id); err != nil {
		logger.GetLogger().Warn().
			Err(err).
			Str("id", strconv.FormatInt(id, 10)).
			Msg("Toggle from form failed")
	}
	http.Redirect(w, r, "/todos/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
}

func (s *Server) handleDeleteForm(w http.ResponseWriter, r *http.Request) {
	if id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64); err == nil {
		if _, err := s.svc.Delete(r.Context(), id); err != nil {
			logger.GetLogger().Warn().
				Err(err).
				Str("id", strconv.FormatInt(id, 10)).
				Msg("Delete from form failed")
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handlePhasesPage(w http.ResponseWriter, r *http.Request) {
	data := PhasesPageData{}
	for _, p := range models.Phases() {
		data.Phases = append(data.Phases, PhaseResponse{
			Name:   string(p),
			Skills: catalog.SkillsForPhase(p),
		})
	}

	s.renderTemplate(w, "phases.html", data)
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	fsPath := strings.TrimPrefix(r.URL.Path, "/static/")

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	switch filepath.Ext(fsPath) {
	case ".css":
		w.Header().Set("Content-Type", "text/css")
	case ".js":
		w.Header().Set("Content-Type", "application/javascript")
	case ".svg":
		w.Header().Set("Content-Type", "image/svg+xml")
	}

	data, err := fs.ReadFile(staticFS, fsPath)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	w.Write(data)
}

// renderTemplate renders one embedded page template.
func (s *Server) renderTemplate(w http.ResponseWriter, name string, data any) {
	tmpl, err := template.ParseFS(web.Templates, "templates/"+name)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	if err := tmpl.Execute(w, data); err != nil {
		http.Error(w, "Template execution error: "+err.Error(), http.StatusInternalServerError)
	}
}

// createFromForm parses the shared new/edit form fields.
func createFromForm(r *http.Request) (models.TodoCreate, error) {
	var in models.TodoCreate

	if err := r.ParseForm(); err != nil {
		return in, err
	}

	in.Title = strings.TrimSpace(r.FormValue("title"))

	if desc := strings.TrimSpace(r.FormValue("description")); desc != "" {
		in.Description = &desc
	}

	phase, err := models.ParsePhase(r.FormValue("phase"))
	if err != nil {
		return in, err
	}
	in.Phase = phase

	priority, err := models.ParsePriority(r.FormValue("priority"))
	if err != nil {
		return in, err
	}
	in.Priority = priority

	if raw := r.FormValue("due_date"); raw != "" {
		due, err := models.ParseDate(raw)
		if err != nil {
			return in, err
		}
		in.DueDate = &due
	}

	return in, nil
}
