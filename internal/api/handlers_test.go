package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/devtodo/internal/config"
	"github.com/ternarybob/devtodo/internal/store"
	"github.com/ternarybob/devtodo/internal/todo"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "devtodo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := config.DefaultConfig()
	return NewServer(cfg, todo.NewService(st))
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func createTodo(t *testing.T, s *Server, title, phase, priority string) map[string]any {
	t.Helper()

	rec := doJSON(t, s, http.MethodPost, "/api/todos", map[string]any{
		"title":    title,
		"phase":    phase,
		"priority": priority,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created map[string]any
	decode(t, rec, &created)
	return created
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	decode(t, rec, &resp)
	assert.Equal(t, "ok", resp["status"])
}

func TestVersion(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/version", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	decode(t, rec, &resp)
	assert.Equal(t, "devtodo-service", resp["service"])
}

func TestCreateTodo(t *testing.T) {
	s := newTestServer(t)

	created := createTodo(t, s, "Test", "planning", "low")

	assert.Equal(t, "Test", created["title"])
	assert.Equal(t, false, created["completed"])
	assert.Positive(t, created["id"].(float64))

	skills, ok := created["recommended_skills"].([]any)
	require.True(t, ok, "create response includes recommendations")
	require.NotEmpty(t, skills)
	first := skills[0].(map[string]any)
	assert.Equal(t, "brainstorming", first["name"])
}

func TestCreateTodo_Validation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{
			name: "empty title",
			body: map[string]any{"title": "", "phase": "planning", "priority": "low"},
		},
		{
			name: "title too long",
			body: map[string]any{"title": strings.Repeat("x", 201), "phase": "planning", "priority": "low"},
		},
		{
			name: "invalid phase",
			body: map[string]any{"title": "ok", "phase": "shipping", "priority": "low"},
		},
		{
			name: "invalid priority",
			body: map[string]any{"title": "ok", "phase": "planning", "priority": "urgent"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/todos", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]any
			decode(t, rec, &resp)
			assert.NotEmpty(t, resp["error"])
		})
	}

	// Nothing persisted
	rec := doJSON(t, s, http.MethodGet, "/api/todos", nil)
	var todos []map[string]any
	decode(t, rec, &todos)
	assert.Empty(t, todos)
}

func TestCreateTodo_MalformedBody(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/todos", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTodos_Filter(t *testing.T) {
	s := newTestServer(t)

	design := createTodo(t, s, "design work", "design", "low")
	createTodo(t, s, "planning work", "planning", "low")

	rec := doJSON(t, s, http.MethodGet, "/api/todos?phase=design", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var todos []map[string]any
	decode(t, rec, &todos)
	require.Len(t, todos, 1)
	assert.Equal(t, design["id"], todos[0]["id"])
}

func TestListTodos_InvalidFilter(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/todos?phase=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/todos?completed=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTodo_NotFound(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/todos/42", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateTodo_Partial(t *testing.T) {
	s := newTestServer(t)

	created := createTodo(t, s, "original", "testing", "medium")
	id := strconv.Itoa(int(created["id"].(float64)))

	rec := doJSON(t, s, http.MethodPut, "/api/todos/"+id, map[string]any{"title": "X"})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated map[string]any
	decode(t, rec, &updated)
	assert.Equal(t, "X", updated["title"])
	assert.Equal(t, "testing", updated["phase"], "unsupplied fields stay untouched")
	assert.Equal(t, "medium", updated["priority"])
}

func TestUpdateTodo_NullClearsDueDate(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/todos", map[string]any{
		"title":    "dated",
		"phase":    "planning",
		"priority": "low",
		"due_date": "2026-09-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created map[string]any
	decode(t, rec, &created)
	require.Equal(t, "2026-09-01", created["due_date"])
	id := strconv.Itoa(int(created["id"].(float64)))

	// Omitting the field leaves the date alone
	rec = doJSON(t, s, http.MethodPut, "/api/todos/"+id, map[string]any{"title": "still dated"})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated map[string]any
	decode(t, rec, &updated)
	assert.Equal(t, "2026-09-01", updated["due_date"])

	// An explicit null clears it
	rec = doJSON(t, s, http.MethodPut, "/api/todos/"+id, map[string]any{"due_date": nil})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &updated)
	assert.Nil(t, updated["due_date"])

	// And the cleared date persists
	rec = doJSON(t, s, http.MethodGet, "/api/todos/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &updated)
	assert.Nil(t, updated["due_date"])
}

func TestUpdateTodo_NullClearsDescription(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/todos", map[string]any{
		"title":       "described",
		"description": "some notes",
		"phase":       "testing",
		"priority":    "medium",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created map[string]any
	decode(t, rec, &created)
	require.Equal(t, "some notes", created["description"])
	id := strconv.Itoa(int(created["id"].(float64)))

	rec = doJSON(t, s, http.MethodPut, "/api/todos/"+id, map[string]any{"description": nil})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated map[string]any
	decode(t, rec, &updated)
	assert.Nil(t, updated["description"])
	assert.Equal(t, "described", updated["title"])
}

func TestUpdateTodo_NotFound(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPut, "/api/todos/99", map[string]any{"title": "X"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToggleComplete(t *testing.T) {
	s := newTestServer(t)

	created := createTodo(t, s, "flip me", "implementation", "low")
	id := strconv.Itoa(int(created["id"].(float64)))

	rec := doJSON(t, s, http.MethodPatch, "/api/todos/"+id+"/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var toggled map[string]any
	decode(t, rec, &toggled)
	assert.Equal(t, true, toggled["completed"])

	rec = doJSON(t, s, http.MethodPatch, "/api/todos/"+id+"/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &toggled)
	assert.Equal(t, false, toggled["completed"])
}

func TestDeleteTodo(t *testing.T) {
	s := newTestServer(t)

	created := createTodo(t, s, "doomed", "deployment", "high")
	id := strconv.Itoa(int(created["id"].(float64)))

	rec := doJSON(t, s, http.MethodDelete, "/api/todos/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/todos/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, s, http.MethodDelete, "/api/todos/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListPhases(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/phases", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var phases []map[string]any
	decode(t, rec, &phases)
	require.Len(t, phases, 5)
	assert.Equal(t, "planning", phases[0]["name"])
	assert.NotEmpty(t, phases[0]["skills"])
}

func TestGetPhase(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/phases/planning", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var phase map[string]any
	decode(t, rec, &phase)
	assert.Equal(t, "planning", phase["name"])

	rec = doJSON(t, s, http.MethodGet, "/api/phases/retrospective", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPIKeyAuth(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "devtodo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := config.DefaultConfig()
	cfg.API.APIKey = "secret"
	s := NewServer(cfg, todo.NewService(st))

	// Without key
	rec := doJSON(t, s, http.MethodGet, "/api/todos", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Health stays open
	rec = doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// With key
	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDashboardPage(t *testing.T) {
	s := newTestServer(t)
	createTodo(t, s, "visible", "planning", "low")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "visible")
	assert.Contains(t, rec.Body.String(), "brainstorming")
}

func TestTodoFormFlow(t *testing.T) {
	s := newTestServer(t)

	form := url.Values{}
	form.Set("title", "From the form")
	form.Set("phase", "design")
	form.Set("priority", "medium")
	form.Set("due_date", "2026-06-01")

	req := httptest.NewRequest(http.MethodPost, "/todos/new", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	location := rec.Header().Get("Location")
	require.NotEmpty(t, location)

	// Detail page renders the new todo with its recommendations
	req = httptest.NewRequest(http.MethodGet, location, nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "From the form")
	assert.Contains(t, rec.Body.String(), "brainstorming")
}

func TestTodoFormValidationError(t *testing.T) {
	s := newTestServer(t)

	form := url.Values{}
	form.Set("title", "")
	form.Set("phase", "design")
	form.Set("priority", "medium")

	req := httptest.NewRequest(http.MethodPost, "/todos/new", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	// Form re-renders with the error instead of redirecting
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "title is required")
}

func TestToggleForm_MissingTodoStillRedirects(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/todos/99/toggle", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/todos/99", rec.Header().Get("Location"))
}

func TestDeleteForm_MissingTodoStillRedirects(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/todos/99/delete", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestStaticStylesheet(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/static/styles.css", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/css", rec.Header().Get("Content-Type"))
}
