// Package api provides the JSON API and HTML views for devtodo-service.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ternarybob/devtodo/internal/config"
	"github.com/ternarybob/devtodo/internal/todo"
)

// Server represents the HTTP server.
type Server struct {
	cfg    *config.Config
	router chi.Router
	svc    *todo.Service
}

// NewServer creates a new HTTP server around the todo service.
func NewServer(cfg *config.Config, svc *todo.Service) *Server {
	s := &Server{
		cfg: cfg,
		svc: svc,
	}

	s.setupRouter()
	return s
}

// setupRouter configures all routes.
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Optional API key authentication
	if s.cfg.API.APIKey != "" {
		r.Use(s.apiKeyAuth)
	}

	// Health and version endpoints (no auth)
	r.Get("/health", s.handleHealth)
	r.Get("/version", s.handleVersion)

	// JSON API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/todos", func(r chi.Router) {
			r.Get("/", s.handleListTodos)
			r.Post("/", s.handleCreateTodo)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetTodo)
				r.Put("/", s.handleUpdateTodo)
				r.Delete("/", s.handleDeleteTodo)
				r.Patch("/complete", s.handleToggleComplete)
			})
		})
		r.Get("/phases", s.handleListPhases)
		r.Get("/phases/{name}", s.handleGetPhase)
	})

	// Server-rendered views
	r.Get("/", s.handleDashboard)
	r.Get("/todos", s.handleTodosPage)
	r.Get("/todos/new", s.handleNewTodoPage)
	r.Post("/todos/new", s.handleCreateTodoForm)
	r.Get("/todos/{id}", s.handleTodoDetailPage)
	r.Get("/todos/{id}/edit", s.handleEditTodoPage)
	r.Post("/todos/{id}/edit", s.handleUpdateTodoForm)
	r.Post("/todos/{id}/toggle", s.handleToggleForm)
	r.Post("/todos/{id}/delete", s.handleDeleteForm)
	r.Get("/phases", s.handlePhasesPage)
	r.Get("/static/*", s.handleStatic)

	s.router = r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// apiKeyAuth is middleware that validates API key.
func (s *Server) apiKeyAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip auth for health and version
		if r.URL.Path == "/health" || r.URL.Path == "/version" {
			next.ServeHTTP(w, r)
			return
		}

		// Check API key header
		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			apiKey = r.URL.Query().Get("api_key")
		}

		if apiKey != s.cfg.API.APIKey {
			writeError(w, http.StatusUnauthorized, "Invalid or missing API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}
