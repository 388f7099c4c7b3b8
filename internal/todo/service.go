// Package todo implements the service layer that owns all todo mutations.
package todo

import (
	"context"
	"strconv"

	"github.com/ternarybob/devtodo/internal/catalog"
	"github.com/ternarybob/devtodo/internal/logger"
	"github.com/ternarybob/devtodo/internal/models"
	"github.com/ternarybob/devtodo/internal/store"
)

// View bundles a todo with the ordered skill recommendations for its phase.
type View struct {
	models.Todo
	RecommendedSkills []catalog.Skill `json:"recommended_skills"`
}

// WithSkills builds the enriched view for a todo.
func WithSkills(t models.Todo) View {
	return View{
		Todo:              t,
		RecommendedSkills: catalog.SkillsForPhase(t.Phase),
	}
}

// Service is the sole mediator between presentation layers and the store.
// Every read re-fetches from the store; the service holds no cached state.
type Service struct {
	store *store.Store
}

// NewService creates a todo service backed by the given store.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Create validates the input and persists a new todo.
func (s *Service) Create(ctx context.Context, in models.TodoCreate) (*models.Todo, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	created, err := s.store.Insert(ctx, in)
	if err != nil {
		return nil, err
	}

	logger.GetLogger().Debug().
		Str("id", strconv.FormatInt(created.ID, 10)).
		Str("phase", string(created.Phase)).
		Msg("Todo created")

	return created, nil
}

// Get returns the todo with the given id, or store.ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*models.Todo, error) {
	return s.store.FindByID(ctx, id)
}

// List returns todos matching the filter, most recently created first.
func (s *Service) List(ctx context.Context, f store.Filter) ([]models.Todo, error) {
	return s.store.FindAll(ctx, f)
}

// Update validates the supplied fields and applies them as a partial patch.
// Never creates a record for an unknown id.
func (s *Service) Update(ctx context.Context, id int64, patch models.TodoUpdate) (*models.Todo, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return s.store.Replace(ctx, id, patch)
}

// Delete hard-deletes a todo, reporting whether a record was removed.
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.store.Remove(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		logger.GetLogger().Debug().Str("id", strconv.FormatInt(id, 10)).Msg("Todo deleted")
	}
	return deleted, nil
}

// ToggleComplete flips the completed flag of a todo. This is a read-then-write
// through two store calls: concurrent toggles on the same id are
// last-write-wins, matching the single-user expectations of the tool.
func (s *Service) ToggleComplete(ctx context.Context, id int64) (*models.Todo, error) {
	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	flipped := !current.Completed
	return s.store.Replace(ctx, id, models.TodoUpdate{Completed: &flipped})
}

// GetWithSkills returns the todo enriched with its phase's recommended
// skills, or store.ErrNotFound for an unknown id.
func (s *Service) GetWithSkills(ctx context.Context, id int64) (*View, error) {
	t, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := WithSkills(*t)
	return &view, nil
}
