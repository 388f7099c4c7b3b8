// Package models defines the todo entity and its closed enumerations.
package models

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// MaxTitleLen is the maximum number of characters allowed in a todo title.
const MaxTitleLen = 200

// Phase is the development-lifecycle stage a todo belongs to.
type Phase string

const (
	PhasePlanning       Phase = "planning"
	PhaseDesign         Phase = "design"
	PhaseImplementation Phase = "implementation"
	PhaseTesting        Phase = "testing"
	PhaseDeployment     Phase = "deployment"
)

// Phases returns all phases in presentation order.
func Phases() []Phase {
	return []Phase{PhasePlanning, PhaseDesign, PhaseImplementation, PhaseTesting, PhaseDeployment}
}

// ParsePhase converts a string into a Phase, rejecting unknown values.
func ParsePhase(s string) (Phase, error) {
	p := Phase(s)
	if !p.Valid() {
		return "", &ValidationError{Field: "phase", Message: fmt.Sprintf("invalid phase %q", s)}
	}
	return p, nil
}

// Valid reports whether the phase is one of the closed set.
func (p Phase) Valid() bool {
	switch p {
	case PhasePlanning, PhaseDesign, PhaseImplementation, PhaseTesting, PhaseDeployment:
		return true
	}
	return false
}

// Priority is the urgency label of a todo, independent of phase.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities returns all priorities in presentation order.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// ParsePriority converts a string into a Priority, rejecting unknown values.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.Valid() {
		return "", &ValidationError{Field: "priority", Message: fmt.Sprintf("invalid priority %q", s)}
	}
	return p, nil
}

// Valid reports whether the priority is one of the closed set.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Todo is the persisted task entity.
type Todo struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Phase       Phase     `json:"phase"`
	Priority    Priority  `json:"priority"`
	DueDate     *Date     `json:"due_date"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TodoCreate carries the fields required to create a todo.
type TodoCreate struct {
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Phase       Phase    `json:"phase"`
	Priority    Priority `json:"priority"`
	DueDate     *Date    `json:"due_date"`
}

// Validate checks the create input before it reaches the store.
func (c TodoCreate) Validate() error {
	if err := validateTitle(c.Title); err != nil {
		return err
	}
	if !c.Phase.Valid() {
		return &ValidationError{Field: "phase", Message: fmt.Sprintf("invalid phase %q", string(c.Phase))}
	}
	if !c.Priority.Valid() {
		return &ValidationError{Field: "priority", Message: fmt.Sprintf("invalid priority %q", string(c.Priority))}
	}
	return nil
}

// TodoUpdate is a sparse patch: absent fields are left untouched by the
// store. The nullable fields use Optional so an explicit JSON null clears
// the stored value rather than being mistaken for an omitted key.
type TodoUpdate struct {
	Title       *string          `json:"title"`
	Description Optional[string] `json:"description"`
	Phase       *Phase           `json:"phase"`
	Priority    *Priority        `json:"priority"`
	DueDate     Optional[Date]   `json:"due_date"`
	Completed   *bool            `json:"completed"`
}

// Validate checks only the fields present in the patch.
func (u TodoUpdate) Validate() error {
	if u.Title != nil {
		if err := validateTitle(*u.Title); err != nil {
			return err
		}
	}
	if u.Phase != nil && !u.Phase.Valid() {
		return &ValidationError{Field: "phase", Message: fmt.Sprintf("invalid phase %q", string(*u.Phase))}
	}
	if u.Priority != nil && !u.Priority.Valid() {
		return &ValidationError{Field: "priority", Message: fmt.Sprintf("invalid priority %q", string(*u.Priority))}
	}
	return nil
}

func validateTitle(title string) error {
	if title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return &ValidationError{Field: "title", Message: fmt.Sprintf("title exceeds %d characters", MaxTitleLen)}
	}
	return nil
}

// ValidationError reports invalid input rejected before persistence.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
