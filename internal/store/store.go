// Package store persists todo records in a sqlite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/devtodo/internal/models"
	_ "modernc.org/sqlite"
)

// ErrNotFound signals that no todo exists with the requested id.
var ErrNotFound = errors.New("todo not found")

// Fixed-width so lexicographic order on the stored text matches time order.
// RFC3339Nano trims trailing fractional zeros and breaks that property.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS todos (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL,
	description TEXT,
	phase       TEXT NOT NULL CHECK (phase IN ('planning', 'design', 'implementation', 'testing', 'deployment')),
	priority    TEXT NOT NULL CHECK (priority IN ('low', 'medium', 'high')),
	due_date    TEXT,
	completed   INTEGER NOT NULL DEFAULT 0,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_todos_phase ON todos(phase);
CREATE INDEX IF NOT EXISTS idx_todos_created_at ON todos(created_at);
`

// Store is the sqlite-backed todo store. It exclusively owns persisted rows;
// callers never hold cached copies.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Filter restricts FindAll results. Nil fields are unconstrained; set fields
// are ANDed together.
type Filter struct {
	Phase     *models.Phase
	Priority  *models.Priority
	Completed *bool
}

// Insert persists a new todo, assigning its id and setting both timestamps
// to now.
func (s *Store) Insert(ctx context.Context, in models.TodoCreate) (*models.Todo, error) {
	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO todos (title, description, phase, priority, due_date, completed, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?, ?)`,
		in.Title, nullString(in.Description), string(in.Phase), string(in.Priority),
		nullDate(in.DueDate), now.Format(timeLayout), now.Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("insert todo: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("todo id: %w", err)
	}

	return s.FindByID(ctx, id)
}

// FindByID returns the todo with the given id, or ErrNotFound.
func (s *Store) FindByID(ctx context.Context, id int64) (*models.Todo, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, phase, priority, due_date, completed, created_at, updated_at
		 FROM todos WHERE id = ?`, id)

	todo, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find todo %d: %w", id, err)
	}
	return todo, nil
}

// FindAll returns todos matching the filter, most recently created first.
func (s *Store) FindAll(ctx context.Context, f Filter) ([]models.Todo, error) {
	query := `SELECT id, title, description, phase, priority, due_date, completed, created_at, updated_at FROM todos`

	var conds []string
	var args []any
	if f.Phase != nil {
		conds = append(conds, "phase = ?")
		args = append(args, string(*f.Phase))
	}
	if f.Priority != nil {
		conds = append(conds, "priority = ?")
		args = append(args, string(*f.Priority))
	}
	if f.Completed != nil {
		conds = append(conds, "completed = ?")
		args = append(args, boolToInt(*f.Completed))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	// id breaks created_at ties so the order stays deterministic
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	todos := make([]models.Todo, 0)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("list todos: %w", err)
		}
		todos = append(todos, *todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	return todos, nil
}

// Replace applies the present fields of patch to the todo with the given id,
// refreshes updated_at, and returns the updated record. Absent fields are
// left untouched; a present-and-null description or due_date clears the
// column. Returns ErrNotFound for an unknown id; never creates a row.
func (s *Store) Replace(ctx context.Context, id int64, patch models.TodoUpdate) (*models.Todo, error) {
	var sets []string
	var args []any

	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description.Set {
		sets = append(sets, "description = ?")
		args = append(args, nullString(patch.Description.Value))
	}
	if patch.Phase != nil {
		sets = append(sets, "phase = ?")
		args = append(args, string(*patch.Phase))
	}
	if patch.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, string(*patch.Priority))
	}
	if patch.DueDate.Set {
		sets = append(sets, "due_date = ?")
		args = append(args, nullDate(patch.DueDate.Value))
	}
	if patch.Completed != nil {
		sets = append(sets, "completed = ?")
		args = append(args, boolToInt(*patch.Completed))
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC().Format(timeLayout))
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE todos SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("update todo %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update todo %d: %w", id, err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return s.FindByID(ctx, id)
}

// Remove hard-deletes the todo with the given id, reporting whether a row
// was deleted. Removing a missing id is a no-op, not an error.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM todos WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete todo %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete todo %d: %w", id, err)
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (*models.Todo, error) {
	var (
		todo        models.Todo
		description sql.NullString
		dueDate     sql.NullString
		completed   int64
		createdAt   string
		updatedAt   string
	)

	err := row.Scan(&todo.ID, &todo.Title, &description, &todo.Phase, &todo.Priority,
		&dueDate, &completed, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		todo.Description = &description.String
	}
	if dueDate.Valid && dueDate.String != "" {
		d, err := models.ParseDate(dueDate.String)
		if err != nil {
			return nil, fmt.Errorf("parse due_date: %w", err)
		}
		todo.DueDate = &d
	}
	todo.Completed = completed != 0

	if todo.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if todo.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &todo, nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullDate(d *models.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
