// ABOUTME: Store interface and data types for bot persistence
// ABOUTME: Defines Note, Model, Character structs and the error taxonomy for database operations

package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports bad caller input, such as an unknown model or
// character id. It is always recoverable and safe to show to the user.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// StorageError wraps a failure of the underlying SQLite engine (disk, lock
// timeout). Callers surface a generic message; the wrapped error is logged.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Note is a free-text record owned by a single Telegram user.
type Note struct {
	ID        int64
	UserID    int64
	Text      string
	CreatedAt time.Time
}

// Model is an entry in the AI model registry. Key is the opaque upstream
// model identifier sent to the completion endpoint; at most one row is
// active at any time, enforced by a partial unique index.
type Model struct {
	ID     int64
	Key    string
	Label  string
	Active bool
}

// Character is a persona: a named system-prompt fragment that biases the
// style of generated answers. The catalog is seeded out of band and never
// mutated by bot commands.
type Character struct {
	ID     int64
	Name   string
	Prompt string
}

// Store defines the persistence operations for notes, the model registry,
// and character selections.
type Store interface {
	// Notes, all scoped to the owning user
	AddNote(ctx context.Context, userID int64, text string) (int64, error)
	ListNotes(ctx context.Context, userID int64, limit, offset int) ([]*Note, error)
	FindNotes(ctx context.Context, userID int64, substring string, limit, offset int) ([]*Note, error)
	CountNotes(ctx context.Context, userID int64, substring string) (int, error)
	UpdateNote(ctx context.Context, userID, noteID int64, text string) (bool, error)
	DeleteNote(ctx context.Context, userID, noteID int64) (bool, error)

	// Model registry
	ListModels(ctx context.Context) ([]*Model, error)
	GetModelByID(ctx context.Context, id int64) (*Model, error)
	GetActiveModel(ctx context.Context) (*Model, error)
	SetActiveModel(ctx context.Context, id int64) (*Model, error)

	// Characters and per-user selections
	ListCharacters(ctx context.Context) ([]*Character, error)
	GetCharacterByID(ctx context.Context, id int64) (*Character, error)
	GetUserCharacter(ctx context.Context, userID int64) (*Character, error)
	SetUserCharacter(ctx context.Context, userID, characterID int64) (*Character, error)

	// Close releases any resources held by the store
	Close() error
}
