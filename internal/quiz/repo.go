package quiz

import (
	"context"
	"errors"
)

// ErrNotFound signals absence of a record; it is a sentinel, not a failure.
var ErrNotFound = errors.New("not found")

// ErrInvalidID signals an identifier that cannot be coerced to the backend's
// native form (e.g. a non-hex module_id on the mongo backend).
var ErrInvalidID = errors.New("invalid id")

// Store is the single storage contract. Two implementations exist: SQLStore
// (sqlite/postgres) and MongoStore. The backend is selected once at startup;
// callers never branch on it.
type Store interface {
	// CreateModule is idempotent: a duplicate name or slug returns the
	// existing record instead of failing.
	CreateModule(ctx context.Context, name, slug string) (Module, error)
	// ListModules returns all modules ordered by name.
	ListModules(ctx context.Context) ([]Module, error)
	GetModuleBySlug(ctx context.Context, slug string) (Module, error)
	GetModuleByID(ctx context.Context, id RecordID) (Module, error)

	// UpsertUser finds or creates the user; username alone is the identity.
	UpsertUser(ctx context.Context, username string) (User, error)
	GetUser(ctx context.Context, username string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)

	CreateQuestion(ctx context.Context, q Question) (Question, error)
	// ListQuestions returns questions for a module and type, projected for
	// client consumption: ModuleID and Type are left empty.
	ListQuestions(ctx context.Context, moduleID RecordID, qtype string) ([]Question, error)
	GetQuestion(ctx context.Context, id RecordID) (Question, error)
	CountQuestions(ctx context.Context) (int64, error)

	CreateAttempt(ctx context.Context, a Attempt) (Attempt, error)
	// Attempt listings are sorted descending by datetime_iso.
	ListAttempts(ctx context.Context) ([]Attempt, error)
	ListAttemptsByUser(ctx context.Context, username string) ([]Attempt, error)
	ListAttemptsByModule(ctx context.Context, moduleID RecordID) ([]Attempt, error)
}
