package tasks

import (
	"context"
	"time"
)

// UpdatePatch carries a partial update into the store. Nil fields keep their
// current values. ClearDueDate wins over DueDate and resets the due date to
// null. Stores refresh UpdatedAt on every applied patch.
type UpdatePatch struct {
	Title        *string
	Description  *string
	Status       *Status
	DueDate      *time.Time
	ClearDueDate bool
}

// Store is the persistence collaborator the service orchestrates against.
// Implementations return ErrNotFound (wrapped with the id) from FindByID,
// Update and Delete when the id has no row.
type Store interface {
	// Create persists a new task, assigning its id and timestamps.
	Create(ctx context.Context, task Task) (Task, error)

	// FindMany returns the filtered, sorted window of tasks.
	FindMany(ctx context.Context, filter Filter, skip, take int, order Order) ([]Task, error)

	// Count returns how many tasks match the filter, ignoring pagination.
	Count(ctx context.Context, filter Filter) (int, error)

	// FindByID returns the task with the given id.
	FindByID(ctx context.Context, id int64) (Task, error)

	// Update applies a partial patch and returns the updated task.
	Update(ctx context.Context, id int64, patch UpdatePatch) (Task, error)

	// Delete removes the task with the given id.
	Delete(ctx context.Context, id int64) error

	// Close releases underlying resources.
	Close() error
}
