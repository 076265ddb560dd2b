package board

import (
	"context"
	"time"

	"matrix-api/domain"
)

// Tx is one atomic unit of work against the task record store. All writes
// issued through a Tx take effect together or not at all.
type Tx interface {
	// Get returns the task with the given id, or ErrTaskNotFound.
	Get(ctx context.Context, id int64) (domain.Task, error)
	// Insert persists a new task and returns the store-assigned id.
	Insert(ctx context.Context, t domain.Task) (int64, error)
	// Update overwrites every mutable field of an existing task, or
	// returns ErrTaskNotFound.
	Update(ctx context.Context, t domain.Task) error
	// UpdatePosition rewrites only the position and updatedAt of a task,
	// or returns ErrTaskNotFound.
	UpdatePosition(ctx context.Context, id int64, position int, updatedAt time.Time) error
	// MaxPosition returns the highest position in the bucket, 0 if empty.
	MaxPosition(ctx context.Context, b domain.Bucket) (int, error)
	// Delete removes a task. Deleting an absent id is not an error.
	Delete(ctx context.Context, id int64) error
}

// Store is the durable task record store. It is passed explicitly to the
// service rather than held as ambient global state.
type Store interface {
	// WithinTx runs fn inside one transaction, committing when fn returns
	// nil and rolling back otherwise.
	WithinTx(ctx context.Context, fn func(Tx) error) error
	// ListTasks returns every task, ordered by bucket then position.
	ListTasks(ctx context.Context) ([]domain.Task, error)
}
