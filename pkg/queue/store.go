package queue

import "context"

// Store persists task records across process restarts.
//
// All writes are keyed by task ID. The queue issues them serially, so
// implementations do not have to handle concurrent writers from one queue.
type Store interface {
	// Insert saves a new task record.
	Insert(ctx context.Context, task Task) error

	// UpdateFailCount records the current failure count of a task.
	UpdateFailCount(ctx context.Context, id string, count int64) error

	// Delete removes a task record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error

	// LoadAll returns every persisted record.
	LoadAll(ctx context.Context) ([]Task, error)
}
