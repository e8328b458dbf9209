package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/harrier/pkg/queue"
)

const (
	insertTaskQuery = `
INSERT INTO harrier_tasks (id, name, attributes, priority, created_at, available_at, retry_limit, fail_count)
VALUES (@id, @name, @attributes, @priority, @created_at, @available_at, @retry_limit, @fail_count)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    attributes = EXCLUDED.attributes,
    priority = EXCLUDED.priority,
    created_at = EXCLUDED.created_at,
    available_at = EXCLUDED.available_at,
    retry_limit = EXCLUDED.retry_limit,
    fail_count = EXCLUDED.fail_count`

	updateFailCountQuery = `UPDATE harrier_tasks SET fail_count = $2 WHERE id = $1`

	deleteTaskQuery = `DELETE FROM harrier_tasks WHERE id = $1`

	loadTasksQuery = `
SELECT id, name, attributes, priority, created_at, available_at, retry_limit, fail_count
FROM harrier_tasks
ORDER BY created_at, id`
)

// TaskStore implements queue.Store on top of the harrier_tasks table.
// Run Migrate before using it.
type TaskStore struct {
	pool *pgxpool.Pool
}

// NewTaskStore creates a task store over an open pool.
func NewTaskStore(pool *pgxpool.Pool) *TaskStore {
	return &TaskStore{pool: pool}
}

type taskRow struct {
	ID          string            `db:"id"`
	Name        string            `db:"name"`
	Attributes  map[string]string `db:"attributes"`
	Priority    int64             `db:"priority"`
	CreatedAt   time.Time         `db:"created_at"`
	AvailableAt time.Time         `db:"available_at"`
	RetryLimit  int64             `db:"retry_limit"`
	FailCount   int64             `db:"fail_count"`
}

// Insert upserts the task record.
func (s *TaskStore) Insert(ctx context.Context, task queue.Task) error {
	attrs := task.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}

	_, err := s.pool.Exec(ctx, insertTaskQuery, pgx.NamedArgs{
		"id":           task.ID,
		"name":         task.Name,
		"attributes":   attrs,
		"priority":     task.Priority,
		"created_at":   task.CreatedAt.UTC(),
		"available_at": task.AvailableAt.UTC(),
		"retry_limit":  task.RetryLimit,
		"fail_count":   task.FailCount,
	})
	if err != nil {
		return fmt.Errorf("failed to insert task %s: %w", task.ID, err)
	}
	return nil
}

// UpdateFailCount implements queue.Store.
func (s *TaskStore) UpdateFailCount(ctx context.Context, id string, count int64) error {
	tag, err := s.pool.Exec(ctx, updateFailCountQuery, id, count)
	if err != nil {
		return fmt.Errorf("failed to update fail count of task %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", queue.ErrTaskNotFound, id)
	}
	return nil
}

// Delete implements queue.Store.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, deleteTaskQuery, id); err != nil {
		return fmt.Errorf("failed to delete task %s: %w", id, err)
	}
	return nil
}

// LoadAll returns every task record ordered by creation time.
func (s *TaskStore) LoadAll(ctx context.Context) ([]queue.Task, error) {
	rows, err := s.pool.Query(ctx, loadTasksQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[taskRow])
	if err != nil {
		return nil, fmt.Errorf("failed to scan tasks: %w", err)
	}

	tasks := make([]queue.Task, 0, len(records))
	for _, r := range records {
		attrs := r.Attributes
		if attrs == nil {
			attrs = map[string]string{}
		}
		tasks = append(tasks, queue.Task{
			ID:          r.ID,
			Name:        r.Name,
			Attributes:  attrs,
			Priority:    r.Priority,
			CreatedAt:   r.CreatedAt.UTC(),
			AvailableAt: r.AvailableAt.UTC(),
			RetryLimit:  r.RetryLimit,
			FailCount:   r.FailCount,
		})
	}
	return tasks, nil
}
