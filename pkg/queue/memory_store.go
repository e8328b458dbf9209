package queue

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// MemoryStore implements Store in process memory. Records survive a queue
// being closed and re-created within the same process, which makes it the
// store of choice for tests and local development.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks: make(map[string]*Task),
	}
}

// Insert stores a copy of the task, replacing any record with the same ID.
func (ms *MemoryStore) Insert(ctx context.Context, task Task) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.tasks[task.ID] = task.Clone()
	return nil
}

// UpdateFailCount implements Store.
func (ms *MemoryStore) UpdateFailCount(ctx context.Context, id string, count int64) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	task, exists := ms.tasks[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	task.FailCount = count
	return nil
}

// Delete implements Store.
func (ms *MemoryStore) Delete(ctx context.Context, id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.tasks, id)
	return nil
}

// LoadAll returns copies of all records ordered by creation time.
func (ms *MemoryStore) LoadAll(ctx context.Context) ([]Task, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	tasks := make([]Task, 0, len(ms.tasks))
	for _, t := range ms.tasks {
		tasks = append(tasks, *t.Clone())
	}
	slices.SortFunc(tasks, func(a, b Task) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return tasks, nil
}

// Get returns a copy of the stored record.
func (ms *MemoryStore) Get(id string) (Task, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	t, ok := ms.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *t.Clone(), true
}

// Len returns the number of stored records.
func (ms *MemoryStore) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.tasks)
}
