package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/harrier/pkg/logger"
	"github.com/dmitrymomot/harrier/pkg/queue"
)

// updateFailCount only touches existing records so a late write cannot
// resurrect a deleted task as a partial hash.
var updateFailCount = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[1], 'fail_count', ARGV[1])
return 1
`)

// TaskStore implements queue.Store with one hash per task and a set indexing
// the task ids:
//
//	<prefix>:task:<id>  hash with the task fields
//	<prefix>:tasks      set of task ids
type TaskStore struct {
	client    redis.UniversalClient
	prefix    string
	batchSize int64
	logger    *slog.Logger
}

// TaskStoreOption configures a TaskStore.
type TaskStoreOption func(*TaskStore)

// WithKeyPrefix sets the namespace for all keys. Defaults to "harrier".
func WithKeyPrefix(prefix string) TaskStoreOption {
	return func(s *TaskStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithScanBatchSize sets the COUNT hint used while loading tasks.
func WithScanBatchSize(n int64) TaskStoreOption {
	return func(s *TaskStore) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithLogger sets the logger used to report skipped records.
func WithLogger(l *slog.Logger) TaskStoreOption {
	return func(s *TaskStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewTaskStore creates a task store on top of client.
func NewTaskStore(client redis.UniversalClient, opts ...TaskStoreOption) *TaskStore {
	s := &TaskStore{
		client:    client,
		prefix:    "harrier",
		batchSize: 1000,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TaskStore) taskKey(id string) string {
	return s.prefix + ":task:" + id
}

func (s *TaskStore) indexKey() string {
	return s.prefix + ":tasks"
}

// Insert writes the task hash and indexes it in one transaction.
func (s *TaskStore) Insert(ctx context.Context, task queue.Task) error {
	attrs := task.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	rawAttrs, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("failed to encode attributes of task %s: %w", task.ID, err)
	}

	key := s.taskKey(task.ID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, map[string]any{
			"id":           task.ID,
			"name":         task.Name,
			"attributes":   string(rawAttrs),
			"priority":     task.Priority,
			"created_at":   task.CreatedAt.UnixNano(),
			"available_at": task.AvailableAt.UnixNano(),
			"retry_limit":  task.RetryLimit,
			"fail_count":   task.FailCount,
		})
		pipe.SAdd(ctx, s.indexKey(), task.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to insert task %s: %w", task.ID, err)
	}
	return nil
}

// UpdateFailCount implements queue.Store.
func (s *TaskStore) UpdateFailCount(ctx context.Context, id string, count int64) error {
	updated, err := updateFailCount.Run(ctx, s.client, []string{s.taskKey(id)}, count).Int()
	if err != nil {
		return fmt.Errorf("failed to update fail count of task %s: %w", id, err)
	}
	if updated == 0 {
		return fmt.Errorf("%w: %s", queue.ErrTaskNotFound, id)
	}
	return nil
}

// Delete removes the task hash and its index entry.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.taskKey(id))
		pipe.SRem(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete task %s: %w", id, err)
	}
	return nil
}

// LoadAll returns every indexed task ordered by creation time. Index entries
// without a hash are pruned; records that cannot be decoded are logged and
// skipped.
func (s *TaskStore) LoadAll(ctx context.Context) ([]queue.Task, error) {
	var tasks []queue.Task
	var stale []any

	iter := s.client.SScan(ctx, s.indexKey(), 0, "", s.batchSize).Iterator()
	batch := make([]string, 0, s.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		cmds := make([]*redis.MapStringStringCmd, len(batch))
		_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			for i, id := range batch {
				cmds[i] = pipe.HGetAll(ctx, s.taskKey(id))
			}
			return nil
		})
		if err != nil {
			return err
		}

		for i, cmd := range cmds {
			fields := cmd.Val()
			if len(fields) == 0 {
				stale = append(stale, batch[i])
				continue
			}
			task, err := decodeTask(fields)
			if err != nil {
				s.logger.WarnContext(ctx, "skipping malformed task record",
					logger.Component("redis.TaskStore"),
					logger.TaskID(batch[i]),
					logger.Error(err))
				continue
			}
			tasks = append(tasks, task)
		}
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if int64(len(batch)) >= s.batchSize {
			if err := flush(); err != nil {
				return nil, fmt.Errorf("failed to load tasks: %w", err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan task index: %w", err)
	}
	if err := flush(); err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	if len(stale) > 0 {
		if err := s.client.SRem(ctx, s.indexKey(), stale...).Err(); err != nil {
			s.logger.WarnContext(ctx, "failed to prune stale task index entries",
				logger.Component("redis.TaskStore"),
				logger.Error(err))
		}
	}

	slices.SortFunc(tasks, func(a, b queue.Task) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return tasks, nil
}

func decodeTask(fields map[string]string) (queue.Task, error) {
	var errs []error
	parseInt := func(name string) int64 {
		v, err := strconv.ParseInt(fields[name], 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
		return v
	}

	task := queue.Task{
		ID:          fields["id"],
		Name:        fields["name"],
		Priority:    parseInt("priority"),
		CreatedAt:   time.Unix(0, parseInt("created_at")).UTC(),
		AvailableAt: time.Unix(0, parseInt("available_at")).UTC(),
		RetryLimit:  parseInt("retry_limit"),
		FailCount:   parseInt("fail_count"),
	}

	if err := json.Unmarshal([]byte(fields["attributes"]), &task.Attributes); err != nil {
		errs = append(errs, fmt.Errorf("attributes: %w", err))
	}
	if task.Attributes == nil {
		task.Attributes = map[string]string{}
	}
	if task.ID == "" {
		errs = append(errs, errors.New("missing id"))
	}

	if len(errs) > 0 {
		return queue.Task{}, errors.Join(append([]error{ErrMalformedTask}, errs...)...)
	}
	return task, nil
}
