package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/harrier/pkg/queue"
)

// TaskStore implements queue.Store with one document per task keyed by the
// task id. MongoDB keeps millisecond precision for timestamps.
type TaskStore struct {
	coll *mongo.Collection
}

// NewTaskStore creates a task store over coll.
func NewTaskStore(coll *mongo.Collection) *TaskStore {
	return &TaskStore{coll: coll}
}

type taskDocument struct {
	ID          string            `bson:"_id"`
	Name        string            `bson:"name"`
	Attributes  map[string]string `bson:"attributes"`
	Priority    int64             `bson:"priority"`
	CreatedAt   time.Time         `bson:"created_at"`
	AvailableAt time.Time         `bson:"available_at"`
	RetryLimit  int64             `bson:"retry_limit"`
	FailCount   int64             `bson:"fail_count"`
}

// EnsureIndexes creates the index LoadAll sorts on.
func (s *TaskStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create task indexes: %w", err)
	}
	return nil
}

// Insert upserts the task document.
func (s *TaskStore) Insert(ctx context.Context, task queue.Task) error {
	attrs := task.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	doc := taskDocument{
		ID:          task.ID,
		Name:        task.Name,
		Attributes:  attrs,
		Priority:    task.Priority,
		CreatedAt:   task.CreatedAt.UTC(),
		AvailableAt: task.AvailableAt.UTC(),
		RetryLimit:  task.RetryLimit,
		FailCount:   task.FailCount,
	}

	_, err := s.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: task.ID}}, doc,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to insert task %s: %w", task.ID, err)
	}
	return nil
}

// UpdateFailCount implements queue.Store.
func (s *TaskStore) UpdateFailCount(ctx context.Context, id string, count int64) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "fail_count", Value: count}}}},
	)
	if err != nil {
		return fmt.Errorf("failed to update fail count of task %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", queue.ErrTaskNotFound, id)
	}
	return nil
}

// Delete implements queue.Store.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}}); err != nil {
		return fmt.Errorf("failed to delete task %s: %w", id, err)
	}
	return nil
}

// LoadAll returns every task document ordered by creation time.
func (s *TaskStore) LoadAll(ctx context.Context) ([]queue.Task, error) {
	cursor, err := s.coll.Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}

	tasks := make([]queue.Task, 0, len(docs))
	for _, d := range docs {
		attrs := d.Attributes
		if attrs == nil {
			attrs = map[string]string{}
		}
		tasks = append(tasks, queue.Task{
			ID:          d.ID,
			Name:        d.Name,
			Attributes:  attrs,
			Priority:    d.Priority,
			CreatedAt:   d.CreatedAt.UTC(),
			AvailableAt: d.AvailableAt.UTC(),
			RetryLimit:  d.RetryLimit,
			FailCount:   d.FailCount,
		})
	}
	return tasks, nil
}
