package queue

import (
	"encoding/binary"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
)

// taskNamespace scopes the name-based UUIDs generated for task identifiers.
var taskNamespace = uuid.MustParse("6f1c3a52-9d0e-4b8f-a2c7-5e4d8b1f0a93")

// TaskOption configures a task created by NewTask.
type TaskOption func(*Task)

// WithPriority sets the priority level. Higher values are dispatched first.
func WithPriority(priority int64) TaskOption {
	return func(t *Task) {
		t.Priority = priority
	}
}

// WithAttributes merges the given attributes into the task payload.
func WithAttributes(attrs map[string]string) TaskOption {
	return func(t *Task) {
		for k, v := range attrs {
			t.Attributes[k] = v
		}
	}
}

// WithAttribute sets a single attribute.
func WithAttribute(key, value string) TaskOption {
	return func(t *Task) {
		t.Attributes[key] = value
	}
}

// WithRetryLimit sets how many times a failed task is retried.
// Any negative value means unlimited retries.
func WithRetryLimit(limit int64) TaskOption {
	return func(t *Task) {
		if limit < 0 {
			limit = NoRetryLimit
		}
		t.RetryLimit = limit
	}
}

// WithAvailableAt sets the earliest moment the task may be dispatched.
func WithAvailableAt(at time.Time) TaskOption {
	return func(t *Task) {
		if !at.IsZero() {
			t.AvailableAt = at
		}
	}
}

// WithDelay postpones the first dispatch by d relative to the creation time.
func WithDelay(d time.Duration) TaskOption {
	return func(t *Task) {
		if d > 0 {
			t.AvailableAt = t.CreatedAt.Add(d)
		}
	}
}

// NewTask builds a task that is immediately available, has priority 0 and a
// retry limit of DefaultRetryLimit unless options say otherwise.
//
// The task ID is derived from the name and the attributes, so two tasks built
// from the same name and attributes share an ID. Use Queue.EnqueueUnique to
// prevent such duplicates from being queued twice.
func NewTask(name string, opts ...TaskOption) *Task {
	now := time.Now()
	t := &Task{
		Name:        name,
		Attributes:  map[string]string{},
		CreatedAt:   now,
		AvailableAt: now,
		RetryLimit:  DefaultRetryLimit,
	}

	for _, opt := range opts {
		opt(t)
	}

	t.ID = TaskID(t.Name, t.Attributes)
	return t
}

// TaskID returns the deterministic identifier for a name and attribute set.
// Attribute order does not matter.
func TaskID(name string, attrs map[string]string) string {
	keys := slices.Sorted(maps.Keys(attrs))

	// Every field is length-prefixed so arbitrary bytes, including invalid
	// UTF-8 and NUL, map to distinct encodings.
	data := appendField(nil, name)
	data = binary.AppendUvarint(data, uint64(len(keys)))
	for _, k := range keys {
		data = appendField(data, k)
		data = appendField(data, attrs[k])
	}

	return uuid.NewSHA1(taskNamespace, data).String()
}

func appendField(b []byte, s string) []byte {
	b = binary.AppendUvarint(b, uint64(len(s)))
	return append(b, s...)
}
