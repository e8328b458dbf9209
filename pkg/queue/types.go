package queue

import (
	"maps"
	"time"
)

// NoRetryLimit marks a task that is retried after every failure until it
// succeeds or is abandoned.
const NoRetryLimit int64 = -1

// Defaults applied when neither options nor Config override them.
const (
	DefaultMaxConcurrency         = 3
	DefaultPollInterval           = 3 * time.Second
	DefaultShutdownTimeout        = 30 * time.Second
	DefaultRetryLimit       int64 = 3
)

// Outcome is the result an Executor reports for one dispatch of a task.
type Outcome uint8

const (
	// OutcomeSuccess removes the task from the queue and the store.
	OutcomeSuccess Outcome = iota + 1
	// OutcomeFailed counts a failure and requeues the task while its retry budget lasts.
	OutcomeFailed
	// OutcomeAbandon removes the task without retrying it.
	OutcomeAbandon
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailed:
		return "failed"
	case OutcomeAbandon:
		return "abandon"
	default:
		return "unknown"
	}
}

// State is the lifecycle position of a task as seen by the queue.
// It is derived from set membership and never persisted.
type State string

const (
	StateQueued   State = "queued"
	StateActive   State = "active"
	StateTerminal State = "terminal"
)

// Task is a unit of deferred work.
//
// ID, Name, Attributes, Priority, CreatedAt and RetryLimit are fixed at
// construction. FailCount and AvailableAt are owned by the queue once the
// task has been enqueued.
type Task struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Attributes  map[string]string `json:"attributes"`
	Priority    int64             `json:"priority"`
	CreatedAt   time.Time         `json:"created_at"`
	AvailableAt time.Time         `json:"available_at"`
	RetryLimit  int64             `json:"retry_limit"`
	FailCount   int64             `json:"fail_count"`
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.Attributes = maps.Clone(t.Attributes)
	if c.Attributes == nil {
		c.Attributes = map[string]string{}
	}
	return &c
}

// Eligible reports whether the task may be dispatched at now.
func (t *Task) Eligible(now time.Time) bool {
	return !t.AvailableAt.After(now)
}

// UnlimitedRetries reports whether the task is retried without bound.
func (t *Task) UnlimitedRetries() bool {
	return t.RetryLimit < 0
}

// Stats is a point-in-time snapshot of queue counters.
type Stats struct {
	Queued    int   // Tasks waiting in the pending set
	Active    int   // Tasks currently handed to the executor
	Completed int64 // Tasks finished with OutcomeSuccess
	Failed    int64 // Failures reported by the executor, including panics
	Retried   int64 // Failures that were requeued
	Abandoned int64 // Tasks abandoned explicitly or after exhausting retries
	Paused    bool
	Closed    bool
}
