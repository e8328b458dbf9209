package queue

import "errors"

var (
	// ErrExecutorNil is returned when a queue is created without an executor
	ErrExecutorNil = errors.New("executor cannot be nil")

	// ErrTaskNil is returned when attempting to enqueue a nil task
	ErrTaskNil = errors.New("task cannot be nil")

	// ErrQueueClosed is returned when the queue no longer accepts tasks
	ErrQueueClosed = errors.New("queue is closed")

	// ErrAbandon tells the queue to drop a task without retrying it.
	// Handlers return it, possibly wrapped, to abandon a task.
	ErrAbandon = errors.New("task abandoned")

	// ErrHandlerNotFound is returned when no handler is registered for a task name
	ErrHandlerNotFound = errors.New("no handler registered for task name")

	// ErrTaskNotFound is returned by stores when a task record does not exist
	ErrTaskNotFound = errors.New("task not found")

	// ErrShutdownTimeout is returned by Close when running tasks outlive the shutdown timeout
	ErrShutdownTimeout = errors.New("shutdown timeout exceeded")

	// ErrHealthcheckFailed wraps the reason a queue reports itself unhealthy
	ErrHealthcheckFailed = errors.New("queue healthcheck failed")
)
