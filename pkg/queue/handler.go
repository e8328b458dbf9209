package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/harrier/pkg/logger"
)

type (
	// Executor performs the work of a dispatched task.
	// Execute runs on its own goroutine and must return exactly one outcome.
	// The context is cancelled by Queue.CancelAll and when shutdown gives up
	// waiting; executors that support cancellation should observe it.
	Executor interface {
		Execute(ctx context.Context, task Task) Outcome
	}

	// ExecutorFunc adapts a function to the Executor interface.
	ExecutorFunc func(ctx context.Context, task Task) Outcome

	// Handler processes tasks with a given name when registered on a Mux.
	Handler interface {
		Name() string
		Handle(ctx context.Context, task Task) error
	}

	// HandlerFunc is the function signature wrapped by NewHandler.
	HandlerFunc func(ctx context.Context, task Task) error

	// TaskHandlerFunc receives the task attributes decoded into T.
	TaskHandlerFunc[T any] func(ctx context.Context, payload T) error
)

func (f ExecutorFunc) Execute(ctx context.Context, task Task) Outcome {
	return f(ctx, task)
}

// NewHandler creates a handler for tasks named name.
func NewHandler(name string, fn HandlerFunc) Handler {
	return &funcHandler{name: name, fn: fn}
}

// NewTaskHandler creates a handler that decodes the attribute map into T
// before calling fn. Attribute values are strings, so fields of T should be
// strings or carry the ",string" JSON option. An empty name defaults to the
// type name of T. Attributes that cannot be decoded abandon the task.
func NewTaskHandler[T any](name string, fn TaskHandlerFunc[T]) Handler {
	if name == "" {
		var payload T
		name = qualifiedStructName(payload)
	}
	return &typedHandler[T]{name: name, fn: fn}
}

type funcHandler struct {
	name string
	fn   HandlerFunc
}

func (h *funcHandler) Name() string {
	return h.name
}

func (h *funcHandler) Handle(ctx context.Context, task Task) error {
	return h.fn(ctx, task)
}

type typedHandler[T any] struct {
	name string
	fn   TaskHandlerFunc[T]
}

func (h *typedHandler[T]) Name() string {
	return h.name
}

func (h *typedHandler[T]) Handle(ctx context.Context, task Task) error {
	raw, err := json.Marshal(task.Attributes)
	if err != nil {
		return errors.Join(ErrAbandon, err)
	}
	var payload T
	if err := json.Unmarshal(raw, &payload); err != nil {
		return errors.Join(ErrAbandon, fmt.Errorf("failed to decode attributes of task %s into %T: %w", task.ID, payload, err))
	}
	return h.fn(ctx, payload)
}

// Mux is an Executor that routes tasks to handlers by task name.
//
// A nil error from the handler means success, an error wrapping ErrAbandon
// abandons the task and any other error counts as a failure. Tasks without a
// registered handler are abandoned, since retrying them cannot succeed.
type Mux struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   *slog.Logger
}

// NewMux creates a Mux with the given handlers registered.
func NewMux(handlers ...Handler) *Mux {
	m := &Mux{
		handlers: make(map[string]Handler),
		logger:   slog.Default(),
	}
	m.Register(handlers...)
	return m
}

// SetLogger replaces the logger used to report handler errors.
func (m *Mux) SetLogger(l *slog.Logger) {
	if l == nil {
		return
	}
	m.mu.Lock()
	m.logger = l
	m.mu.Unlock()
}

// Register adds handlers, replacing any previous handler with the same name.
func (m *Mux) Register(handlers ...Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, h := range handlers {
		if h == nil {
			continue
		}
		m.handlers[h.Name()] = h
	}
}

// HandlerCount returns the number of registered handlers.
func (m *Mux) HandlerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers)
}

// Execute implements Executor.
func (m *Mux) Execute(ctx context.Context, task Task) Outcome {
	m.mu.RLock()
	h, ok := m.handlers[task.Name]
	log := m.logger
	m.mu.RUnlock()

	if !ok {
		log.ErrorContext(ctx, "no handler registered for task",
			logger.TaskID(task.ID),
			logger.TaskName(task.Name),
			logger.Error(ErrHandlerNotFound))
		return OutcomeAbandon
	}

	err := h.Handle(ctx, task)
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrAbandon):
		log.WarnContext(ctx, "handler abandoned task",
			logger.TaskID(task.ID),
			logger.TaskName(task.Name),
			logger.Error(err))
		return OutcomeAbandon
	default:
		log.ErrorContext(ctx, "handler failed",
			logger.TaskID(task.ID),
			logger.TaskName(task.Name),
			logger.FailCount(task.FailCount),
			logger.Error(err))
		return OutcomeFailed
	}
}
