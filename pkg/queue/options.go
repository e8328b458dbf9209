package queue

import (
	"log/slog"
	"time"
)

// Option is a functional option for configuring a Queue
type Option func(*options)

type options struct {
	maxConcurrency  int
	pollInterval    time.Duration
	shutdownTimeout time.Duration
	store           Store
	logger          *slog.Logger
	now             func() time.Time
	paused          bool
}

// WithMaxConcurrency sets how many tasks may execute at the same time.
func WithMaxConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxConcurrency = n
		}
	}
}

// WithPollInterval sets how often the queue re-checks delayed tasks when
// nothing is eligible for dispatch.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithShutdownTimeout sets how long Close waits for running tasks.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.shutdownTimeout = d
		}
	}
}

// WithStore makes the queue durable. Records found in the store are loaded
// into the pending set when the queue is created.
func WithStore(store Store) Option {
	return func(o *options) {
		if store != nil {
			o.store = store
		}
	}
}

// WithLogger sets the logger for queue operations.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock replaces time.Now as the source of "now" for eligibility checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithPaused creates the queue in the paused state, so loaded and enqueued
// tasks wait for Restart.
func WithPaused() Option {
	return func(o *options) {
		o.paused = true
	}
}

// EnqueueOption is a functional option for Enqueue and EnqueueUnique
type EnqueueOption func(*enqueueOptions)

type enqueueOptions struct {
	persist bool
}

// WithoutPersist keeps the task in memory only.
func WithoutPersist() EnqueueOption {
	return func(o *enqueueOptions) {
		o.persist = false
	}
}
