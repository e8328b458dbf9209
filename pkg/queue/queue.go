package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dmitrymomot/harrier/pkg/logger"
)

// Queue is a durable, priority-ordered task dispatcher.
//
// A single mutex guards the pending set, the active set and the paused flag.
// Every public operation and every completion runs under it, so at most
// MaxConcurrency tasks are active and no task is both pending and active.
// The executor itself runs outside the lock.
type Queue struct {
	mu      sync.Mutex
	pending []*Task
	active  []*activeTask
	paused  bool
	closed  bool

	exec   Executor
	store  Store
	logger *slog.Logger
	now    func() time.Time
	poller *poller

	maxConcurrency  int
	shutdownTimeout time.Duration

	// Base context for executions, cancelled when shutdown gives up waiting.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	completed int64
	failed    int64
	retried   int64
	abandoned int64
}

type activeTask struct {
	task   *Task
	cancel context.CancelFunc
}

// New creates a queue that hands dispatched tasks to exec.
//
// When a store is configured, every persisted record is loaded into the
// pending set before New returns. A store that cannot be read is logged and
// the queue starts empty.
func New(ctx context.Context, exec Executor, opts ...Option) (*Queue, error) {
	if exec == nil {
		return nil, ErrExecutorNil
	}

	o := &options{
		maxConcurrency:  DefaultMaxConcurrency,
		pollInterval:    DefaultPollInterval,
		shutdownTimeout: DefaultShutdownTimeout,
		logger:          slog.Default(),
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(o)
	}

	q := &Queue{
		exec:            exec,
		store:           o.store,
		logger:          o.logger,
		now:             o.now,
		paused:          o.paused,
		maxConcurrency:  o.maxConcurrency,
		shutdownTimeout: o.shutdownTimeout,
	}
	q.ctx, q.cancel = context.WithCancel(context.Background())
	q.poller = newPoller(o.pollInterval, q.onPoll)

	q.mu.Lock()
	defer q.mu.Unlock()

	q.load(ctx)
	q.dispatch()

	return q, nil
}

// NewFromConfig creates a Queue from configuration.
// Additional options override config values.
func NewFromConfig(ctx context.Context, cfg Config, exec Executor, opts ...Option) (*Queue, error) {
	allOpts := append([]Option{
		WithMaxConcurrency(cfg.MaxConcurrentTasks),
		WithPollInterval(cfg.PollInterval),
		WithShutdownTimeout(cfg.ShutdownTimeout),
	}, opts...)

	return New(ctx, exec, allOpts...)
}

// load restores persisted records into the pending set without writing them back.
func (q *Queue) load(ctx context.Context) {
	if q.store == nil {
		return
	}

	tasks, err := q.store.LoadAll(ctx)
	if err != nil {
		q.logger.ErrorContext(ctx, "failed to load tasks from store, queue will start empty",
			logger.Error(err))
		return
	}

	for i := range tasks {
		t := tasks[i].Clone()
		q.pending = append(q.pending, t)
	}

	q.logger.InfoContext(ctx, "loaded tasks from store",
		slog.Int("count", len(tasks)))
}

// Enqueue adds a task to the pending set and persists it unless
// WithoutPersist is given. Tasks sharing an ID with a queued or running task
// are accepted; use EnqueueUnique to reject them.
//
// The queue keeps its own copy of the task. Store failures are logged and do
// not fail the call.
func (q *Queue) Enqueue(ctx context.Context, task *Task, opts ...EnqueueOption) error {
	if task == nil {
		return ErrTaskNil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	q.insert(ctx, task.Clone(), buildEnqueueOptions(opts))
	return nil
}

// EnqueueUnique behaves like Enqueue unless a task with the same ID is
// already queued or running, in which case nothing happens and false is
// returned.
func (q *Queue) EnqueueUnique(ctx context.Context, task *Task, opts ...EnqueueOption) (bool, error) {
	if task == nil {
		return false, ErrTaskNil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false, ErrQueueClosed
	}

	if q.holds(task.ID) {
		q.logger.InfoContext(ctx, "task already in queue, skipping",
			logger.TaskID(task.ID),
			logger.TaskName(task.Name))
		return false, nil
	}

	q.insert(ctx, task.Clone(), buildEnqueueOptions(opts))
	return true, nil
}

func buildEnqueueOptions(opts []EnqueueOption) *enqueueOptions {
	o := &enqueueOptions{persist: true}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (q *Queue) insert(ctx context.Context, task *Task, o *enqueueOptions) {
	if task.Attributes == nil {
		task.Attributes = map[string]string{}
	}

	if o.persist && q.store != nil {
		if err := q.store.Insert(ctx, *task); err != nil {
			q.logger.ErrorContext(ctx, "failed to persist task, it will not survive a restart",
				logger.TaskID(task.ID),
				logger.TaskName(task.Name),
				logger.Error(err))
		}
	}

	q.pending = append(q.pending, task)

	q.logger.DebugContext(ctx, "task enqueued",
		logger.TaskID(task.ID),
		logger.TaskName(task.Name),
		logger.Priority(task.Priority),
		slog.Time("available_at", task.AvailableAt))

	q.dispatch()
}

// holds reports whether a task with id is pending or active.
func (q *Queue) holds(id string) bool {
	if slices.ContainsFunc(q.pending, func(t *Task) bool { return t.ID == id }) {
		return true
	}
	return slices.ContainsFunc(q.active, func(a *activeTask) bool { return a.task.ID == id })
}

// dispatch moves eligible tasks to the active set while capacity allows and
// keeps the poller in step with what remains. Must be called with q.mu held.
func (q *Queue) dispatch() {
	if q.closed || q.paused {
		q.poller.disarm()
		return
	}

	now := q.now()
	for len(q.active) < q.maxConcurrency {
		idx := best(q.pending, now)
		if idx < 0 || !q.pending[idx].Eligible(now) {
			break
		}
		task := q.pending[idx]
		q.pending = slices.Delete(q.pending, idx, idx+1)
		q.start(task)
	}

	// Free slots with pending work left means nothing is eligible yet.
	if len(q.pending) > 0 && len(q.active) < q.maxConcurrency {
		soonest := q.pending[best(q.pending, now)]
		q.poller.arm(soonest.AvailableAt.Sub(now))
		return
	}
	q.poller.disarm()
}

// start marks task active and runs the executor on its own goroutine.
func (q *Queue) start(task *Task) {
	ctx, cancel := context.WithCancel(q.ctx)
	ctx = logger.ContextWithTask(ctx, task.ID, task.Name)
	q.active = append(q.active, &activeTask{task: task, cancel: cancel})
	q.wg.Add(1)

	q.logger.DebugContext(ctx, "task dispatched",
		logger.TaskID(task.ID),
		logger.TaskName(task.Name),
		logger.Priority(task.Priority),
		logger.FailCount(task.FailCount))

	snapshot := *task.Clone()
	go func() {
		defer q.wg.Done()

		outcome := q.execute(ctx, snapshot)

		q.mu.Lock()
		defer q.mu.Unlock()
		q.complete(task, outcome)
	}()
}

// execute calls the executor, turning a panic into a failure.
func (q *Queue) execute(ctx context.Context, task Task) (outcome Outcome) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			q.logger.ErrorContext(ctx, "executor panicked",
				logger.TaskID(task.ID),
				logger.TaskName(task.Name),
				logger.Duration(time.Since(start)),
				slog.Any("panic", r))
			outcome = OutcomeFailed
		}
	}()

	return q.exec.Execute(ctx, task)
}

// onPoll is the poller callback.
func (q *Queue) onPoll(gen uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.poller.claim(gen) {
		return
	}
	q.dispatch()
}

// Pause stops dispatching new tasks. Running tasks are not affected.
func (q *Queue) Pause() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.paused = true
	q.poller.disarm()
}

// Restart resumes dispatching and immediately starts eligible tasks.
func (q *Queue) Restart() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.paused = false
	q.dispatch()
}

// CancelAll drops every pending task, deleting its record from the store,
// and signals running tasks through their context. Running tasks that ignore
// the signal complete normally. It returns the number of dropped tasks.
func (q *Queue) CancelAll(ctx context.Context) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	cleared := q.pending
	q.pending = nil
	q.poller.disarm()

	for _, t := range cleared {
		q.deleteFromStore(ctx, t)
	}
	for _, a := range q.active {
		a.cancel()
	}

	q.logger.InfoContext(ctx, "cancelled all tasks",
		slog.Int("dropped", len(cleared)),
		slog.Int("signalled", len(q.active)))

	return len(cleared)
}

// RemoveTask removes a pending task by ID, deletes its record from the store
// and returns it. Running and unknown tasks cannot be removed; the second
// return value is false for them.
func (q *Queue) RemoveTask(ctx context.Context, id string) (*Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	idx := slices.IndexFunc(q.pending, func(t *Task) bool { return t.ID == id })
	if idx < 0 {
		if slices.ContainsFunc(q.active, func(a *activeTask) bool { return a.task.ID == id }) {
			q.logger.InfoContext(ctx, "task is running and cannot be removed", logger.TaskID(id))
		} else {
			q.logger.DebugContext(ctx, "task to remove is not in the queue", logger.TaskID(id))
		}
		return nil, false
	}

	task := q.pending[idx]
	q.pending = slices.Delete(q.pending, idx, idx+1)
	q.deleteFromStore(ctx, task)
	q.dispatch()

	return task.Clone(), true
}

// Close stops accepting tasks, stops dispatching and waits up to the
// shutdown timeout for running tasks to finish. When the timeout expires the
// running tasks' contexts are cancelled and ErrShutdownTimeout is returned.
// Pending tasks stay in the store. Close is idempotent.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.poller.disarm()
	running := len(q.active)
	q.mu.Unlock()

	ctx := context.Background()
	q.logger.InfoContext(ctx, "queue closing, waiting for running tasks",
		slog.Int("running", running),
		slog.Duration("timeout", q.shutdownTimeout))

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(q.shutdownTimeout)
	defer timer.Stop()

	select {
	case <-done:
		q.cancel()
		q.logger.InfoContext(ctx, "queue closed")
		return nil
	case <-timer.C:
		q.cancel()
		q.logger.WarnContext(ctx, "queue shutdown timeout exceeded, running tasks were cancelled",
			slog.Duration("timeout", q.shutdownTimeout))
		return fmt.Errorf("%w after %s", ErrShutdownTimeout, q.shutdownTimeout)
	}
}

// Run returns a function suitable for errgroup: it blocks until ctx is done
// and then closes the queue.
func (q *Queue) Run(ctx context.Context) func() error {
	return func() error {
		<-ctx.Done()
		return q.Close()
	}
}

// Running reports whether the queue dispatches tasks, i.e. it is neither
// paused nor closed.
func (q *Queue) Running() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return !q.paused && !q.closed
}

// MaxConcurrency returns the maximum number of simultaneously running tasks.
func (q *Queue) MaxConcurrency() int {
	return q.maxConcurrency
}

// TaskCount returns the number of queued plus running tasks.
func (q *Queue) TaskCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending) + len(q.active)
}

// Tasks returns copies of all queued tasks, in dispatch order, followed by
// all running tasks.
func (q *Queue) Tasks() []*Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append(q.queuedLocked(), q.runningLocked()...)
}

// QueuedTasks returns copies of the pending tasks in the order they would be
// dispatched right now.
func (q *Queue) QueuedTasks() []*Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.queuedLocked()
}

// RunningTasks returns copies of the active tasks in dispatch order.
func (q *Queue) RunningTasks() []*Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.runningLocked()
}

func (q *Queue) queuedLocked() []*Task {
	now := q.now()
	out := make([]*Task, 0, len(q.pending))
	for _, t := range q.pending {
		out = append(out, t.Clone())
	}
	slices.SortStableFunc(out, func(a, b *Task) int { return Compare(a, b, now) })
	return out
}

func (q *Queue) runningLocked() []*Task {
	out := make([]*Task, 0, len(q.active))
	for _, a := range q.active {
		out = append(out, a.task.Clone())
	}
	return out
}

// State reports where the task with id currently is. Tasks the queue does not
// hold, whether finished, removed or never submitted, are StateTerminal.
func (q *Queue) State(id string) State {
	q.mu.Lock()
	defer q.mu.Unlock()

	if slices.ContainsFunc(q.active, func(a *activeTask) bool { return a.task.ID == id }) {
		return StateActive
	}
	if slices.ContainsFunc(q.pending, func(t *Task) bool { return t.ID == id }) {
		return StateQueued
	}
	return StateTerminal
}

// Stats returns current queue statistics.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	return Stats{
		Queued:    len(q.pending),
		Active:    len(q.active),
		Completed: q.completed,
		Failed:    q.failed,
		Retried:   q.retried,
		Abandoned: q.abandoned,
		Paused:    q.paused,
		Closed:    q.closed,
	}
}

// Healthcheck returns nil while the queue accepts work.
// It is suitable for health check endpoints.
func (q *Queue) Healthcheck(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return errors.Join(ErrHealthcheckFailed, ErrQueueClosed)
	}
	return nil
}
