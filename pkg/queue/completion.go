package queue

import (
	"context"
	"log/slog"
	"slices"

	"github.com/dmitrymomot/harrier/pkg/logger"
)

// complete applies the outcome of one execution. Must be called with q.mu held.
func (q *Queue) complete(task *Task, outcome Outcome) {
	ctx := context.Background()

	idx := slices.IndexFunc(q.active, func(a *activeTask) bool { return a.task == task })
	if idx < 0 {
		q.logger.DebugContext(ctx, "ignoring outcome for task that is not running",
			logger.TaskID(task.ID),
			logger.Outcome(outcome.String()))
		return
	}
	q.active[idx].cancel()
	q.active = slices.Delete(q.active, idx, idx+1)

	switch outcome {
	case OutcomeSuccess:
		q.completed++
		q.deleteFromStore(ctx, task)
		q.logger.DebugContext(ctx, "task completed",
			logger.TaskID(task.ID),
			logger.TaskName(task.Name))

	case OutcomeAbandon:
		q.abandoned++
		q.deleteFromStore(ctx, task)
		q.logger.InfoContext(ctx, "task abandoned",
			logger.TaskID(task.ID),
			logger.TaskName(task.Name),
			logger.FailCount(task.FailCount))

	default:
		if outcome != OutcomeFailed {
			q.logger.WarnContext(ctx, "executor returned unknown outcome, treating as failure",
				logger.TaskID(task.ID),
				slog.Int("outcome", int(outcome)))
		}
		q.fail(ctx, task)
	}

	q.dispatch()
}

// fail counts a failure and either requeues the task or drops it once the
// retry budget is spent.
func (q *Queue) fail(ctx context.Context, task *Task) {
	q.failed++
	task.FailCount++

	if !task.UnlimitedRetries() && task.FailCount > task.RetryLimit {
		q.abandoned++
		q.deleteFromStore(ctx, task)
		q.logger.WarnContext(ctx, "task exhausted its retry limit, dropping",
			logger.TaskID(task.ID),
			logger.TaskName(task.Name),
			logger.FailCount(task.FailCount),
			slog.Int64("retry_limit", task.RetryLimit))
		return
	}

	if q.store != nil {
		if err := q.store.UpdateFailCount(ctx, task.ID, task.FailCount); err != nil {
			q.logger.ErrorContext(ctx, "failed to persist fail count",
				logger.TaskID(task.ID),
				logger.FailCount(task.FailCount),
				logger.Error(err))
		}
	}

	task.AvailableAt = q.now()
	q.pending = append(q.pending, task)
	q.retried++

	q.logger.InfoContext(ctx, "task failed, requeued",
		logger.TaskID(task.ID),
		logger.TaskName(task.Name),
		logger.FailCount(task.FailCount))
}

// deleteFromStore drops the record of a task that has left the queue. The
// record is kept while another pending or running task shares its ID, since
// that task still owns it.
func (q *Queue) deleteFromStore(ctx context.Context, task *Task) {
	if q.store == nil {
		return
	}
	if q.holds(task.ID) {
		q.logger.DebugContext(ctx, "keeping task record, a task with the same id is still queued or running",
			logger.TaskID(task.ID),
			logger.TaskName(task.Name))
		return
	}
	if err := q.store.Delete(ctx, task.ID); err != nil {
		q.logger.ErrorContext(ctx, "failed to delete task from store",
			logger.TaskID(task.ID),
			logger.TaskName(task.Name),
			logger.Error(err))
	}
}
