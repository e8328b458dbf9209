// Package queue provides a durable, priority-ordered task dispatcher.
//
// A Queue holds tasks in two sets: pending tasks waiting to run and active
// tasks handed to an Executor. At most MaxConcurrency tasks are active at
// once. Whenever a slot frees up, the highest ranked eligible pending task is
// dispatched. Ranking is defined by Compare: tasks whose AvailableAt has
// passed come first, then higher Priority, then fewer failures, then older
// tasks.
//
// # Outcomes and retries
//
// The executor reports one Outcome per dispatch. OutcomeSuccess and
// OutcomeAbandon remove the task. OutcomeFailed increments the task's
// FailCount and requeues it for immediate dispatch while FailCount does not
// exceed RetryLimit; past the limit the task is abandoned. A RetryLimit of
// NoRetryLimit retries forever. A panicking executor counts as a failure.
//
// # Durability
//
// With WithStore every enqueued task is written to a Store and removed from
// it once the task succeeds or is abandoned. A new Queue created over the
// same store resumes the outstanding tasks. Store failures are logged and
// never fail queue operations. MemoryStore keeps records in process; the pg,
// redis and mongo packages provide persistent stores and the taskstore
// package opens one from a URL.
//
// # Delayed tasks
//
// Tasks with AvailableAt in the future stay pending. While nothing is
// eligible the queue re-checks at the sooner of the poll interval and the
// earliest AvailableAt.
//
// # Usage
//
//	mux := queue.NewMux(
//	    queue.NewTaskHandler("send_email", func(ctx context.Context, p EmailPayload) error {
//	        return mailer.Send(ctx, p.To, p.Subject)
//	    }),
//	)
//
//	q, err := queue.New(ctx, mux, queue.WithStore(store), queue.WithMaxConcurrency(5))
//	if err != nil {
//	    return err
//	}
//
//	task := queue.NewTask("send_email",
//	    queue.WithAttribute("to", "user@example.com"),
//	    queue.WithPriority(10),
//	    queue.WithDelay(time.Minute),
//	)
//	if _, err := q.EnqueueUnique(ctx, task); err != nil {
//	    return err
//	}
//
// Tasks built from the same name and attributes share an ID, so
// EnqueueUnique drops repeated submissions of the same logical work while it
// is still queued or running.
//
// Queue.Run plugs the queue into an errgroup and closes it when the group's
// context is cancelled.
package queue
