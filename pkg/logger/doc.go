// Package logger builds *slog.Logger values for harrier services and
// provides attribute helpers that keep key names consistent.
//
// New creates a logger from functional options; NewFromConfig does the same
// from a Config loaded with the config package. Environment presets pick a
// format and level:
//
//	log := logger.New(
//	    logger.WithDevelopment("mailer"),
//	    logger.WithTaskContext(),
//	)
//	logger.SetAsDefault(log)
//
// The queue stores the identity of each executing task in the context it
// passes to the executor. Loggers created WithTaskContext add that identity
// to every record logged with the context, so handler logs can be correlated
// with queue logs without passing the task around:
//
//	func(ctx context.Context, task queue.Task) error {
//	    log.InfoContext(ctx, "sending email")
//	    ...
//	}
//
// Error and Errors return an empty attribute for nil errors, which slog
// drops, so they can be passed unconditionally.
package logger
