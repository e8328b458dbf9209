package logger

import (
	"context"
	"log/slog"
)

type taskContextKey struct{}

type taskRef struct {
	id   string
	name string
}

// ContextWithTask stores the identity of the task being executed in ctx.
// Loggers built WithTaskContext add it to every record logged with ctx.
func ContextWithTask(ctx context.Context, id, name string) context.Context {
	return context.WithValue(ctx, taskContextKey{}, taskRef{id: id, name: name})
}

// TaskFromContext returns the task identity stored by ContextWithTask.
func TaskFromContext(ctx context.Context) (id, name string, ok bool) {
	if ctx == nil {
		return "", "", false
	}
	ref, ok := ctx.Value(taskContextKey{}).(taskRef)
	return ref.id, ref.name, ok
}

// TaskExtractor is a ContextExtractor for the task identity stored by ContextWithTask.
func TaskExtractor(ctx context.Context) (slog.Attr, bool) {
	id, name, ok := TaskFromContext(ctx)
	if !ok {
		return slog.Attr{}, false
	}
	return Group("task", slog.String("id", id), slog.String("name", name)), true
}
