// Package pg stores queue tasks in PostgreSQL.
//
// Connect opens a pgx/v5 pool, retrying while the database comes up. Migrate
// applies the embedded goose migrations that create the harrier_tasks table.
// TaskStore implements queue.Store over that table:
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//	    return err
//	}
//
//	q, err := queue.New(ctx, exec, queue.WithStore(pg.NewTaskStore(pool)))
//
// Configuration is read from PG_* environment variables; see Config.
// Healthcheck returns a closure suitable for readiness probes.
package pg
