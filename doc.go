// Package harrier is a durable, priority-ordered task dispatcher.
//
// The packages under pkg/ make up the library:
//
//   - queue      the dispatcher, task model, ordering, handler mux and in-memory store
//   - pg         PostgreSQL task store with embedded migrations
//   - redis      Redis task store
//   - mongo      MongoDB task store
//   - taskstore  opens one of the stores from a location URL
//   - config     environment and .env loading into typed structs
//   - logger     slog construction and shared attribute helpers
//
// A minimal durable worker:
//
//	cfg, _ := taskstore.LoadConfig()
//	store, closeStore, err := taskstore.OpenFromConfig(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer closeStore()
//
//	q, err := queue.New(ctx, mux, queue.WithStore(store))
//	if err != nil {
//	    return err
//	}
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(q.Run(ctx))
//	return g.Wait()
package harrier
