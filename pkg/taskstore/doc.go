// Package taskstore opens a queue.Store from a location URL so the backend
// can be chosen by configuration:
//
//	cfg, err := taskstore.LoadConfig() // TASK_STORE_URL, PG_*, REDIS_*, MONGODB_*
//	if err != nil {
//	    return err
//	}
//	store, closeStore, err := taskstore.OpenFromConfig(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer closeStore()
//
// A caller that prefers to keep running without durability can fall back to
// a queue without a store when Open fails.
package taskstore
