// Package mongo stores queue tasks in MongoDB using the official v2 driver.
//
// New connects and pings with retries. TaskStore implements queue.Store with one document per task,
// using the task id as _id so re-inserting the same logical task replaces the
// existing document:
//
//	client, err := mongo.New(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	store := mongo.NewTaskStore(client.Database(cfg.Database).Collection(cfg.Collection))
//	if err := store.EnsureIndexes(ctx); err != nil {
//	    return err
//	}
//
// Configuration is read from MONGODB_* environment variables; see Config.
package mongo
