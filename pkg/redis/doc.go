// Package redis stores queue tasks in Redis.
//
// Connect opens a go-redis client from a redis:// or rediss:// URL and waits
// for the server to answer. TaskStore implements queue.Store with one hash
// per task plus an index set, written in MULTI/EXEC transactions so the hash
// and the index never disagree for long:
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	store := redis.NewTaskStore(client, redis.WithKeyPrefix(cfg.KeyPrefix))
//	q, err := queue.New(ctx, exec, queue.WithStore(store))
//
// Configuration is read from REDIS_* environment variables; see Config.
// Healthcheck returns a closure suitable for readiness probes.
package redis
