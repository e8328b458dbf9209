package taskstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/harrier/pkg/logger"
	"github.com/dmitrymomot/harrier/pkg/mongo"
	"github.com/dmitrymomot/harrier/pkg/pg"
	"github.com/dmitrymomot/harrier/pkg/queue"
	"github.com/dmitrymomot/harrier/pkg/redis"
)

// Option configures Open.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	postgres pg.Config
	redis    redis.Config
	mongo    mongo.Config
}

// WithLogger sets the logger for connection and migration messages.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithPostgresConfig tunes the PostgreSQL pool. The connection string comes from the location.
func WithPostgresConfig(cfg pg.Config) Option {
	return func(o *options) { o.postgres = cfg }
}

// WithRedisConfig tunes the Redis client. The connection URL comes from the location.
func WithRedisConfig(cfg redis.Config) Option {
	return func(o *options) { o.redis = cfg }
}

// WithMongoConfig tunes the MongoDB client. The connection URL comes from the location.
func WithMongoConfig(cfg mongo.Config) Option {
	return func(o *options) { o.mongo = cfg }
}

// CloseFunc releases the connection behind a store.
type CloseFunc func() error

// Open returns the store addressed by location. The scheme selects the backend:
//
//	memory://                       in-process MemoryStore
//	postgres://, postgresql://      pg.TaskStore, migrations applied
//	redis://, rediss://             redis.TaskStore
//	mongodb://, mongodb+srv://      mongo.TaskStore, indexes ensured
//
// The returned CloseFunc must be called once the queue using the store is closed.
func Open(ctx context.Context, location string, opts ...Option) (queue.Store, CloseFunc, error) {
	o := &options{
		logger:   slog.Default(),
		postgres: pg.DefaultConfig(""),
		redis:    redis.DefaultConfig(""),
		mongo:    mongo.DefaultConfig(""),
	}
	for _, opt := range opts {
		opt(o)
	}

	scheme, _, ok := strings.Cut(location, "://")
	if !ok || scheme == "" {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidLocation, location)
	}
	scheme = strings.ToLower(scheme)

	log := o.logger.With(logger.Component("taskstore"), logger.Store(scheme))

	switch scheme {
	case "memory":
		return queue.NewMemoryStore(), func() error { return nil }, nil

	case "postgres", "postgresql":
		cfg := o.postgres
		cfg.ConnectionString = location
		pool, err := pg.Connect(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.InfoContext(ctx, "task store opened")
		return pg.NewTaskStore(pool), func() error { pool.Close(); return nil }, nil

	case "redis", "rediss":
		cfg := o.redis
		cfg.ConnectionURL = location
		client, err := redis.Connect(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		store := redis.NewTaskStore(client,
			redis.WithKeyPrefix(cfg.KeyPrefix),
			redis.WithScanBatchSize(cfg.ScanBatchSize),
			redis.WithLogger(log),
		)
		log.InfoContext(ctx, "task store opened")
		return store, client.Close, nil

	case "mongodb", "mongodb+srv":
		cfg := o.mongo
		cfg.ConnectionURL = location
		client, err := mongo.New(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() error { return client.Disconnect(context.Background()) }

		store := mongo.NewTaskStore(client.Database(cfg.Database).Collection(cfg.Collection))
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = closeFn()
			return nil, nil, err
		}
		log.InfoContext(ctx, "task store opened")
		return store, closeFn, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
}

// OpenFromConfig opens the store at cfg.URL with the backend settings from cfg.
func OpenFromConfig(ctx context.Context, cfg Config, opts ...Option) (queue.Store, CloseFunc, error) {
	all := append([]Option{
		WithPostgresConfig(cfg.Postgres),
		WithRedisConfig(cfg.Redis),
		WithMongoConfig(cfg.Mongo),
	}, opts...)
	return Open(ctx, cfg.URL, all...)
}
