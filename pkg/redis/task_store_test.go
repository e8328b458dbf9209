package redis_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/harrier/pkg/queue"
	"github.com/dmitrymomot/harrier/pkg/redis"
)

func setupClient(t *testing.T) *goredis.Client {
	t.Helper()

	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set (integration test)")
	}

	cfg := redis.DefaultConfig(url)
	cfg.RetryAttempts = 1
	client, err := redis.Connect(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func newStore(t *testing.T, client *goredis.Client) *redis.TaskStore {
	t.Helper()
	prefix := fmt.Sprintf("harrier-test-%d", time.Now().UnixNano())
	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := client.Keys(ctx, prefix+":*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
	})
	return redis.NewTaskStore(client,
		redis.WithKeyPrefix(prefix),
		redis.WithScanBatchSize(2),
		redis.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func TestTaskStore(t *testing.T) {
	client := setupClient(t)
	store := newStore(t, client)
	ctx := context.Background()

	task := queue.NewTask("resize",
		queue.WithAttribute("image", "cat.png"),
		queue.WithPriority(2),
		queue.WithDelay(time.Hour),
	)
	require.NoError(t, store.Insert(ctx, *task))
	require.NoError(t, store.Insert(ctx, *task))
	require.NoError(t, store.UpdateFailCount(ctx, task.ID, 1))

	tasks, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	got := tasks[0]
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, task.Attributes, got.Attributes)
	assert.Equal(t, task.Priority, got.Priority)
	assert.Equal(t, task.RetryLimit, got.RetryLimit)
	assert.Equal(t, int64(1), got.FailCount)
	assert.True(t, task.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, task.AvailableAt.Equal(got.AvailableAt))

	require.NoError(t, store.Delete(ctx, task.ID))
	require.NoError(t, store.Delete(ctx, task.ID))
	assert.ErrorIs(t, store.UpdateFailCount(ctx, task.ID, 2), queue.ErrTaskNotFound)

	tasks, err = store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTaskStore_LoadAllBatches(t *testing.T) {
	client := setupClient(t)
	store := newStore(t, client)
	ctx := context.Background()

	var ids []string
	for i := range 5 {
		task := queue.NewTask("job", queue.WithAttribute("n", fmt.Sprint(i)))
		task.CreatedAt = task.CreatedAt.Add(time.Duration(i) * time.Second)
		require.NoError(t, store.Insert(ctx, *task))
		ids = append(ids, task.ID)
	}

	tasks, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 5)
	for i, task := range tasks {
		assert.Equal(t, ids[i], task.ID)
	}
}

func TestHealthcheck(t *testing.T) {
	client := setupClient(t)
	require.NoError(t, redis.Healthcheck(client)(context.Background()))
}

func TestConnect_Errors(t *testing.T) {
	t.Parallel()

	_, err := redis.Connect(context.Background(), redis.Config{})
	assert.ErrorIs(t, err, redis.ErrEmptyConnectionURL)

	_, err = redis.Connect(context.Background(), redis.DefaultConfig("http://localhost"))
	assert.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)

	cfg := redis.DefaultConfig("redis://127.0.0.1:1/0")
	cfg.RetryAttempts = 2
	cfg.RetryInterval = 10 * time.Millisecond
	cfg.ConnectTimeout = time.Second
	_, err = redis.Connect(context.Background(), cfg)
	assert.ErrorIs(t, err, redis.ErrRedisNotReady)
}
