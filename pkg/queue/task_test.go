package queue_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/harrier/pkg/queue"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		before := time.Now()
		task := queue.NewTask("send_email")

		assert.Equal(t, "send_email", task.Name)
		assert.NotNil(t, task.Attributes)
		assert.Empty(t, task.Attributes)
		assert.Equal(t, int64(0), task.Priority)
		assert.Equal(t, queue.DefaultRetryLimit, task.RetryLimit)
		assert.Equal(t, int64(0), task.FailCount)
		assert.False(t, task.CreatedAt.Before(before))
		assert.Equal(t, task.CreatedAt, task.AvailableAt)
		assert.True(t, task.Eligible(time.Now()))

		_, err := uuid.Parse(task.ID)
		require.NoError(t, err)
	})

	t.Run("options", func(t *testing.T) {
		t.Parallel()

		task := queue.NewTask("resize",
			queue.WithPriority(-2),
			queue.WithAttributes(map[string]string{"w": "100", "h": "50"}),
			queue.WithAttribute("format", "png"),
			queue.WithRetryLimit(-10),
			queue.WithDelay(time.Minute),
		)

		assert.Equal(t, int64(-2), task.Priority)
		assert.Equal(t, map[string]string{"w": "100", "h": "50", "format": "png"}, task.Attributes)
		assert.Equal(t, queue.NoRetryLimit, task.RetryLimit)
		assert.True(t, task.UnlimitedRetries())
		assert.Equal(t, task.CreatedAt.Add(time.Minute), task.AvailableAt)
		assert.False(t, task.Eligible(time.Now()))
	})

	t.Run("available at", func(t *testing.T) {
		t.Parallel()

		at := time.Now().Add(time.Hour).Truncate(time.Second)
		task := queue.NewTask("later", queue.WithAvailableAt(at))
		assert.Equal(t, at, task.AvailableAt)

		task = queue.NewTask("now", queue.WithAvailableAt(time.Time{}))
		assert.Equal(t, task.CreatedAt, task.AvailableAt)
	})
}

func TestTaskID(t *testing.T) {
	t.Parallel()

	a := queue.NewTask("report", queue.WithAttribute("day", "mon"), queue.WithAttribute("tz", "utc"))
	b := queue.NewTask("report", queue.WithAttribute("tz", "utc"), queue.WithAttribute("day", "mon"), queue.WithPriority(9))
	c := queue.NewTask("report", queue.WithAttribute("day", "tue"), queue.WithAttribute("tz", "utc"))
	d := queue.NewTask("summary", queue.WithAttribute("day", "mon"), queue.WithAttribute("tz", "utc"))

	assert.Equal(t, a.ID, b.ID, "same name and attributes share an id")
	assert.NotEqual(t, a.ID, c.ID)
	assert.NotEqual(t, a.ID, d.ID)

	assert.Equal(t, queue.TaskID("x", nil), queue.TaskID("x", map[string]string{}))
	// Name and attributes must not bleed into each other.
	assert.NotEqual(t,
		queue.TaskID("a", map[string]string{"b": "c"}),
		queue.TaskID("a\x00", map[string]string{"b": "c"}))
	assert.NotEqual(t,
		queue.TaskID("a", map[string]string{"b": "c\x00d"}),
		queue.TaskID("a", map[string]string{"b": "c", "\x00d": ""}))

	// Attribute values are hashed byte for byte, invalid UTF-8 included.
	ff := queue.NewTask("job", queue.WithAttribute("k", "\xff"))
	fe := queue.NewTask("job", queue.WithAttribute("k", "\xfe"))
	assert.NotEqual(t, ff.ID, fe.ID)
	assert.NotEqual(t,
		queue.TaskID("job", map[string]string{"k": "\xff"}),
		queue.TaskID("job", map[string]string{"k": "\uFFFD"}))
}

func TestTask_Clone(t *testing.T) {
	t.Parallel()

	orig := queue.NewTask("clone", queue.WithAttribute("k", "v"))
	c := orig.Clone()
	c.Attributes["k"] = "changed"
	c.FailCount = 3

	assert.Equal(t, "v", orig.Attributes["k"])
	assert.Equal(t, int64(0), orig.FailCount)

	var nilTask *queue.Task
	assert.Nil(t, nilTask.Clone())

	empty := (&queue.Task{}).Clone()
	assert.NotNil(t, empty.Attributes)
}

func TestOutcome_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "success", queue.OutcomeSuccess.String())
	assert.Equal(t, "failed", queue.OutcomeFailed.String())
	assert.Equal(t, "abandon", queue.OutcomeAbandon.String())
	assert.Equal(t, "unknown", queue.Outcome(0).String())
}
