package queue_test

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/harrier/pkg/queue"
)

type resizePayload struct {
	Image string `json:"image"`
	Width string `json:"width"`
}

func Example() {
	done := make(chan string, 1)

	mux := queue.NewMux(
		queue.NewTaskHandler("resize", func(ctx context.Context, p resizePayload) error {
			done <- fmt.Sprintf("resized %s to %s", p.Image, p.Width)
			return nil
		}),
	)
	mux.SetLogger(discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	q, err := queue.New(ctx, mux,
		queue.WithStore(queue.NewMemoryStore()),
		queue.WithLogger(discardLogger()),
	)
	if err != nil {
		panic(err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(q.Run(gctx))

	task := queue.NewTask("resize",
		queue.WithAttribute("image", "cat.png"),
		queue.WithAttribute("width", "320"),
	)
	if err := q.Enqueue(ctx, task); err != nil {
		panic(err)
	}

	select {
	case msg := <-done:
		fmt.Println(msg)
	case <-time.After(time.Second):
		fmt.Println("timed out")
	}

	cancel()
	if err := g.Wait(); err != nil {
		fmt.Println(err)
	}
	fmt.Println(q.Stats().Closed)

	// Output:
	// resized cat.png to 320
	// true
}

func ExampleQueue_EnqueueUnique() {
	q, _ := queue.New(context.Background(), queue.ExecutorFunc(
		func(ctx context.Context, task queue.Task) queue.Outcome { return queue.OutcomeSuccess },
	), queue.WithPaused(), queue.WithLogger(discardLogger()))
	defer q.Close()

	ctx := context.Background()
	first, _ := q.EnqueueUnique(ctx, queue.NewTask("digest", queue.WithAttribute("user", "42")))
	second, _ := q.EnqueueUnique(ctx, queue.NewTask("digest", queue.WithAttribute("user", "42")))

	fmt.Println(first, second, q.TaskCount())
	// Output: true false 1
}
