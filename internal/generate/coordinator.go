package generate

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/semaphore"

	"slidesmith/internal/deck"
	"slidesmith/internal/slidehtml"
)

// DefaultMaxWorkers bounds concurrent slide builds.
const DefaultMaxWorkers = 5

// Coordinator fans out pending WRITE tasks across a bounded worker pool.
// Workers share nothing but the result channel; all stateful merging happens
// in Join on the caller's goroutine.
type Coordinator struct {
	Builder    *Builder
	MaxWorkers int
}

func (c *Coordinator) workers() int64 {
	if c.MaxWorkers <= 0 {
		return DefaultMaxWorkers
	}
	return int64(c.MaxWorkers)
}

// Run builds every todo concurrently and returns one Result per todo, in
// completion order. A failed or canceled worker still yields a placeholder
// result, so the caller always gets len(todos) records.
func (c *Coordinator) Run(ctx context.Context, todos []deck.Todo, style string) []Result {
	if len(todos) == 0 {
		return nil
	}
	log.Printf("[fanout] dispatching %d tasks, %d workers", len(todos), c.workers())

	sem := semaphore.NewWeighted(c.workers())
	results := make(chan Result, len(todos))
	for _, t := range todos {
		t := t
		go func() {
			if err := sem.Acquire(ctx, 1); err != nil {
				results <- Result{
					TaskID:  t.ID,
					Title:   t.Title,
					Content: slidehtml.Placeholder(t.Title, "Generation was canceled before this slide started."),
					Success: false,
					Err:     fmt.Sprintf("task %d: %v", t.ID, err),
				}
				return
			}
			defer sem.Release(1)
			results <- c.Builder.Build(ctx, t.ID, t.Title, t.Details, style)
		}()
	}

	out := make([]Result, 0, len(todos))
	for range todos {
		out = append(out, <-results)
	}
	return out
}
