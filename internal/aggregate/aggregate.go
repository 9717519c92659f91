// Package aggregate runs independent named queries concurrently and joins
// their results once all of them have finished.
package aggregate

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Task is one independent query. It must honour ctx cancellation.
type Task func(ctx context.Context) (any, error)

type Tasks map[string]Task

// Results maps each task name to the value its task produced.
type Results map[string]any

// Run executes every task concurrently. On success the result holds one
// entry per task. If any task fails, Run returns the first failure, the
// context handed to the remaining tasks is cancelled and their results are
// discarded; no partial result is returned.
func Run(ctx context.Context, tasks Tasks) (Results, error) {
	eg, egCtx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	results := make(Results, len(tasks))

	for name, task := range tasks {
		eg.Go(func() error {
			value, err := task(egCtx)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}

			mu.Lock()
			results[name] = value
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Query adapts a typed query function into a Task.
func Query[T any](fn func(ctx context.Context) (T, error)) Task {
	return func(ctx context.Context) (any, error) {
		return fn(ctx)
	}
}

// Get returns the result stored under name as a T. It panics when the
// stored value has another type, which is a programming error.
func Get[T any](results Results, name string) T {
	v, ok := results[name]
	if !ok {
		var zero T
		return zero
	}
	return v.(T)
}
