// Package batch runs a function over a slice of work items with bounded
// concurrency. Results keep the order of their inputs so reports stay stable
// across runs.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is used when a caller passes a non-positive worker count.
const DefaultWorkers = 4

// Map applies fn to every item using at most workers goroutines. The first
// error cancels the remaining work and is returned; results for completed
// items are discarded in that case.
func Map[T, R any](ctx context.Context, workers int, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]R, len(items))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for i, item := range items {
		i, item := i, item
		group.Go(func() error {
			result, err := fn(ctx, item)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Each is Map without results, for work whose outcome is reported elsewhere.
func Each[T any](ctx context.Context, workers int, items []T, fn func(context.Context, T) error) error {
	_, err := Map(ctx, workers, items, func(ctx context.Context, item T) (struct{}, error) {
		return struct{}{}, fn(ctx, item)
	})
	return err
}
