package cmd

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency is the default number of concurrent requests in bulk commands
const DefaultConcurrency = 5

// MaxConcurrency caps --concurrency.
const MaxConcurrency = 50

// bulkResult is the outcome of one bulk item. Results keep input order.
type bulkResult[T any] struct {
	Index int
	Data  T
	Err   error
}

// runBulk runs op over items with at most concurrency calls in flight. A
// failed item never stops the others; items not started because ctx ended
// carry ctx's error.
func runBulk[I, T any](
	ctx context.Context,
	items []I,
	concurrency int64,
	progress io.Writer,
	op func(ctx context.Context, item I) (T, error),
) []bulkResult[T] {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	sem := semaphore.NewWeighted(concurrency)
	results := make([]bulkResult[T], len(items))
	total := len(items)
	var done int64
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		i, item := i, item
		results[i].Index = i
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				results[i].Err = err
				return nil
			}
			defer sem.Release(1)

			results[i].Data, results[i].Err = op(gctx, item)

			if progress != nil {
				current := atomic.AddInt64(&done, 1)
				mu.Lock()
				_, _ = fmt.Fprintf(progress, "\rProcessed %d/%d", current, total)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if progress != nil && total > 0 {
		_, _ = fmt.Fprintln(progress)
	}
	return results
}

