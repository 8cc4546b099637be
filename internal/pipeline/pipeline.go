// Package pipeline runs a bounded pool of workers over a stream of items
// and lets the caller consume results either as they arrive or back in
// original sequence order.
package pipeline

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Item is one unit of work carrying its original sequence number, so
// results can be reordered later even though workers finish out of order.
type Item[T any] struct {
	Seq   int
	Value T
}

// Result is the output of running Fn over one Item.
type Result[R any] struct {
	Seq   int
	Value R
	Err   error
}

// Run starts workers goroutines (runtime.NumCPU() if workers <= 0), each
// pulling from items and calling fn, and returns a channel of results in
// arrival order. Use OrderedCollect to consume them in sequence order
// instead. Closing items (or cancelling ctx) winds the pool down; Run
// itself never returns an error — per-item failures travel in
// Result.Err so the caller decides whether a single bad item should
// abort the run.
func Run[T, R any](ctx context.Context, items <-chan Item[T], workers int, fn func(context.Context, T) (R, error)) <-chan Result[R] {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan Result[R], 2*workers)

	g, gctx := errgroup.WithContext(ctx)
	for range workers {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case item, ok := <-items:
					if !ok {
						return nil
					}
					value, err := fn(gctx, item.Value)
					select {
					case results <- Result[R]{Seq: item.Seq, Value: value, Err: err}:
					case <-gctx.Done():
						return nil
					}
				}
			}
		})
	}

	go func() {
		g.Wait()
		close(results)
	}()

	return results
}

// OrderedChannel re-serializes results into sequence order, emitting them
// on the returned channel and closing it once results is drained (or ctx
// is cancelled). Unlike OrderedCollect, this lets the caller pull results
// one at a time instead of handing control to a callback — the shape a
// streaming Reader's ReadRecord needs.
func OrderedChannel[R any](ctx context.Context, results <-chan Result[R]) <-chan Result[R] {
	out := make(chan Result[R])
	go func() {
		defer close(out)
		pending := make(map[int]Result[R])
		nextSeq := 0
		for r := range results {
			pending[r.Seq] = r
			for {
				rr, ok := pending[nextSeq]
				if !ok {
					break
				}
				delete(pending, nextSeq)
				nextSeq++
				select {
				case out <- rr:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// OrderedCollect calls fn for each result in sequence order, buffering
// out-of-order arrivals in a pending map and releasing them as soon as the
// next expected sequence number shows up. It blocks until results is
// closed, or fn returns an error, in which case it drains the remaining
// results (to avoid deadlocking any still-running workers) before
// returning that error.
func OrderedCollect[R any](results <-chan Result[R], fn func(Result[R]) error) error {
	pending := make(map[int]Result[R])
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
