package app

import (
	"context"
	"sync"
)

// PartialResult holds the outcome of one branch of a partial gather.
type PartialResult[T any] struct {
	Value T
	Err   error
}

// OK reports whether the branch succeeded.
func (r PartialResult[T]) OK() bool {
	return r.Err == nil
}

// ParallelPartial3 runs three functions concurrently and returns every
// outcome. A failing branch never cancels the others, so each error is kept
// on its own result instead of being joined into one.
//
// Example:
//
//	db, logs, mem := ParallelPartial3(ctx, countRecords, logStats, memoryStats)
//	if !db.OK() {
//	    ...
//	}
func ParallelPartial3[T1, T2, T3 any](
	ctx context.Context,
	fn1 func(context.Context) (T1, error),
	fn2 func(context.Context) (T2, error),
	fn3 func(context.Context) (T3, error),
) (r1 PartialResult[T1], r2 PartialResult[T2], r3 PartialResult[T3]) {
	var wg sync.WaitGroup

	wg.Go(func() { r1.Value, r1.Err = fn1(ctx) })
	wg.Go(func() { r2.Value, r2.Err = fn2(ctx) })
	wg.Go(func() { r3.Value, r3.Err = fn3(ctx) })

	wg.Wait()

	return r1, r2, r3
}
