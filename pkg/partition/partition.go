// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

// Package partition runs one unit of work per disjoint key range in parallel
// while delivering results in range order.
package partition

import (
	"context"

	"github.com/wrgl/tabsum/pkg/source"
	"golang.org/x/sync/errgroup"
)

const bufferSize = 256

// Work produces results for the keys in rng through send. A nil rng covers
// every key. send fails once ctx is done.
type Work[T any] func(ctx context.Context, rng *source.KeyRange, send func(T) error) error

// Run executes work over ranges with at most workers partitions in flight.
// emit is called from the calling goroutine with every result of the first
// range, then every result of the second and so on, so the combined output
// equals a single pass over the whole key space. The first error from work
// or emit cancels every other partition and is returned.
func Run[T any](ctx context.Context, ranges []source.KeyRange, workers int, work Work[T], emit func(T) error) error {
	if len(ranges) == 0 {
		ranges = []source.KeyRange{{}}
	}
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	chans := make([]chan T, len(ranges))
	errs := make([]error, len(ranges))
	for i := range chans {
		chans[i] = make(chan T, bufferSize)
	}

	outer, octx := errgroup.WithContext(ctx)
	outer.Go(func() error {
		inner, ictx := errgroup.WithContext(octx)
		inner.SetLimit(workers)
		for i := range ranges {
			if ictx.Err() != nil {
				break
			}
			inner.Go(func() error {
				defer close(chans[i])
				var rng *source.KeyRange
				if !ranges[i].IsZero() {
					rng = &ranges[i]
				}
				errs[i] = work(ictx, rng, func(v T) error {
					select {
					case chans[i] <- v:
						return nil
					case <-ictx.Done():
						return ictx.Err()
					}
				})
				return errs[i]
			})
		}
		return inner.Wait()
	})

	var emitErr error
consume:
	for i, ch := range chans {
		for {
			select {
			case v, ok := <-ch:
				if !ok {
					if errs[i] != nil {
						break consume
					}
					continue consume
				}
				if err := emit(v); err != nil {
					emitErr = err
					cancel()
					break consume
				}
			case <-octx.Done():
				break consume
			}
		}
	}
	if emitErr != nil {
		outer.Wait()
		return emitErr
	}
	if err := outer.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
