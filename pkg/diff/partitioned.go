// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package diff

import (
	"context"
	"io"

	"github.com/wrgl/tabsum/pkg/partition"
	"github.com/wrgl/tabsum/pkg/source"
	"github.com/wrgl/tabsum/pkg/stream"
)

// Opener opens both sides restricted to rng. A nil rng covers every key.
// Iterators that implement io.Closer are closed once the partition ends.
type Opener func(ctx context.Context, rng *source.KeyRange) (left, right stream.Iterator, err error)

// RunPartitioned diffs every range independently with up to workers ranges
// in flight. Records reach emit in range order, so for ranges produced by
// partition.Split the output is the same as a single Run.
func RunPartitioned(
	ctx context.Context, ranges []source.KeyRange, workers int, open Opener,
	emit func(*Record) error, opts ...Option,
) (Summary, error) {
	var sum Summary
	err := partition.Run(ctx, ranges, workers, func(ctx context.Context, rng *source.KeyRange, send func(*Record) error) error {
		left, right, err := open(ctx, rng)
		if err != nil {
			return err
		}
		defer closeIter(left)
		defer closeIter(right)
		_, err = Run(ctx, NewDiffer(left, right, opts...), send)
		return err
	}, func(r *Record) error {
		sum.Add(r.Status)
		return emit(r)
	})
	return sum, err
}

func closeIter(it stream.Iterator) {
	if c, ok := it.(io.Closer); ok {
		c.Close()
	}
}
