// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

// Package aggregate reduces an ordered stream of row digests into one table
// digest.
package aggregate

import (
	"context"
	"encoding/hex"
	"io"

	"github.com/go-logr/logr"
	"github.com/wrgl/tabsum/pkg/rowhash"
	"github.com/wrgl/tabsum/pkg/stream"
)

// TableDigest is the hash of every row digest of a table concatenated in
// stream order. Reordering rows changes it.
type TableDigest struct {
	Sum  []byte
	Rows int64
}

func (d *TableDigest) Hex() string {
	return hex.EncodeToString(d.Sum)
}

type Option func(a *aggregator)

func WithAlgorithm(algo rowhash.Algorithm) Option {
	return func(a *aggregator) {
		a.algo = algo
	}
}

func WithLogger(logger logr.Logger) Option {
	return func(a *aggregator) {
		a.logger = logger
	}
}

type aggregator struct {
	algo   rowhash.Algorithm
	logger logr.Logger
}

// Aggregate consumes it to the end. Only one row digest is held at a time. A
// cancelled context or any error yields no digest.
func Aggregate(ctx context.Context, it stream.Iterator, opts ...Option) (*TableDigest, error) {
	a := &aggregator{
		algo:   rowhash.DefaultAlgorithm,
		logger: logr.Discard(),
	}
	if r, ok := it.(*stream.Reader); ok {
		a.algo = r.Algorithm()
	}
	for _, opt := range opts {
		opt(a)
	}
	h := a.algo.NewHash()
	var n int64
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d, err := it.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		h.Write(d.Sum)
		n++
	}
	td := &TableDigest{Sum: h.Sum(nil), Rows: n}
	a.logger.V(1).Info("table digest", "algorithm", a.algo.String(), "rows", n, "sum", td.Hex())
	return td, nil
}
