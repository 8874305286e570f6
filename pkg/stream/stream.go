// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

// Package stream turns a data source into an ordered sequence of row
// digests.
package stream

import (
	"context"
	"io"

	"github.com/go-logr/logr"
	"github.com/wrgl/tabsum/pkg/errors"
	"github.com/wrgl/tabsum/pkg/pbar"
	"github.com/wrgl/tabsum/pkg/rowhash"
	"github.com/wrgl/tabsum/pkg/source"
)

// Iterator yields row digests ascending by key. Read returns io.EOF after the
// last digest.
type Iterator interface {
	Read() (*rowhash.RowDigest, error)
}

type Option func(s *Stream)

func WithLogger(logger logr.Logger) Option {
	return func(s *Stream) {
		s.logger = logger
	}
}

func WithProgressBar(bar pbar.Bar) Option {
	return func(s *Stream) {
		s.bar = bar
	}
}

func WithHasherOptions(opts ...rowhash.Option) Option {
	return func(s *Stream) {
		s.hasherOpts = append(s.hasherOpts, opts...)
	}
}

// Side labels keys in ordering errors.
func WithSide(side string) Option {
	return func(s *Stream) {
		s.side = side
	}
}

// Stream is a reissuable query against one source. Each Open starts a fresh
// forward-only pass.
type Stream struct {
	src        source.Source
	q          source.Query
	hasherOpts []rowhash.Option
	logger     logr.Logger
	bar        pbar.Bar
	side       string
}

// New fails with ErrNoDeterministicOrder when q's descriptor has neither key
// nor order columns.
func New(src source.Source, q source.Query, opts ...Option) (*Stream, error) {
	if _, err := q.Descriptor.OrderColumns(); err != nil {
		return nil, err
	}
	s := &Stream{
		src:    src,
		q:      q,
		logger: logr.Discard(),
		bar:    pbar.NewNoopBar(),
		side:   src.Name(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Stream) Query() source.Query {
	return s.q
}

// Open issues the query. Cancelling ctx stops the pass at the next row.
func (s *Stream) Open(ctx context.Context) (*Reader, error) {
	s.logger.V(1).Info("opening stream", "source", s.src.Name(), "table", s.q.Descriptor.Table)
	rr, err := s.src.Open(ctx, s.q)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.SourceReadError(s.src.Name(), err)
	}
	return &Reader{
		ctx:    ctx,
		name:   s.src.Name(),
		rr:     rr,
		hasher: rowhash.NewHasher(s.q.Descriptor, s.hasherOpts...),
		order:  newOrderChecker(s.side),
		logger: s.logger,
		bar:    s.bar,
	}, nil
}

type Reader struct {
	ctx    context.Context
	name   string
	rr     source.RowReader
	hasher *rowhash.Hasher
	order  *orderChecker
	logger logr.Logger
	bar    pbar.Bar
	count  int64
	done   bool
}

func (r *Reader) Read() (*rowhash.RowDigest, error) {
	if r.done {
		return nil, io.EOF
	}
	if err := r.ctx.Err(); err != nil {
		r.bar.Abort()
		return nil, err
	}
	row, err := r.rr.Read()
	if err == io.EOF {
		r.done = true
		r.bar.Done()
		r.logger.V(1).Info("stream exhausted", "source", r.name, "rows", r.count)
		return nil, io.EOF
	}
	if err != nil {
		r.bar.Abort()
		if r.ctx.Err() != nil {
			return nil, r.ctx.Err()
		}
		return nil, errors.SourceReadError(r.name, err)
	}
	d, err := r.hasher.Sum(row)
	if err != nil {
		r.bar.Abort()
		return nil, err
	}
	if err := r.order.check(d.Key); err != nil {
		r.bar.Abort()
		return nil, err
	}
	r.count++
	r.bar.Incr()
	if v := r.logger.V(2); v.Enabled() {
		v.Info("row digest", "source", r.name, "key", d.Key.String(), "sum", d.Hex())
	}
	return &d, nil
}

// Count returns number of digests read so far.
func (r *Reader) Count() int64 {
	return r.count
}

func (r *Reader) Algorithm() rowhash.Algorithm {
	return r.hasher.Algorithm()
}

func (r *Reader) Close() error {
	return r.rr.Close()
}
