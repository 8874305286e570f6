// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

// Package csvsrc reads table rows from a CSV file with a header row. Rows are
// sorted by key on the way out unless the file is declared presorted.
package csvsrc

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	"github.com/wrgl/tabsum/pkg/canonical"
	"github.com/wrgl/tabsum/pkg/errors"
	"github.com/wrgl/tabsum/pkg/pbar"
	"github.com/wrgl/tabsum/pkg/rowhash"
	"github.com/wrgl/tabsum/pkg/schema"
	"github.com/wrgl/tabsum/pkg/slice"
	"github.com/wrgl/tabsum/pkg/sorter"
	"github.com/wrgl/tabsum/pkg/source"
)

type Option func(s *Source)

func WithLogger(logger logr.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

func WithDelimiter(r rune) Option {
	return func(s *Source) {
		s.comma = r
	}
}

// WithRunSize caps memory used by the sorter before it spills to disk.
func WithRunSize(n uint64) Option {
	return func(s *Source) {
		s.runSize = n
	}
}

func WithProgressBar(bar pbar.Bar) Option {
	return func(s *Source) {
		s.bar = bar
	}
}

// WithPresorted skips sorting. The file must already be ordered by key.
func WithPresorted() Option {
	return func(s *Source) {
		s.presorted = true
	}
}

type Source struct {
	path      string
	comma     rune
	runSize   uint64
	presorted bool
	bar       pbar.Bar
	logger    logr.Logger
}

func New(path string, opts ...Option) *Source {
	s := &Source{
		path:   path,
		comma:  ',',
		logger: logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Source) Name() string {
	return filepath.Base(s.path)
}

func (s *Source) Open(ctx context.Context, q source.Query) (source.RowReader, error) {
	desc := q.Descriptor
	orderCols, err := desc.OrderColumns()
	if err != nil {
		return nil, err
	}
	if q.ModifiedAfter != nil && desc.Watermark == "" {
		return nil, fmt.Errorf("table %q has no watermark column", desc.Table)
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(f)
	cr.Comma = s.comma
	cr.ReuseRecord = true
	header, err := cr.Read()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read header: %w", err)
	}
	p, err := newProjection(desc, orderCols, header)
	if err != nil {
		f.Close()
		return nil, err
	}
	if q.ModifiedAfter != nil {
		p.after = q.ModifiedAfter.UTC().Format(canonical.TimeLayout)
	}
	p.rng = q.Range
	s.logger.V(1).Info("reading csv", "path", s.path, "table", desc.Table, "presorted", s.presorted)

	if s.presorted {
		return &streamReader{ctx: ctx, f: f, cr: cr, p: p}, nil
	}
	defer f.Close()
	opts := []sorter.SorterOption{}
	if s.runSize > 0 {
		opts = append(opts, sorter.WithRunSize(s.runSize))
	}
	if s.bar != nil {
		opts = append(opts, sorter.WithProgressBar(s.bar))
	}
	srt, err := sorter.NewSorter(p.compare, opts...)
	if err != nil {
		return nil, err
	}
	for {
		if err := ctx.Err(); err != nil {
			srt.Close()
			return nil, err
		}
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			srt.Close()
			return nil, err
		}
		out, ok, err := p.project(rec)
		if err != nil {
			srt.Close()
			return nil, err
		}
		if !ok {
			continue
		}
		if err := srt.AddRow(out); err != nil {
			srt.Close()
			return nil, err
		}
	}
	s.logger.V(1).Info("sorted csv", "path", s.path, "rows", srt.RowsCount)
	return &sortedReader{srt: srt, it: srt.Sorted(), p: p}, nil
}

// projection maps a CSV record to a sortable record made of the canonical
// key tokens followed by the raw values of every read column.
type projection struct {
	cols      []string
	idx       []int
	orderCols []schema.ColumnSpec
	orderIdx  []int
	kinds     []schema.Kind
	watermark schema.ColumnSpec
	wmIdx     int
	after     string
	rng       *source.KeyRange
}

func newProjection(desc *schema.Descriptor, orderCols []schema.ColumnSpec, header []string) (*projection, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[h] = i
	}
	p := &projection{
		cols:      desc.ReadColumns(),
		orderCols: orderCols,
		wmIdx:     -1,
	}
	if missing := slice.Missing(p.cols, header); len(missing) > 0 {
		return nil, errors.SchemaMismatchf("columns %v not found in csv header", missing)
	}
	for _, c := range p.cols {
		p.idx = append(p.idx, pos[c])
	}
	for _, c := range orderCols {
		p.orderIdx = append(p.orderIdx, pos[c.Name])
		p.kinds = append(p.kinds, c.Kind)
	}
	if desc.Watermark != "" {
		p.watermark, _ = desc.Column(desc.Watermark)
		p.watermark.Kind = schema.Temporal
		p.watermark.Excluded = false
		p.wmIdx = pos[desc.Watermark]
	}
	return p, nil
}

func (p *projection) compare(a, b []string) int {
	for i, kind := range p.kinds {
		if c := rowhash.CompareTokens(kind, a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

func (p *projection) project(rec []string) ([]string, bool, error) {
	if p.after != "" {
		tok, err := canonical.Canonicalize(rec[p.wmIdx], p.watermark)
		if err != nil {
			return nil, false, err
		}
		if tok == "" || tok <= p.after {
			return nil, false, nil
		}
	}
	n := len(p.orderCols)
	out := make([]string, n+len(p.idx))
	for i, col := range p.orderCols {
		tok, err := canonical.Canonicalize(nullable(rec[p.orderIdx[i]]), col)
		if err != nil {
			return nil, false, err
		}
		out[i] = tok
	}
	if !p.rng.Contains(p.kinds[0], out[0]) {
		return nil, false, nil
	}
	for i, j := range p.idx {
		out[n+i] = rec[j]
	}
	return out, true, nil
}

// row turns a projected record back into a RawRow. Empty cells are NULL.
func (p *projection) row(out []string) rowhash.RawRow {
	n := len(p.orderCols)
	row := make(rowhash.RawRow, len(p.cols))
	for i, c := range p.cols {
		row[c] = nullable(out[n+i])
	}
	return row
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

type sortedReader struct {
	srt *sorter.Sorter
	it  *sorter.Iterator
	p   *projection
}

func (r *sortedReader) Read() (rowhash.RawRow, error) {
	out, err := r.it.Next()
	if err != nil {
		return nil, err
	}
	return r.p.row(out), nil
}

func (r *sortedReader) Close() error {
	return r.srt.Close()
}

type streamReader struct {
	ctx context.Context
	f   *os.File
	cr  *csv.Reader
	p   *projection
}

func (r *streamReader) Read() (rowhash.RawRow, error) {
	for {
		if err := r.ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.cr.Read()
		if err != nil {
			return nil, err
		}
		out, ok, err := r.p.project(rec)
		if err != nil {
			return nil, err
		}
		if ok {
			return r.p.row(out), nil
		}
	}
}

func (r *streamReader) Close() error {
	return r.f.Close()
}
