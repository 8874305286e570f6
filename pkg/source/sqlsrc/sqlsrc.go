// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

// Package sqlsrc reads table rows from a database/sql connection.
package sqlsrc

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/go-logr/logr"
	"github.com/wrgl/tabsum/pkg/canonical"
	"github.com/wrgl/tabsum/pkg/rowhash"
	"github.com/wrgl/tabsum/pkg/schema"
	"github.com/wrgl/tabsum/pkg/source"
)

type Option func(s *Source)

func WithLogger(logger logr.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

// WithName overrides the source name, which defaults to the dialect.
func WithName(name string) Option {
	return func(s *Source) {
		s.name = name
	}
}

type Source struct {
	db      *sql.DB
	dialect Dialect
	name    string
	logger  logr.Logger
}

func New(db *sql.DB, dialect Dialect, opts ...Option) *Source {
	s := &Source{
		db:      db,
		dialect: dialect,
		name:    string(dialect),
		logger:  logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Source) Name() string {
	return s.name
}

// BuildQuery renders the SELECT statement for q. Range bounds are only
// pushed down for numeric and text order columns, the reader filters the
// rest.
func BuildQuery(d Dialect, q source.Query) (string, []interface{}, error) {
	desc := q.Descriptor
	orderCols, err := desc.OrderColumns()
	if err != nil {
		return "", nil, err
	}
	cols := desc.ReadColumns()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = d.Quote(c)
	}
	var (
		conds []string
		args  []interface{}
	)
	if q.ModifiedAfter != nil {
		if desc.Watermark == "" {
			return "", nil, fmt.Errorf("table %q has no watermark column", desc.Table)
		}
		conds = append(conds, d.Quote(desc.Watermark)+" > ?")
		args = append(args, q.ModifiedAfter.UTC())
	}
	if !q.Range.IsZero() && pushable(orderCols[0].Kind) {
		name := d.Quote(orderCols[0].Name)
		if q.Range.Start != "" {
			conds = append(conds, name+" >= ?")
			args = append(args, q.Range.Start)
		}
		// NULL canonicalizes below every value, so it belongs to the range
		// that is open at the start.
		switch {
		case q.Range.End != "" && q.Range.Start == "":
			conds = append(conds, "("+name+" < ? OR "+name+" IS NULL)")
			args = append(args, q.Range.End)
		case q.Range.End != "":
			conds = append(conds, name+" < ?")
			args = append(args, q.Range.End)
		}
	}
	order := make([]string, len(orderCols))
	for i, c := range orderCols {
		order[i] = d.orderExpr(c.Name, c.Kind == schema.Text)
	}
	b := &strings.Builder{}
	fmt.Fprintf(b, "SELECT %s FROM %s", strings.Join(quoted, ", "), d.Quote(desc.Table))
	if len(conds) > 0 {
		fmt.Fprintf(b, " WHERE %s", strings.Join(conds, " AND "))
	}
	fmt.Fprintf(b, " ORDER BY %s", strings.Join(order, ", "))
	return b.String(), args, nil
}

func pushable(k schema.Kind) bool {
	return k == schema.Numeric || k == schema.Text
}

func (s *Source) Open(ctx context.Context, q source.Query) (source.RowReader, error) {
	query, args, err := BuildQuery(s.dialect, q)
	if err != nil {
		return nil, err
	}
	s.logger.V(1).Info("querying rows", "source", s.name, "table", q.Descriptor.Table, "query", query)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	cols := q.Descriptor.ReadColumns()
	r := &reader{
		rows:  rows,
		cols:  cols,
		vals:  make([]interface{}, len(cols)),
		scans: make([]interface{}, len(cols)),
		q:     q,
	}
	for i := range r.vals {
		r.scans[i] = &r.vals[i]
	}
	if !q.Range.IsZero() {
		orderCols, _ := q.Descriptor.OrderColumns()
		r.rangeCol = orderCols[0]
	}
	if q.ModifiedAfter != nil {
		r.after = q.ModifiedAfter.UTC().Format(canonical.TimeLayout)
		r.watermark, _ = q.Descriptor.Column(q.Descriptor.Watermark)
		r.watermark.Kind = schema.Temporal
		r.watermark.Excluded = false
	}
	return r, nil
}

// KeyBounds returns the canonical smallest and largest value of desc's
// first order column. Both are empty for an empty table.
func (s *Source) KeyBounds(ctx context.Context, desc *schema.Descriptor) (min, max string, err error) {
	orderCols, err := desc.OrderColumns()
	if err != nil {
		return "", "", err
	}
	col := orderCols[0]
	name := s.dialect.Quote(col.Name)
	query := fmt.Sprintf("SELECT MIN(%s), MAX(%s) FROM %s", name, name, s.dialect.Quote(desc.Table))
	s.logger.V(1).Info("querying key bounds", "source", s.name, "query", query)
	var lo, hi interface{}
	if err = s.db.QueryRowContext(ctx, query).Scan(&lo, &hi); err != nil {
		return "", "", err
	}
	if min, err = canonical.Canonicalize(lo, col); err != nil {
		return "", "", err
	}
	if max, err = canonical.Canonicalize(hi, col); err != nil {
		return "", "", err
	}
	return min, max, nil
}

type reader struct {
	rows      *sql.Rows
	cols      []string
	vals      []interface{}
	scans     []interface{}
	q         source.Query
	rangeCol  schema.ColumnSpec
	watermark schema.ColumnSpec
	after     string
}

func (r *reader) Read() (rowhash.RawRow, error) {
	for {
		if !r.rows.Next() {
			if err := r.rows.Err(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}
		if err := r.rows.Scan(r.scans...); err != nil {
			return nil, err
		}
		row := make(rowhash.RawRow, len(r.cols))
		for i, c := range r.cols {
			row[c] = r.vals[i]
		}
		ok, err := r.keep(row)
		if err != nil {
			return nil, err
		}
		if ok {
			return row, nil
		}
	}
}

// keep re-applies the watermark and range filters with canonical semantics
// since engines compare bound parameters in their own ways.
func (r *reader) keep(row rowhash.RawRow) (bool, error) {
	if r.after != "" {
		tok, err := canonical.Canonicalize(row[r.watermark.Name], r.watermark)
		if err != nil {
			return false, err
		}
		if tok == "" || tok <= r.after {
			return false, nil
		}
	}
	if r.rangeCol.Name != "" {
		tok, err := canonical.Canonicalize(row[r.rangeCol.Name], r.rangeCol)
		if err != nil {
			return false, err
		}
		if !r.q.Range.Contains(r.rangeCol.Kind, tok) {
			return false, nil
		}
	}
	return true, nil
}

func (r *reader) Close() error {
	return r.rows.Close()
}
