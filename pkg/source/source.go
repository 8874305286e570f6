// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

// Package source defines the data source port: something that yields raw
// rows of one table in ascending key order.
package source

import (
	"context"
	"io"
	"time"

	"github.com/wrgl/tabsum/pkg/rowhash"
	"github.com/wrgl/tabsum/pkg/schema"
)

// KeyRange bounds the first order column. An empty bound is open. Start is
// inclusive and End is exclusive.
type KeyRange struct {
	Start string
	End   string
}

func (r *KeyRange) IsZero() bool {
	return r == nil || (r.Start == "" && r.End == "")
}

// Contains reports whether canonical token tok of given kind falls in r.
func (r *KeyRange) Contains(kind schema.Kind, tok string) bool {
	if r.IsZero() {
		return true
	}
	if r.Start != "" && rowhash.CompareTokens(kind, tok, r.Start) < 0 {
		return false
	}
	if r.End != "" && rowhash.CompareTokens(kind, tok, r.End) >= 0 {
		return false
	}
	return true
}

type Query struct {
	Descriptor *schema.Descriptor

	// ModifiedAfter keeps only rows whose watermark column is strictly
	// greater than it. It requires Descriptor.Watermark.
	ModifiedAfter *time.Time

	Range *KeyRange
}

// RowReader yields rows in ascending order of the descriptor's order columns.
// Read returns io.EOF after the last row.
type RowReader interface {
	Read() (rowhash.RawRow, error)
	io.Closer
}

type Source interface {
	// Name identifies the source in logs and errors.
	Name() string

	// Open issues q. Calling Open again restarts the sequence from the
	// beginning.
	Open(ctx context.Context, q Query) (RowReader, error)
}
