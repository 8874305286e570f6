// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

// Package rowhash reduces a raw row into a RowDigest: its canonical key and a
// fixed-size sum over every hashed column.
package rowhash

import (
	"encoding/hex"

	"github.com/wrgl/tabsum/pkg/canonical"
	"github.com/wrgl/tabsum/pkg/schema"
)

// RawRow maps column name to raw value as returned by a data source. A
// missing entry or a nil value is NULL.
type RawRow map[string]interface{}

type RowDigest struct {
	Key Key
	Sum []byte
}

func (d RowDigest) Hex() string {
	return hex.EncodeToString(d.Sum)
}

type Option func(h *Hasher)

func WithAlgorithm(a Algorithm) Option {
	return func(h *Hasher) {
		h.algo = a
	}
}

// Hasher computes row digests for one table. It reuses an internal buffer
// and must not be shared between goroutines.
type Hasher struct {
	algo     Algorithm
	cols     []schema.ColumnSpec
	keyIdx   []int
	keyKinds []schema.Kind
	buf      []byte
	tokens   []string
}

// NewHasher creates a Hasher for desc. Row keys are made from desc's order
// columns (key columns when declared). A descriptor without order columns
// yields digests with an empty key.
func NewHasher(desc *schema.Descriptor, opts ...Option) *Hasher {
	h := &Hasher{
		algo: DefaultAlgorithm,
		cols: desc.Hashed(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.tokens = make([]string, len(h.cols))
	orderCols, _ := desc.OrderColumns()
	for _, oc := range orderCols {
		for i, col := range h.cols {
			if col.Name == oc.Name {
				h.keyIdx = append(h.keyIdx, i)
				h.keyKinds = append(h.keyKinds, col.Kind)
				break
			}
		}
	}
	return h
}

func (h *Hasher) Algorithm() Algorithm {
	return h.algo
}

// KeyKinds returns kinds of key columns in key order.
func (h *Hasher) KeyKinds() []schema.Kind {
	return h.keyKinds
}

// Sum canonicalizes every hashed column of row in ordinal order, joins the
// tokens with canonical.Delimiter and hashes the result.
func (h *Hasher) Sum(row RawRow) (RowDigest, error) {
	h.buf = h.buf[:0]
	for i, col := range h.cols {
		tok, err := canonical.Canonicalize(row[col.Name], col)
		if err != nil {
			return RowDigest{}, err
		}
		if i > 0 {
			h.buf = append(h.buf, canonical.Delimiter)
		}
		h.buf = append(h.buf, tok...)
		h.tokens[i] = tok
	}
	key := Key{Tokens: make([]string, len(h.keyIdx)), Kinds: h.keyKinds}
	for i, j := range h.keyIdx {
		key.Tokens[i] = h.tokens[j]
	}
	return RowDigest{Key: key, Sum: h.algo.sum(h.buf)}, nil
}

// Canonical returns the delimited canonical form of row. Sum hashes exactly
// these bytes.
func (h *Hasher) Canonical(row RawRow) ([]byte, error) {
	var b []byte
	for i, col := range h.cols {
		tok, err := canonical.Canonicalize(row[col.Name], col)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			b = append(b, canonical.Delimiter)
		}
		b = append(b, tok...)
	}
	return b, nil
}
