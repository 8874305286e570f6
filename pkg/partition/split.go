// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package partition

import (
	"context"
	"fmt"
	"sort"

	"github.com/cockroachdb/apd/v3"
	"github.com/wrgl/tabsum/pkg/canonical"
	"github.com/wrgl/tabsum/pkg/rowhash"
	"github.com/wrgl/tabsum/pkg/schema"
	"github.com/wrgl/tabsum/pkg/source"
)

// Split turns cut points into contiguous ranges covering the whole key
// space. Cuts are sorted and deduplicated first; empty cuts are ignored.
func Split(kind schema.Kind, cuts []string) []source.KeyRange {
	sl := make([]string, 0, len(cuts))
	for _, c := range cuts {
		if c != "" {
			sl = append(sl, c)
		}
	}
	sort.SliceStable(sl, func(i, j int) bool {
		return rowhash.CompareTokens(kind, sl[i], sl[j]) < 0
	})
	ranges := make([]source.KeyRange, 0, len(sl)+1)
	start := ""
	for i, c := range sl {
		if i > 0 && rowhash.CompareTokens(kind, sl[i-1], c) == 0 {
			continue
		}
		ranges = append(ranges, source.KeyRange{Start: start, End: c})
		start = c
	}
	return append(ranges, source.KeyRange{Start: start})
}

var decCtx = apd.BaseContext.WithPrecision(34)

// Even returns up to n-1 numeric cut points spaced evenly between min and
// max. Cuts are whole numbers when both bounds are.
func Even(min, max string, n int) ([]string, error) {
	if n < 2 {
		return nil, nil
	}
	lo, _, err := apd.NewFromString(min)
	if err != nil {
		return nil, fmt.Errorf("lower bound %q: %v", min, err)
	}
	hi, _, err := apd.NewFromString(max)
	if err != nil {
		return nil, fmt.Errorf("upper bound %q: %v", max, err)
	}
	if hi.Cmp(lo) <= 0 {
		return nil, nil
	}
	integral := isIntegral(lo) && isIntegral(hi)
	span, step := new(apd.Decimal), new(apd.Decimal)
	if _, err := decCtx.Sub(span, hi, lo); err != nil {
		return nil, err
	}
	if _, err := decCtx.Quo(step, span, apd.New(int64(n), 0)); err != nil {
		return nil, err
	}
	var cuts []string
	prev := lo
	for i := 1; i < n; i++ {
		p := new(apd.Decimal)
		if _, err := decCtx.Mul(p, step, apd.New(int64(i), 0)); err != nil {
			return nil, err
		}
		if _, err := decCtx.Add(p, p, lo); err != nil {
			return nil, err
		}
		if integral {
			if _, err := decCtx.Floor(p, p); err != nil {
				return nil, err
			}
		}
		if p.Cmp(prev) <= 0 || p.Cmp(hi) > 0 {
			continue
		}
		tok, err := canonical.Canonicalize(p, schema.ColumnSpec{Name: "cut", Kind: schema.Numeric})
		if err != nil {
			return nil, err
		}
		cuts = append(cuts, tok)
		prev = p
	}
	return cuts, nil
}

func isIntegral(d *apd.Decimal) bool {
	r := new(apd.Decimal)
	r.Reduce(d)
	return r.Exponent >= 0
}

// Bounder reports the smallest and largest canonical token of the first
// order column.
type Bounder interface {
	KeyBounds(ctx context.Context, desc *schema.Descriptor) (min, max string, err error)
}

// Plan splits desc's key space into at most n ranges. Only numeric first
// order columns are split, any other table yields one open range.
func Plan(ctx context.Context, b Bounder, desc *schema.Descriptor, n int) ([]source.KeyRange, error) {
	whole := []source.KeyRange{{}}
	if n < 2 || b == nil {
		return whole, nil
	}
	orderCols, err := desc.OrderColumns()
	if err != nil {
		return nil, err
	}
	if orderCols[0].Kind != schema.Numeric {
		return whole, nil
	}
	min, max, err := b.KeyBounds(ctx, desc)
	if err != nil {
		return nil, err
	}
	if min == "" || max == "" {
		return whole, nil
	}
	cuts, err := Even(min, max, n)
	if err != nil {
		return nil, err
	}
	return Split(schema.Numeric, cuts), nil
}
