// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package schema

import (
	"slices"

	"github.com/wrgl/tabsum/pkg/errors"
)

// Align restricts two descriptors to the hashed columns they have in common
// so that rows from both sides canonicalize into comparable digests. Common
// columns follow left's ordinal order on both sides. Right inherits left's key
// when it declares none.
func Align(left, right *Descriptor) (*Descriptor, *Descriptor, error) {
	left.mustResolve()
	right.mustResolve()
	if len(right.Key) > 0 && !slices.Equal(left.Key, right.Key) {
		return nil, nil, errors.SchemaMismatchf("key %v on left differs from key %v on right", left.Key, right.Key)
	}
	if !slices.Equal(left.OrderBy, right.OrderBy) && len(left.Key) == 0 {
		return nil, nil, errors.SchemaMismatchf("order columns %v on left differ from %v on right", left.OrderBy, right.OrderBy)
	}
	for _, name := range left.Key {
		col, ok := right.Column(name)
		if !ok || col.Excluded {
			return nil, nil, errors.SchemaMismatchf("key column %q absent on right", name)
		}
		lcol, _ := left.Column(name)
		if lcol.Kind != col.Kind {
			return nil, nil, errors.SchemaMismatchf("key column %q is %s on left but %s on right", name, lcol.Kind, col.Kind)
		}
	}

	var lcols, rcols []ColumnSpec
	for _, col := range left.Hashed() {
		rcol, ok := right.Column(col.Name)
		if !ok || rcol.Excluded {
			continue
		}
		pos := len(lcols) + 1
		col.Position = pos
		rcol.Position = pos
		lcols = append(lcols, col)
		rcols = append(rcols, rcol)
	}
	if len(lcols) == 0 {
		return nil, nil, errors.SchemaMismatchf("tables %q and %q have no common column", left.Table, right.Table)
	}

	l := &Descriptor{
		Table:   left.Table,
		Columns: lcols,
		Key:     append([]string(nil), left.Key...),
		OrderBy: append([]string(nil), left.OrderBy...),
	}
	r := &Descriptor{
		Table:   right.Table,
		Columns: rcols,
		Key:     append([]string(nil), left.Key...),
		OrderBy: append([]string(nil), left.OrderBy...),
	}
	for _, d := range []*Descriptor{l, r} {
		if err := d.Resolve(); err != nil {
			return nil, nil, errors.SchemaMismatchf("%v", err)
		}
	}
	return l, r, nil
}
