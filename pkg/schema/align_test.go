// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wrgl/tabsum/pkg/errors"
)

func resolved(t *testing.T, d *Descriptor) *Descriptor {
	t.Helper()
	require.NoError(t, d.Resolve())
	return d
}

func TestAlign(t *testing.T) {
	left := resolved(t, &Descriptor{
		Table: "users",
		Key:   []string{"id"},
		Columns: []ColumnSpec{
			{Name: "id", Kind: Numeric},
			{Name: "name", Kind: Text},
			{Name: "legacy", Kind: Text},
			{Name: "email", Kind: Text},
		},
	})
	right := resolved(t, &Descriptor{
		Table: "users_v2",
		Columns: []ColumnSpec{
			{Name: "email", Kind: Text},
			{Name: "id", Kind: Numeric},
			{Name: "name", Kind: Text},
			{Name: "added", Kind: Boolean},
		},
	})
	l, r, err := Align(left, right)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "email"}, names(l.Hashed()))
	assert.Equal(t, []string{"id", "name", "email"}, names(r.Hashed()))
	assert.Equal(t, []string{"id"}, r.Key)
	assert.Equal(t, "users_v2", r.Table)
	// inputs are untouched
	assert.Equal(t, []string{"email", "id", "name", "added"}, names(right.Columns))
	assert.Len(t, left.Hashed(), 4)
}

func TestAlignMismatch(t *testing.T) {
	base := func() *Descriptor {
		return resolved(t, &Descriptor{
			Table:   "a",
			Key:     []string{"id"},
			Columns: []ColumnSpec{{Name: "id", Kind: Numeric}, {Name: "v", Kind: Text}},
		})
	}
	for i, right := range []*Descriptor{
		resolved(t, &Descriptor{Table: "b", Columns: []ColumnSpec{{Name: "v", Kind: Text}}}),
		resolved(t, &Descriptor{Table: "b", Columns: []ColumnSpec{{Name: "id", Kind: Text}, {Name: "v"}}}),
		resolved(t, &Descriptor{Table: "b", Key: []string{"v"}, Columns: []ColumnSpec{{Name: "id", Kind: Numeric}, {Name: "v"}}}),
	} {
		_, _, err := Align(base(), right)
		assert.True(t, errors.Is(err, errors.ErrSchemaMismatch), "case %d: %v", i, err)
	}

	left := resolved(t, &Descriptor{Table: "a", OrderBy: []string{"x"}, Columns: []ColumnSpec{{Name: "x"}}})
	right := resolved(t, &Descriptor{Table: "b", OrderBy: []string{"y"}, Columns: []ColumnSpec{{Name: "y"}}})
	_, _, err := Align(left, right)
	assert.True(t, errors.Is(err, errors.ErrSchemaMismatch))

	left = resolved(t, &Descriptor{Table: "a", Columns: []ColumnSpec{{Name: "x"}}})
	right = resolved(t, &Descriptor{Table: "b", Columns: []ColumnSpec{{Name: "y"}}})
	_, _, err = Align(left, right)
	assert.True(t, errors.Is(err, errors.ErrSchemaMismatch))
}
