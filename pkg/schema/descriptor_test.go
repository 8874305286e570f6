// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package schema

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wrgl/tabsum/pkg/errors"
)

func names(cols []ColumnSpec) []string {
	sl := make([]string, len(cols))
	for i, c := range cols {
		sl[i] = c.Name
	}
	return sl
}

func TestDecode(t *testing.T) {
	d, err := Decode(strings.NewReader(`
table: users
watermark: updated_at
exclude: ["*_etl"]
columns:
  - name: name
    type: nvarchar(50)
    position: 2
  - name: id
    type: bigint
    position: 1
    key: true
  - name: row_ver
    type: rowversion
    position: 3
  - name: loaded_etl
    type: datetime2
    position: 4
  - name: updated_at
    kind: temporal
    position: 5
    nullable: true
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "row_ver", "loaded_etl", "updated_at"}, names(d.Columns))
	assert.Equal(t, []string{"id", "name", "updated_at"}, names(d.Hashed()))
	assert.Equal(t, []string{"id"}, d.Key)
	assert.Equal(t, []string{"id"}, names(d.KeyColumns()))
	assert.Equal(t, []string{"id", "name", "updated_at"}, d.ReadColumns())

	col, ok := d.Column("name")
	require.True(t, ok)
	assert.Equal(t, Text, col.Kind)
	col, _ = d.Column("id")
	assert.Equal(t, Numeric, col.Kind)
	col, _ = d.Column("row_ver")
	assert.True(t, col.Excluded)
	col, _ = d.Column("loaded_etl")
	assert.True(t, col.Excluded)
	assert.Equal(t, Temporal, col.Kind)
	_, ok = d.Column("nope")
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	fp := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(fp, []byte("table: t\nkey: [a, b]\ncolumns:\n  - {name: a, kind: text}\n  - {name: b, kind: numeric}\n  - {name: c, kind: boolean}\n"), 0644))
	d, err := Load(fp)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names(d.KeyColumns()))
	cols, err := d.OrderColumns()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names(cols))

	require.NoError(t, os.WriteFile(fp, []byte("table: t\ncolumns:\n  - {name: a, kind: blah}\n"), 0644))
	_, err = Load(fp)
	assert.Error(t, err)
}

func TestResolveErrors(t *testing.T) {
	for i, c := range []struct {
		d   *Descriptor
		err string
	}{
		{&Descriptor{Table: "t"}, `table "t" has no columns`},
		{&Descriptor{Columns: []ColumnSpec{{Name: "a"}, {Name: "a"}}}, `duplicated column "a"`},
		{&Descriptor{Columns: []ColumnSpec{{Name: "a", Position: 1}, {Name: "b", Position: 1}}}, `columns "a" and "b" share position 1`},
		{&Descriptor{Columns: []ColumnSpec{{Name: "a"}}, Key: []string{"b"}}, `key column "b" not found`},
		{&Descriptor{Columns: []ColumnSpec{{Name: "a", Excluded: true}, {Name: "b"}}, Key: []string{"a"}}, `key column "a" is excluded`},
		{&Descriptor{Columns: []ColumnSpec{{Name: "a"}}, OrderBy: []string{"z"}}, `order column "z" not found`},
		{&Descriptor{Columns: []ColumnSpec{{Name: "a"}}, Watermark: "z"}, `watermark column "z" not found`},
		{&Descriptor{Table: "t", Columns: []ColumnSpec{{Name: "a", Type: "rowversion"}}}, `table "t" has no hashable column`},
	} {
		err := c.d.Resolve()
		require.Error(t, err, "case %d", i)
		assert.Contains(t, err.Error(), c.err, "case %d", i)
	}
}

func TestOrderColumns(t *testing.T) {
	d := &Descriptor{Table: "t", Columns: []ColumnSpec{{Name: "a"}, {Name: "b"}}}
	require.NoError(t, d.Resolve())
	_, err := d.OrderColumns()
	assert.True(t, errors.Is(err, errors.ErrNoDeterministicOrder))

	d = &Descriptor{Table: "t", Columns: []ColumnSpec{{Name: "a"}, {Name: "b"}}, OrderBy: []string{"b", "a"}}
	require.NoError(t, d.Resolve())
	cols, err := d.OrderColumns()
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, names(cols))
}

func TestKindOf(t *testing.T) {
	for s, k := range map[string]Kind{
		"BIT":                      Boolean,
		"nvarchar(max)":            Text,
		"XML":                      Text,
		"decimal(18, 4)":           Numeric,
		"double precision":         Numeric,
		"datetime2(7)":             Temporal,
		"timestamp with time zone": Temporal,
		"timestamp(6)":             Temporal,
		"varbinary(max)":           Binary,
		"geography":                Other,
		"":                         Other,
	} {
		assert.Equal(t, k, KindOf(s), s)
	}
	assert.True(t, IsChangeTrackingType("ROWVERSION"))
	assert.False(t, IsChangeTrackingType("timestamp"))

	// SQL Server timestamp columns must be declared rowversion or excluded.
	d := &Descriptor{Table: "t", Key: []string{"id"}, Columns: []ColumnSpec{
		{Name: "id", Type: "int"},
		{Name: "ts", Type: "timestamp", Excluded: true},
		{Name: "rv", Type: "rowversion"},
	}}
	require.NoError(t, d.Resolve())
	assert.Equal(t, []string{"id"}, names(d.Hashed()))
}

func TestClone(t *testing.T) {
	d := &Descriptor{Table: "t", Columns: []ColumnSpec{{Name: "a", Key: true}, {Name: "b"}}}
	require.NoError(t, d.Resolve())
	c := d.Clone()
	c.Columns[1].Name = "z"
	assert.Equal(t, "b", d.Columns[1].Name)
	assert.Equal(t, []string{"a"}, c.Key)
}
