// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package csvsrc

import (
	"context"
	"io"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wrgl/tabsum/pkg/errors"
	"github.com/wrgl/tabsum/pkg/rowhash"
	"github.com/wrgl/tabsum/pkg/schema"
	"github.com/wrgl/tabsum/pkg/source"
	"github.com/wrgl/tabsum/pkg/testutils"
)

func usersDesc(t *testing.T) *schema.Descriptor {
	t.Helper()
	d := &schema.Descriptor{
		Table:     "users",
		Key:       []string{"id"},
		Watermark: "updated_at",
		Columns: []schema.ColumnSpec{
			{Name: "id", Kind: schema.Numeric},
			{Name: "name", Kind: schema.Text},
			{Name: "updated_at", Kind: schema.Temporal, Excluded: true},
		},
	}
	require.NoError(t, d.Resolve())
	return d
}

func readIDs(t *testing.T, s source.Source, q source.Query) []string {
	t.Helper()
	r, err := s.Open(context.Background(), q)
	require.NoError(t, err)
	defer r.Close()
	var ids []string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		ids = append(ids, row["id"].(string))
	}
	return ids
}

func TestSourceSorts(t *testing.T) {
	path := testutils.WriteCSV(t, [][]string{
		{"name", "id", "updated_at", "extra"},
		{"Jay", "10", "2024-01-03 00:00:00", "x"},
		{"Ann", "9", "2024-01-01 00:00:00", "x"},
		{"", "2", "", "x"},
		{"Bo", "-1.5", "2024-01-02T00:00:00Z", "x"},
	})
	s := New(path)
	desc := usersDesc(t)
	assert.Equal(t, []string{"-1.5", "2", "9", "10"}, readIDs(t, s, source.Query{Descriptor: desc}))

	r, err := s.Open(context.Background(), source.Query{Descriptor: desc})
	require.NoError(t, err)
	_, err = r.Read()
	require.NoError(t, err)
	row, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, rowhash.RawRow{"id": "2", "name": nil, "updated_at": nil}, row)
	require.NoError(t, r.Close())

	after := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"-1.5", "10"}, readIDs(t, s, source.Query{Descriptor: desc, ModifiedAfter: &after}))
	assert.Equal(t, []string{"2", "9"}, readIDs(t, s, source.Query{Descriptor: desc, Range: &source.KeyRange{Start: "0", End: "10"}}))
}

func TestSourceSpill(t *testing.T) {
	rows := [][]string{{"id", "name", "updated_at"}}
	var expected []string
	for i := 500; i > 0; i-- {
		rows = append(rows, []string{strconv.Itoa(i), "name" + strconv.Itoa(i), ""})
	}
	for i := 1; i <= 500; i++ {
		expected = append(expected, strconv.Itoa(i))
	}
	s := New(testutils.WriteCSV(t, rows), WithRunSize(1024))
	assert.Equal(t, expected, readIDs(t, s, source.Query{Descriptor: usersDesc(t)}))
}

func TestSourcePresorted(t *testing.T) {
	path := testutils.WriteCSV(t, [][]string{
		{"id", "name", "updated_at"},
		{"3", "c", ""},
		{"1", "a", ""},
	})
	ids := readIDs(t, New(path, WithPresorted()), source.Query{Descriptor: usersDesc(t)})
	assert.Equal(t, []string{"3", "1"}, ids)
}

func TestSourceDelimiter(t *testing.T) {
	path := testutils.WriteCSV(t, [][]string{{"id;name;updated_at"}, {"2;b;"}, {"1;a;"}})
	ids := readIDs(t, New(path, WithDelimiter(';')), source.Query{Descriptor: usersDesc(t)})
	assert.Equal(t, []string{"1", "2"}, ids)
}

func TestSourceErrors(t *testing.T) {
	path := testutils.WriteCSV(t, [][]string{{"id", "updated_at"}, {"1", ""}})
	_, err := New(path).Open(context.Background(), source.Query{Descriptor: usersDesc(t)})
	assert.True(t, errors.Is(err, errors.ErrSchemaMismatch))

	path = testutils.WriteCSV(t, [][]string{{"id", "name", "updated_at"}, {"one", "a", ""}})
	_, err = New(path).Open(context.Background(), source.Query{Descriptor: usersDesc(t)})
	assert.True(t, errors.Is(err, errors.ErrUnsupportedType))

	keyless := &schema.Descriptor{Table: "t", Columns: []schema.ColumnSpec{{Name: "id"}}}
	_, err = New(path).Open(context.Background(), source.Query{Descriptor: keyless})
	assert.True(t, errors.Is(err, errors.ErrNoDeterministicOrder))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(path).Open(ctx, source.Query{Descriptor: usersDesc(t)})
	assert.ErrorIs(t, err, context.Canceled)
}
