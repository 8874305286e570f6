// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package stream

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wrgl/tabsum/pkg/errors"
	"github.com/wrgl/tabsum/pkg/rowhash"
	"github.com/wrgl/tabsum/pkg/schema"
	"github.com/wrgl/tabsum/pkg/source"
	"github.com/wrgl/tabsum/pkg/source/csvsrc"
	"github.com/wrgl/tabsum/pkg/testutils"
)

type fakeReader struct {
	rows []rowhash.RawRow
	err  error
}

func (r *fakeReader) Read() (rowhash.RawRow, error) {
	if len(r.rows) == 0 {
		if r.err != nil {
			return nil, r.err
		}
		return nil, io.EOF
	}
	row := r.rows[0]
	r.rows = r.rows[1:]
	return row, nil
}

func (r *fakeReader) Close() error { return nil }

type fakeSource struct {
	rows    []rowhash.RawRow
	readErr error
	openErr error
}

func (s *fakeSource) Name() string { return "fake" }

func (s *fakeSource) Open(ctx context.Context, q source.Query) (source.RowReader, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	return &fakeReader{rows: append([]rowhash.RawRow{}, s.rows...), err: s.readErr}, nil
}

func usersDesc(t *testing.T) *schema.Descriptor {
	t.Helper()
	d := &schema.Descriptor{
		Table: "users",
		Key:   []string{"id"},
		Columns: []schema.ColumnSpec{
			{Name: "id", Kind: schema.Numeric},
			{Name: "name", Kind: schema.Text},
		},
	}
	require.NoError(t, d.Resolve())
	return d
}

func readAll(t *testing.T, it Iterator) ([]*rowhash.RowDigest, error) {
	t.Helper()
	var sl []*rowhash.RowDigest
	for {
		d, err := it.Read()
		if err == io.EOF {
			return sl, nil
		}
		if err != nil {
			return sl, err
		}
		sl = append(sl, d)
	}
}

func TestStreamCSV(t *testing.T) {
	path := testutils.WriteCSV(t, [][]string{
		{"id", "name"},
		{"3", "Cara"},
		{"1", "Alice"},
		{"2", "Bob"},
	})
	s, err := New(csvsrc.New(path), source.Query{Descriptor: usersDesc(t)})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		r, err := s.Open(context.Background())
		require.NoError(t, err)
		sl, err := readAll(t, r)
		require.NoError(t, err)
		require.Len(t, sl, 3)
		assert.Equal(t, []string{"1"}, sl[0].Key.Tokens)
		assert.Equal(t, "4709ffcb65076d3714526fb07e681046378ca2b6ee845a2aebe94cd8348fcd55", sl[0].Hex())
		assert.Equal(t, "354decdb77ccc09af15523488f04b5b9ed80f257d310243e0b66028f12a2caf4", sl[1].Hex())
		assert.Equal(t, int64(3), r.Count())
		assert.Equal(t, rowhash.SHA256, r.Algorithm())
		_, err = r.Read()
		assert.Equal(t, io.EOF, err)
		require.NoError(t, r.Close())
	}
}

func TestStreamNoDeterministicOrder(t *testing.T) {
	d := &schema.Descriptor{Table: "t", Columns: []schema.ColumnSpec{{Name: "a"}, {Name: "b"}}}
	_, err := New(&fakeSource{}, source.Query{Descriptor: d})
	assert.True(t, errors.Is(err, errors.ErrNoDeterministicOrder))

	s, err := New(&fakeSource{rows: []rowhash.RawRow{
		{"id": 2, "name": "b"},
		{"id": 1, "name": "a"},
	}}, source.Query{Descriptor: usersDesc(t)}, WithSide("left"))
	require.NoError(t, err)
	r, err := s.Open(context.Background())
	require.NoError(t, err)
	_, err = readAll(t, r)
	assert.True(t, errors.Is(err, errors.ErrNoDeterministicOrder))
	assert.Equal(t, "no deterministic order on left: key [1]: key follows greater key [2]", err.Error())
}

func TestStreamDuplicateKey(t *testing.T) {
	s, err := New(&fakeSource{rows: []rowhash.RawRow{
		{"id": 1, "name": "a"},
		{"id": "1.0", "name": "b"},
	}}, source.Query{Descriptor: usersDesc(t)})
	require.NoError(t, err)
	r, err := s.Open(context.Background())
	require.NoError(t, err)
	sl, err := readAll(t, r)
	assert.Len(t, sl, 1)
	assert.True(t, errors.Is(err, errors.ErrDuplicateKey))
	var ke *errors.KeyError
	require.True(t, errors.As(err, &ke))
	assert.Equal(t, "fake", ke.Side)
}

func TestStreamSourceFailure(t *testing.T) {
	s, err := New(&fakeSource{
		rows:    []rowhash.RawRow{{"id": 1, "name": "a"}},
		readErr: fmt.Errorf("connection reset"),
	}, source.Query{Descriptor: usersDesc(t)})
	require.NoError(t, err)
	r, err := s.Open(context.Background())
	require.NoError(t, err)
	sl, err := readAll(t, r)
	assert.Len(t, sl, 1)
	assert.True(t, errors.Is(err, errors.ErrSourceRead))
	assert.Equal(t, "source read failure: fake: connection reset", err.Error())

	s, err = New(&fakeSource{openErr: fmt.Errorf("no such table")}, source.Query{Descriptor: usersDesc(t)})
	require.NoError(t, err)
	_, err = s.Open(context.Background())
	assert.True(t, errors.Is(err, errors.ErrSourceRead))
}

func TestStreamUnsupportedType(t *testing.T) {
	s, err := New(&fakeSource{rows: []rowhash.RawRow{
		{"id": 1, "name": "a\x1f"},
	}}, source.Query{Descriptor: usersDesc(t)})
	require.NoError(t, err)
	r, err := s.Open(context.Background())
	require.NoError(t, err)
	_, err = r.Read()
	assert.True(t, errors.Is(err, errors.ErrUnsupportedType))
	assert.False(t, errors.Is(err, errors.ErrSourceRead))
}

func TestStreamCancel(t *testing.T) {
	s, err := New(&fakeSource{rows: []rowhash.RawRow{
		{"id": 1, "name": "a"},
		{"id": 2, "name": "b"},
	}}, source.Query{Descriptor: usersDesc(t)})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	r, err := s.Open(ctx)
	require.NoError(t, err)
	_, err = r.Read()
	require.NoError(t, err)
	cancel()
	_, err = r.Read()
	assert.Equal(t, context.Canceled, err)
}

func TestOrdered(t *testing.T) {
	kinds := []schema.Kind{schema.Numeric}
	it := Ordered(FromSlice([]rowhash.RowDigest{
		{Key: rowhash.NewKey(kinds, "2")},
		{Key: rowhash.NewKey(kinds, "10")},
		{Key: rowhash.NewKey(kinds, "3")},
	}), "right")
	sl, err := readAll(t, it)
	assert.Len(t, sl, 2)
	assert.True(t, errors.Is(err, errors.ErrNoDeterministicOrder))
}
