// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package aggregate

import (
	"context"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wrgl/tabsum/pkg/rowhash"
	"github.com/wrgl/tabsum/pkg/schema"
	"github.com/wrgl/tabsum/pkg/source"
	"github.com/wrgl/tabsum/pkg/source/csvsrc"
	"github.com/wrgl/tabsum/pkg/stream"
	"github.com/wrgl/tabsum/pkg/testutils"
)

func digest(key, sum string) rowhash.RowDigest {
	b, err := hex.DecodeString(sum)
	if err != nil {
		panic(err)
	}
	return rowhash.RowDigest{Key: rowhash.NewKey([]schema.Kind{schema.Numeric}, key), Sum: b}
}

const (
	sumAlice = "4709ffcb65076d3714526fb07e681046378ca2b6ee845a2aebe94cd8348fcd55"
	sumBob   = "354decdb77ccc09af15523488f04b5b9ed80f257d310243e0b66028f12a2caf4"
)

func TestAggregate(t *testing.T) {
	td, err := Aggregate(context.Background(), stream.FromSlice([]rowhash.RowDigest{
		digest("1", sumAlice), digest("2", sumBob),
	}))
	require.NoError(t, err)
	assert.Equal(t, "10e3e523329c69a0f5f731e329b0dfd85135ac6175c5def0cedac62d6c245315", td.Hex())
	assert.Equal(t, int64(2), td.Rows)

	// order dependent
	td, err = Aggregate(context.Background(), stream.FromSlice([]rowhash.RowDigest{
		digest("2", sumBob), digest("1", sumAlice),
	}))
	require.NoError(t, err)
	assert.Equal(t, "619567872d341ec72b3a1b6a2a45bc2d9f28dffcd1cd0d67e938f168012beb9a", td.Hex())

	td, err = Aggregate(context.Background(), stream.FromSlice(nil))
	require.NoError(t, err)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", td.Hex())
	assert.Equal(t, int64(0), td.Rows)

	td, err = Aggregate(context.Background(), stream.FromSlice(nil), WithAlgorithm(rowhash.BLAKE2b))
	require.NoError(t, err)
	assert.Len(t, td.Sum, 32)
}

func TestAggregateDeterministic(t *testing.T) {
	rows := testutils.FakeUsers(7, 300)
	desc := &schema.Descriptor{
		Table: "users",
		Key:   []string{"id"},
		Columns: []schema.ColumnSpec{
			{Name: "id", Kind: schema.Numeric},
			{Name: "name", Kind: schema.Text},
			{Name: "email", Kind: schema.Text},
			{Name: "balance", Kind: schema.Numeric},
			{Name: "updated_at", Kind: schema.Temporal},
		},
	}
	require.NoError(t, desc.Resolve())

	sum := func(rows [][]string) string {
		s, err := stream.New(csvsrc.New(testutils.WriteCSV(t, rows)), source.Query{Descriptor: desc})
		require.NoError(t, err)
		r, err := s.Open(context.Background())
		require.NoError(t, err)
		defer r.Close()
		td, err := Aggregate(context.Background(), r)
		require.NoError(t, err)
		assert.Equal(t, int64(300), td.Rows)
		return td.Hex()
	}
	reversed := [][]string{rows[0]}
	for i := len(rows) - 1; i > 0; i-- {
		reversed = append(reversed, rows[i])
	}
	assert.Equal(t, sum(rows), sum(reversed))
	assert.Equal(t, sum(rows), sum(testutils.FakeUsers(7, 300)))
	assert.NotEqual(t, sum(rows), sum(testutils.FakeUsers(8, 300)))
}

type failingIterator struct {
	n int
}

func (it *failingIterator) Read() (*rowhash.RowDigest, error) {
	if it.n == 0 {
		return nil, fmt.Errorf("boom")
	}
	it.n--
	d := digest("1", sumAlice)
	return &d, nil
}

func TestAggregateFailure(t *testing.T) {
	td, err := Aggregate(context.Background(), &failingIterator{n: 2})
	assert.EqualError(t, err, "boom")
	assert.Nil(t, td)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	td, err = Aggregate(ctx, stream.FromSlice([]rowhash.RowDigest{digest("1", sumAlice)}))
	assert.Equal(t, context.Canceled, err)
	assert.Nil(t, td)
}
