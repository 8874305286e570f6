// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package digeststore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wrgl/tabsum/pkg/rowhash"
	"github.com/wrgl/tabsum/pkg/schema"
	"github.com/wrgl/tabsum/pkg/testutils"
)

// AssertStore runs the checks every Store implementation must pass. s must
// be empty.
func AssertStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	kinds := []schema.Kind{schema.Numeric, schema.Text}
	k1 := rowhash.NewKey(kinds, "1", "a")
	k2 := rowhash.NewKey(kinds, "1", "")
	tg := testutils.CreateTimeGen()

	d, err := s.Get(ctx, k1)
	require.NoError(t, err)
	assert.Nil(t, d)

	sum1 := testutils.RandomSum()
	ts1 := tg()
	require.NoError(t, s.Put(ctx, k1, sum1, ts1))
	d, err = s.Get(ctx, k1)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, k1.Tokens, d.Key.Tokens)
	assert.Equal(t, sum1, d.Sum)
	testutils.AssertTimeEqual(t, ts1, d.LastSeenAt)

	d, err = s.Get(ctx, k2)
	require.NoError(t, err)
	assert.Nil(t, d)

	sum2 := testutils.RandomSum()
	ts2 := tg()
	require.NoError(t, s.Put(ctx, k1, sum2, ts2))
	d, err = s.Get(ctx, k1)
	require.NoError(t, err)
	assert.Equal(t, sum2, d.Sum)
	testutils.AssertTimeEqual(t, ts2, d.LastSeenAt)

	short := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	require.NoError(t, s.Put(ctx, k2, short, ts2))
	d, err = s.Get(ctx, k2)
	require.NoError(t, err)
	assert.Equal(t, short, d.Sum)
}
