// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package dssqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wrgl/tabsum/pkg/digeststore"
	"github.com/wrgl/tabsum/pkg/rowhash"
	"github.com/wrgl/tabsum/pkg/schema"
	"github.com/wrgl/tabsum/pkg/testutils"
)

func TestStore(t *testing.T) {
	db, stop := testutils.CreateSQLDB(t, CreateTableStatements)
	defer stop()
	s := NewStore(db, "users")
	digeststore.AssertStore(t, s)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM row_digests WHERE namespace = 'users'`).Scan(&n))
	assert.Equal(t, 2, n)

	key := rowhash.NewKey([]schema.Kind{schema.Numeric, schema.Text}, "1", "a")
	d, err := NewStore(db, "orders").Get(context.Background(), key)
	require.NoError(t, err)
	assert.Nil(t, d)
	require.NoError(t, s.Close())
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "digests.db")
	key := rowhash.NewKey([]schema.Kind{schema.Text}, "x")
	sum := testutils.RandomSum()
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	s, err := Open(path, "t")
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), key, sum, ts))
	require.NoError(t, s.Close())

	// reopening keeps existing rows
	s, err = Open(path, "t")
	require.NoError(t, err)
	defer s.Close()
	d, err := s.Get(context.Background(), key)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, sum, d.Sum)
	testutils.AssertTimeEqual(t, ts, d.LastSeenAt)
}
