// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package dssqlite

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/wrgl/tabsum/pkg/digeststore"
	"github.com/wrgl/tabsum/pkg/rowhash"
	"github.com/wrgl/tabsum/pkg/sqlutil"
)

// CreateTableStatements create the staging table shared by every namespace.
var CreateTableStatements = []string{
	`CREATE TABLE IF NOT EXISTS row_digests (
		namespace    TEXT NOT NULL,
		row_key      BLOB NOT NULL,
		sum          BLOB NOT NULL,
		last_seen_at INTEGER NOT NULL,
		PRIMARY KEY (namespace, row_key)
	)`,
}

type Store struct {
	db        *sql.DB
	namespace string
	owned     bool
}

func NewStore(db *sql.DB, namespace string) *Store {
	return &Store{db: db, namespace: namespace}
}

// Open opens the sqlite file at path and creates the staging table when
// missing. Closing the store closes the database.
func Open(path, namespace string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// lookups run on worker goroutines while the plan is applied
	db.SetMaxOpenConns(1)
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	s := NewStore(db, namespace)
	s.owned = true
	return s, nil
}

func Migrate(db *sql.DB) error {
	ctx := context.Background()
	return sqlutil.RunInTx(ctx, db, func(tx *sql.Tx) error {
		return sqlutil.ExecAll(ctx, tx, CreateTableStatements)
	})
}

func (s *Store) Get(ctx context.Context, key rowhash.Key) (*digeststore.StoredRowDigest, error) {
	var (
		sum   sqlutil.NullBytes
		nanos int64
		found *digeststore.StoredRowDigest
	)
	err := sqlutil.QueryRows(ctx, s.db,
		`SELECT sum, last_seen_at FROM row_digests WHERE namespace = ? AND row_key = ?`,
		[]interface{}{s.namespace, key.Bytes()},
		[]interface{}{&sum, &nanos},
		func() error {
			found = &digeststore.StoredRowDigest{
				Key:        key,
				Sum:        sum.Bytes,
				LastSeenAt: time.Unix(0, nanos).UTC(),
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (s *Store) Put(ctx context.Context, key rowhash.Key, sum []byte, ts time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO row_digests (namespace, row_key, sum, last_seen_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (namespace, row_key) DO UPDATE SET sum=excluded.sum, last_seen_at=excluded.last_seen_at`,
		s.namespace, key.Bytes(), sum, ts.UnixNano(),
	)
	return err
}

func (s *Store) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}
