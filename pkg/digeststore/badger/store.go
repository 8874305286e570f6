// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package dsbadger

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/wrgl/tabsum/pkg/digeststore"
	"github.com/wrgl/tabsum/pkg/rowhash"
)

// Store keeps digests of one namespace (usually a table name) under the
// prefix "rd/<namespace>/". The namespace is path-escaped so that no
// namespace prefix covers another one.
type Store struct {
	db     *badger.DB
	prefix []byte
	owned  bool
}

func NewStore(db *badger.DB, namespace string) *Store {
	return &Store{db: db, prefix: []byte("rd/" + url.PathEscape(namespace) + "/")}
}

// Open opens (or creates) a badger database at dir. Closing the store
// closes the database.
func Open(dir, namespace string, debug bool) (*Store, error) {
	opts := badger.DefaultOptions(dir).
		WithLoggingLevel(badger.ERROR)
	if debug {
		opts = opts.WithLoggingLevel(badger.DEBUG)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	s := NewStore(db, namespace)
	s.owned = true
	return s, nil
}

func (s *Store) dbKey(key rowhash.Key) []byte {
	b := append([]byte{}, s.prefix...)
	return append(b, key.Bytes()...)
}

func (s *Store) Get(ctx context.Context, key rowhash.Key) (*digeststore.StoredRowDigest, error) {
	var v []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.dbKey(key))
		if err != nil {
			return err
		}
		v, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return digeststore.DecodeValue(key, v)
}

func (s *Store) Put(ctx context.Context, key rowhash.Key, sum []byte, ts time.Time) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.dbKey(key), digeststore.EncodeValue(sum, ts))
	})
}

// Clear removes every digest of the namespace.
func (s *Store) Clear() error {
	return s.db.DropPrefix(s.prefix)
}

// Len counts stored digests of the namespace.
func (s *Store) Len() (n int, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		opt := badger.DefaultIteratorOptions
		opt.Prefix = s.prefix
		opt.PrefetchValues = false
		it := txn.NewIterator(opt)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return
}

func (s *Store) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}
