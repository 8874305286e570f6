// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package dsmock

import (
	"context"
	"sync"
	"time"

	"github.com/wrgl/tabsum/pkg/digeststore"
	"github.com/wrgl/tabsum/pkg/rowhash"
)

// Store keeps digests in memory. It is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	m    map[string][]byte
	puts int
}

func NewStore() *Store {
	return &Store{
		m: map[string][]byte{},
	}
}

func (s *Store) Get(ctx context.Context, key rowhash.Key) (*digeststore.StoredRowDigest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.m[string(key.Bytes())]; ok {
		return digeststore.DecodeValue(key, v)
	}
	return nil, nil
}

func (s *Store) Put(ctx context.Context, key rowhash.Key, sum []byte, ts time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[string(key.Bytes())] = digeststore.EncodeValue(sum, ts)
	s.puts++
	return nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// Puts returns how many times Put was called.
func (s *Store) Puts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}
