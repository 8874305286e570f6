// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

// Package digeststore defines where row digests of past reconcile runs are
// kept, keyed by row key.
package digeststore

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/wrgl/tabsum/pkg/rowhash"
)

type StoredRowDigest struct {
	Key        rowhash.Key
	Sum        []byte
	LastSeenAt time.Time
}

type Getter interface {
	// Get returns nil and no error when key has no stored digest.
	Get(ctx context.Context, key rowhash.Key) (*StoredRowDigest, error)
}

type Putter interface {
	Put(ctx context.Context, key rowhash.Key, sum []byte, ts time.Time) error
}

type Store interface {
	Getter
	Putter
}

// EncodeValue packs sum and ts into one value: sum followed by ts as 8 bytes
// of big-endian unix nanoseconds.
func EncodeValue(sum []byte, ts time.Time) []byte {
	b := make([]byte, len(sum), len(sum)+8)
	copy(b, sum)
	return binary.BigEndian.AppendUint64(b, uint64(ts.UnixNano()))
}

func DecodeValue(key rowhash.Key, b []byte) (*StoredRowDigest, error) {
	if len(b) < 8 {
		return nil, fmt.Errorf("stored digest of key [%s] is truncated", key)
	}
	n := len(b) - 8
	sum := make([]byte, n)
	copy(sum, b[:n])
	return &StoredRowDigest{
		Key:        key,
		Sum:        sum,
		LastSeenAt: time.Unix(0, int64(binary.BigEndian.Uint64(b[n:]))).UTC(),
	}, nil
}
