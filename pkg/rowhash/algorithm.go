// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package rowhash

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"hash"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"
)

// Algorithm names a row digest function.
type Algorithm string

const (
	SHA256  Algorithm = "sha256"
	BLAKE2b Algorithm = "blake2b"

	// XXHash is fast but not cryptographic and only 8 bytes wide. Only use
	// it when every party that produces digests is trusted.
	XXHash Algorithm = "xxhash"
)

var DefaultAlgorithm = SHA256

func ParseAlgorithm(s string) (Algorithm, error) {
	if s == "" {
		return DefaultAlgorithm, nil
	}
	a := Algorithm(strings.ToLower(s))
	switch a {
	case SHA256, BLAKE2b, XXHash:
		return a, nil
	}
	return "", fmt.Errorf("unknown hash algorithm %q", s)
}

func (a Algorithm) String() string {
	return string(a)
}

// Size returns number of bytes in a row digest.
func (a Algorithm) Size() int {
	if a == XXHash {
		return 8
	}
	return 32
}

func (a Algorithm) sum(b []byte) []byte {
	switch a {
	case BLAKE2b:
		arr := blake2b.Sum256(b)
		return arr[:]
	case XXHash:
		return binary.BigEndian.AppendUint64(nil, xxhash.Sum64(b))
	default:
		arr := sha256.Sum256(b)
		return arr[:]
	}
}

// NewHash returns the streaming form of a, used for table digests.
func (a Algorithm) NewHash() hash.Hash {
	switch a {
	case BLAKE2b:
		h, err := blake2b.New256(nil)
		if err != nil {
			panic(err)
		}
		return h
	case XXHash:
		return xxhash.New()
	}
	return sha256.New()
}
