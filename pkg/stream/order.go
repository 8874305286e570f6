// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package stream

import (
	"io"

	"github.com/wrgl/tabsum/pkg/errors"
	"github.com/wrgl/tabsum/pkg/rowhash"
)

type orderChecker struct {
	side string
	prev *rowhash.Key
}

func newOrderChecker(side string) *orderChecker {
	return &orderChecker{side: side}
}

// check fails when key does not strictly follow the previous key.
func (c *orderChecker) check(key rowhash.Key) error {
	if c.prev != nil {
		switch cmp := c.prev.Compare(key); {
		case cmp == 0:
			return &errors.KeyError{Side: c.side, Key: key.Tokens, Reason: "key appears more than once", Err: errors.ErrDuplicateKey}
		case cmp > 0:
			return &errors.KeyError{
				Side:   c.side,
				Key:    key.Tokens,
				Reason: "key follows greater key [" + c.prev.String() + "]",
				Err:    errors.ErrNoDeterministicOrder,
			}
		}
	}
	k := key
	c.prev = &k
	return nil
}

type orderedIterator struct {
	it    Iterator
	order *orderChecker
}

// Ordered wraps it so that a key out of ascending order fails with
// ErrNoDeterministicOrder and a repeated key fails with ErrDuplicateKey.
func Ordered(it Iterator, side string) Iterator {
	if _, ok := it.(*Reader); ok {
		return it
	}
	return &orderedIterator{it: it, order: newOrderChecker(side)}
}

func (o *orderedIterator) Read() (*rowhash.RowDigest, error) {
	d, err := o.it.Read()
	if err != nil {
		return nil, err
	}
	if err := o.order.check(d.Key); err != nil {
		return nil, err
	}
	return d, nil
}

type sliceIterator struct {
	digests []rowhash.RowDigest
	i       int
}

// FromSlice iterates over digests as given.
func FromSlice(digests []rowhash.RowDigest) Iterator {
	return &sliceIterator{digests: digests}
}

func (s *sliceIterator) Read() (*rowhash.RowDigest, error) {
	if s.i >= len(s.digests) {
		return nil, io.EOF
	}
	d := &s.digests[s.i]
	s.i++
	return d, nil
}
